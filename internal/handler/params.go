package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// shopIDFrom parses the shop scope every route is mounted under.
func shopIDFrom(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "shopID"))
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
