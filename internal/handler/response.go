// Package handler holds the HTTP layer: thin chi handlers that decode
// requests, call a repository or service, and write the JSON envelope.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hamedAligholizade/ajiro/internal/db"
	"github.com/hamedAligholizade/ajiro/internal/loyalty"
	"github.com/hamedAligholizade/ajiro/internal/service"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if status >= 400 {
		writeRawJSON(w, status, apiResponse{
			Status:  "error",
			Message: "",
			Data:    payload,
			Error: &apiError{
				Code:   status,
				Status: http.StatusText(status),
			},
		})
		return
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "ok",
		Message: "",
		Data:    payload,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "error",
		Message: message,
		Data:    nil,
		Error: &apiError{
			Code:   status,
			Status: http.StatusText(status),
		},
	})
}

// writeServiceError maps service and loyalty errors onto HTTP statuses.
// Conflict responses for insufficient stock or points carry the current
// value so the client can correct the request without another round
// trip.
func writeServiceError(w http.ResponseWriter, err error) {
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeRawJSON(w, http.StatusConflict, apiResponse{
			Status:  "error",
			Message: stockErr.Error(),
			Data: map[string]any{
				"productId": stockErr.ProductID,
				"requested": stockErr.Requested,
				"available": stockErr.Available,
			},
			Error: &apiError{Code: http.StatusConflict, Status: http.StatusText(http.StatusConflict)},
		})
		return
	}

	var pointsErr *loyalty.InsufficientPointsError
	if errors.As(err, &pointsErr) {
		writeRawJSON(w, http.StatusConflict, apiResponse{
			Status:  "error",
			Message: pointsErr.Error(),
			Data: map[string]any{
				"requested": pointsErr.Requested,
				"available": pointsErr.Available,
			},
			Error: &apiError{Code: http.StatusConflict, Status: http.StatusText(http.StatusConflict)},
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, loyalty.ErrInvalidArgument), errors.Is(err, loyalty.ErrProgramDisabled):
		writeError(w, http.StatusBadRequest, err.Error())
	case db.IsUniqueViolation(err):
		writeError(w, http.StatusConflict, "a record with that value already exists")
	case db.IsCheckViolation(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
