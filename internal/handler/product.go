package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/repository"
)

type ProductHandler struct {
	Repo     *repository.ProductRepository
	Currency string
}

func (h ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Post("/products", h.create)
	r.Get("/products/{productID}", h.get)
	r.Put("/products/{productID}", h.update)
	r.Delete("/products/{productID}", h.delete)
}

func (h ProductHandler) productJSON(p *domain.Product) map[string]any {
	return map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"category":      p.Category,
		"price":         p.Price.Amount,
		"currency":      h.Currency,
		"stockQuantity": p.StockQuantity,
		"createdAt":     p.CreatedAt,
		"updatedAt":     p.UpdatedAt,
	}
}

func (h ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	items, err := h.Repo.List(r.Context(), shopID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for i := range items {
		resp = append(resp, h.productJSON(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	productID, err := uuidParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.Repo.Get(r.Context(), shopID, productID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.productJSON(p))
}

type productRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	Price         int64  `json:"price"`
	StockQuantity int    `json:"stockQuantity"`
}

func (req productRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if req.Price < 0 {
		return "price must not be negative"
	}
	if req.StockQuantity < 0 {
		return "stockQuantity must not be negative"
	}
	return ""
}

func (h ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := domain.Product{
		ShopID:        shopID,
		Name:          req.Name,
		Category:      req.Category,
		Price:         domain.Money{Amount: req.Price, Currency: h.Currency},
		StockQuantity: req.StockQuantity,
	}
	if err := h.Repo.Create(r.Context(), &p); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.productJSON(&p))
}

func (h ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	productID, err := uuidParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := domain.Product{
		ID:            productID,
		ShopID:        shopID,
		Name:          req.Name,
		Category:      req.Category,
		Price:         domain.Money{Amount: req.Price, Currency: h.Currency},
		StockQuantity: req.StockQuantity,
	}
	if err := h.Repo.Update(r.Context(), &p); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.productJSON(&p))
}

func (h ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	productID, err := uuidParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.Repo.Delete(r.Context(), shopID, productID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
