package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/repository"
	"github.com/hamedAligholizade/ajiro/internal/service"
)

type CustomerHandler struct {
	Repo    *repository.CustomerRepository
	Loyalty *service.LoyaltyService
}

func (h CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/customers", h.list)
	r.Post("/customers", h.create)
	r.Get("/customers/mobile/{mobile}", h.byMobile)
	r.Get("/customers/{customerID}", h.get)
	r.Put("/customers/{customerID}", h.update)
	r.Delete("/customers/{customerID}", h.deactivate)
	r.Get("/customers/{customerID}/loyalty", h.loyaltyDetail)
	r.Post("/customers/{customerID}/points/adjust", h.adjustPoints)
}

func customerJSON(c *domain.Customer) map[string]any {
	var birthDate *string
	if c.BirthDate != nil {
		s := c.BirthDate.Format("2006-01-02")
		birthDate = &s
	}
	return map[string]any{
		"id":              c.ID,
		"firstName":       c.FirstName,
		"lastName":        c.LastName,
		"mobileNumber":    c.MobileNumber,
		"email":           c.Email,
		"birthDate":       birthDate,
		"totalPoints":     c.TotalPoints,
		"availablePoints": c.AvailablePoints,
		"tier":            c.Tier,
		"totalSpent":      c.TotalSpent.Amount,
		"notes":           c.Notes,
		"createdAt":       c.CreatedAt,
		"updatedAt":       c.UpdatedAt,
	}
}

func pointEntryJSON(e *domain.PointTransaction) map[string]any {
	return map[string]any{
		"id":            e.ID,
		"transactionId": e.TransactionID,
		"points":        e.Points,
		"type":          e.Type,
		"description":   e.Description,
		"expiryDate":    e.ExpiryDate,
		"isExpired":     e.IsExpired,
		"createdAt":     e.CreatedAt,
	}
}

func (h CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	items, err := h.Repo.List(r.Context(), shopID, r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for i := range items {
		resp = append(resp, customerJSON(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h CustomerHandler) get(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	c, err := h.Repo.Get(r.Context(), shopID, customerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customerJSON(c))
}

func (h CustomerHandler) byMobile(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	mobile := chi.URLParam(r, "mobile")
	if mobile == "" {
		writeError(w, http.StatusBadRequest, "mobile is required")
		return
	}
	c, err := h.Repo.GetByMobile(r.Context(), shopID, mobile)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customerJSON(c))
}

type customerRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	BirthDate    string `json:"birthDate"`
	Notes        string `json:"notes"`
}

func (req customerRequest) toDomain(shopID uuid.UUID) (domain.Customer, string) {
	if req.FirstName == "" || req.MobileNumber == "" {
		return domain.Customer{}, "firstName and mobileNumber are required"
	}
	c := domain.Customer{
		ShopID:       shopID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
		Email:        req.Email,
		Notes:        req.Notes,
	}
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return domain.Customer{}, "birthDate must be YYYY-MM-DD"
		}
		c.BirthDate = &bd
	}
	return c, ""
}

func (h CustomerHandler) create(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	c, msg := req.toDomain(shopID)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if err := h.Repo.Create(r.Context(), &c); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerJSON(&c))
}

func (h CustomerHandler) update(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	c, msg := req.toDomain(shopID)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	c.ID = customerID
	if err := h.Repo.Update(r.Context(), &c); err != nil {
		writeServiceError(w, err)
		return
	}
	// Re-read so the response carries the balances the update left
	// untouched.
	saved, err := h.Repo.Get(r.Context(), shopID, customerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customerJSON(saved))
}

func (h CustomerHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if err := h.Repo.Deactivate(r.Context(), shopID, customerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deactivated": true})
}

func (h CustomerHandler) loyaltyDetail(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	detail, err := h.Loyalty.CustomerLoyaltyDetail(r.Context(), shopID, customerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	entries := make([]map[string]any, 0, len(detail.Entries))
	for i := range detail.Entries {
		entries = append(entries, pointEntryJSON(&detail.Entries[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customer": customerJSON(detail.Customer),
		"entries":  entries,
	})
}

func (h CustomerHandler) adjustPoints(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	customerID, err := uuidParam(r, "customerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req struct {
		Points      int    `json:"points"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.Loyalty.AdjustPoints(r.Context(), shopID, customerID, req.Points, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entryId":     res.EntryID,
		"newBalance":  res.NewBalance,
		"tierChanged": res.TierChanged,
		"tier":        res.NewTier,
	})
}
