package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/service"
)

type LoyaltyHandler struct {
	Loyalty *service.LoyaltyService
}

func (h LoyaltyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/loyalty/config", h.getConfig)
	r.Put("/loyalty/config", h.updateConfig)
	r.Post("/loyalty/preview", h.preview)
}

func configJSON(cfg *domain.LoyaltyConfig) map[string]any {
	return map[string]any{
		"isEnabled":        cfg.IsEnabled,
		"pointsPerUnit":    cfg.PointsPerUnit,
		"redemptionValue":  cfg.RedemptionValue,
		"pointsExpiryDays": cfg.PointsExpiryDays,
		"tierThresholds":   cfg.TierThresholds,
		"tierMultipliers":  cfg.TierMultipliers,
		"specialRules":     cfg.SpecialRules,
		"updatedAt":        cfg.UpdatedAt,
	}
}

func (h LoyaltyHandler) getConfig(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	cfg, err := h.Loyalty.GetConfig(r.Context(), shopID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configJSON(cfg))
}

func (h LoyaltyHandler) updateConfig(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	var req struct {
		IsEnabled        *bool                           `json:"isEnabled"`
		PointsPerUnit    *int                            `json:"pointsPerUnit"`
		RedemptionValue  *int                            `json:"redemptionValue"`
		PointsExpiryDays *int                            `json:"pointsExpiryDays"`
		ClearExpiry      bool                            `json:"clearExpiry"`
		TierThresholds   map[domain.Tier]int             `json:"tierThresholds"`
		TierMultipliers  map[domain.Tier]decimal.Decimal `json:"tierMultipliers"`
		SpecialRules     map[string]int                  `json:"specialRules"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	cfg, err := h.Loyalty.UpdateConfig(r.Context(), shopID, service.UpdateConfigInput{
		IsEnabled:        req.IsEnabled,
		PointsPerUnit:    req.PointsPerUnit,
		RedemptionValue:  req.RedemptionValue,
		PointsExpiryDays: req.PointsExpiryDays,
		ClearExpiry:      req.ClearExpiry,
		TierThresholds:   req.TierThresholds,
		TierMultipliers:  req.TierMultipliers,
		SpecialRules:     req.SpecialRules,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configJSON(cfg))
}

func (h LoyaltyHandler) preview(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	var req struct {
		Amount     int64      `json:"amount"`
		CustomerID *uuid.UUID `json:"customerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	res, err := h.Loyalty.PreviewPoints(r.Context(), shopID, req.CustomerID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"points":     res.Points,
		"basePoints": res.BasePoints,
		"tier":       res.Tier,
		"multiplier": res.Multiplier,
	})
}
