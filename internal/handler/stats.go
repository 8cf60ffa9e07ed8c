package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/repository"
)

// StatsSource is the aggregate reader behind the stats endpoints;
// repository.StatsRepository implements it.
type StatsSource interface {
	Dashboard(ctx context.Context, shopID uuid.UUID, startOfDay, startOfWeek, startOfMonth time.Time) (repository.DashboardStats, error)
	TopProducts(ctx context.Context, shopID uuid.UUID, since time.Time, limit int) ([]repository.TopProduct, error)
	RecentTransactions(ctx context.Context, shopID uuid.UUID, limit int) ([]domain.Transaction, error)
	SalesSeries(ctx context.Context, shopID uuid.UUID, from, to time.Time, byMonth bool) ([]repository.SalesPoint, error)
	LowStock(ctx context.Context, shopID uuid.UUID, threshold, limit int) ([]domain.Product, error)
	InventoryTotals(ctx context.Context, shopID uuid.UUID) (int64, int64, error)
	CategoryMetrics(ctx context.Context, shopID uuid.UUID) ([]repository.CategoryMetric, error)
}

type StatsHandler struct {
	Repo StatsSource
}

func (h StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats/dashboard", h.dashboard)
	r.Get("/stats/sales", h.sales)
	r.Get("/stats/inventory", h.inventory)
}

const defaultLowStockThreshold = 5

func (h StatsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats, err := h.Repo.Dashboard(r.Context(), shopID, startOfDay, startOfWeek, startOfMonth)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	top, err := h.Repo.TopProducts(r.Context(), shopID, startOfMonth, 5)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	recent, err := h.Repo.RecentTransactions(r.Context(), shopID, 5)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	topJSON := make([]map[string]any, 0, len(top))
	for _, p := range top {
		topJSON = append(topJSON, map[string]any{
			"productId": p.ProductID,
			"name":      p.Name,
			"quantity":  p.Quantity,
			"sales":     p.Sales,
		})
	}
	recentJSON := make([]map[string]any, 0, len(recent))
	for i := range recent {
		recentJSON = append(recentJSON, transactionJSON(&recent[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"salesStats": map[string]any{
			"daily":   stats.DailySales,
			"weekly":  stats.WeeklySales,
			"monthly": stats.MonthlySales,
		},
		"counts": map[string]any{
			"products":     stats.Products,
			"customers":    stats.Customers,
			"transactions": stats.Transactions,
		},
		"topProducts":        topJSON,
		"recentTransactions": recentJSON,
	})
}

func (h StatsHandler) sales(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}

	now := time.Now()
	to := now.AddDate(0, 0, 1)
	var from time.Time
	var byMonth bool
	period := r.URL.Query().Get("period")
	switch period {
	case "week":
		from = now.AddDate(0, 0, -7)
	case "", "month":
		period = "month"
		from = now.AddDate(0, 0, -30)
	case "quarter":
		from = now.AddDate(0, -3, 0)
		byMonth = true
	case "year":
		from = now.AddDate(-1, 0, 0)
		byMonth = true
	default:
		writeError(w, http.StatusBadRequest, "invalid period (use week, month, quarter or year)")
		return
	}

	points, err := h.Repo.SalesSeries(r.Context(), shopID, from, to, byMonth)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	series := make([]map[string]any, 0, len(points))
	for _, p := range points {
		series = append(series, map[string]any{
			"date":  p.Date,
			"total": p.Total,
			"count": p.Count,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period": period,
		"sales":  series,
	})
}

func (h StatsHandler) inventory(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}

	threshold := defaultLowStockThreshold
	if v := r.URL.Query().Get("lowStockThreshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid lowStockThreshold")
			return
		}
		threshold = n
	}

	low, err := h.Repo.LowStock(r.Context(), shopID, threshold, 10)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	outOfStock, value, err := h.Repo.InventoryTotals(r.Context(), shopID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	categories, err := h.Repo.CategoryMetrics(r.Context(), shopID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	lowJSON := make([]map[string]any, 0, len(low))
	for _, p := range low {
		lowJSON = append(lowJSON, map[string]any{
			"id":            p.ID,
			"name":          p.Name,
			"category":      p.Category,
			"stockQuantity": p.StockQuantity,
		})
	}
	catJSON := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		catJSON = append(catJSON, map[string]any{
			"category":       c.Category,
			"productCount":   c.ProductCount,
			"totalStock":     c.TotalStock,
			"inventoryValue": c.InventoryValue,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lowStockProducts": lowJSON,
		"outOfStockCount":  outOfStock,
		"inventoryValue":   value,
		"categoryMetrics":  catJSON,
	})
}
