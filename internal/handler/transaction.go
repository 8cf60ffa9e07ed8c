package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/repository"
	"github.com/hamedAligholizade/ajiro/internal/service"
)

type TransactionHandler struct {
	Repo  *repository.TransactionRepository
	Sales *service.SaleService
}

func (h TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/transactions", h.record)
	r.Get("/transactions", h.list)
	r.Get("/transactions/export", h.export)
	r.Get("/transactions/{txID}", h.get)
}

func transactionJSON(t *domain.Transaction) map[string]any {
	items := make([]map[string]any, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, map[string]any{
			"id":          it.ID,
			"productId":   it.ProductID,
			"name":        it.Name,
			"quantity":    it.Quantity,
			"priceAtSale": it.PriceAtSale.Amount,
			"subtotal":    it.Subtotal.Amount,
		})
	}
	return map[string]any{
		"id":              t.ID,
		"customerId":      t.CustomerID,
		"totalAmount":     t.TotalAmount.Amount,
		"pointsEarned":    t.PointsEarned,
		"pointsRedeemed":  t.PointsRedeemed,
		"status":          t.Status,
		"notes":           t.Notes,
		"transactionDate": t.TransactionDate,
		"items":           items,
	}
}

func (h TransactionHandler) record(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	var req struct {
		Items []struct {
			ProductID uuid.UUID `json:"productId"`
			Quantity  int       `json:"quantity"`
		} `json:"items"`
		CustomerID     *uuid.UUID `json:"customerId"`
		PointsToRedeem int        `json:"pointsToRedeem"`
		Notes          string     `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	in := service.RecordSaleInput{
		ShopID:         shopID,
		CustomerID:     req.CustomerID,
		PointsToRedeem: req.PointsToRedeem,
		Notes:          req.Notes,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.SaleItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	res, err := h.Sales.RecordSale(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := map[string]any{
		"transaction":    transactionJSON(res.Transaction),
		"pointsEarned":   res.PointsEarned,
		"pointsRedeemed": res.PointsRedeemed,
		"discountAmount": res.DiscountAmount,
	}
	if res.Customer != nil {
		resp["customer"] = map[string]any{
			"id":              res.Customer.ID,
			"availablePoints": res.Customer.AvailablePoints,
			"totalPoints":     res.Customer.TotalPoints,
			"tier":            res.Customer.Tier,
			"tierChanged":     res.TierChanged,
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// dateRange parses from/to query params; default is the last 30 days.
// The upper bound is exclusive at the following midnight.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
	to := now.AddDate(0, 0, 1).Truncate(24 * time.Hour)

	if v := r.URL.Query().Get("from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, fmt.Errorf("from must be YYYY-MM-DD")
		}
		from = d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, fmt.Errorf("to must be YYYY-MM-DD")
		}
		to = d.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func (h TransactionHandler) list(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Repo.List(r.Context(), shopID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for i := range items {
		resp = append(resp, transactionJSON(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h TransactionHandler) get(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "txID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	t, err := h.Repo.Get(r.Context(), shopID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionJSON(t))
}

func (h TransactionHandler) export(w http.ResponseWriter, r *http.Request) {
	shopID, err := shopIDFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Repo.List(r.Context(), shopID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filenameSuffix := fmt.Sprintf("%s_%s", from.Format("20060102"), to.AddDate(0, 0, -1).Format("20060102"))

	switch format := r.URL.Query().Get("format"); format {
	case "", "xlsx", "excel":
		data, err := exportTransactionsXLSX(items)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	case "csv":
		data, err := exportTransactionsCSV(items)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func customerIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func exportTransactionsCSV(items []domain.Transaction) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "date", "customer_id", "total_amount", "points_earned", "points_redeemed", "status", "notes"})
	for _, t := range items {
		_ = w.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.TransactionDate.Format("2006-01-02 15:04:05"),
			customerIDString(t.CustomerID),
			strconv.FormatInt(t.TotalAmount.Amount, 10),
			strconv.Itoa(t.PointsEarned),
			strconv.Itoa(t.PointsRedeemed),
			string(t.Status),
			t.Notes,
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportTransactionsXLSX(items []domain.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Transactions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Date", "Customer", "Total Amount", "Points Earned", "Points Redeemed", "Status", "Notes"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, t := range items {
		row := r + 2
		values := []any{
			t.ID,
			t.TransactionDate.Format("2006-01-02 15:04:05"),
			customerIDString(t.CustomerID),
			t.TotalAmount.Amount,
			t.PointsEarned,
			t.PointsRedeemed,
			string(t.Status),
			t.Notes,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "B", 20)
	_ = f.SetColWidth(sheet, "C", "C", 38)
	_ = f.SetColWidth(sheet, "D", "D", 14)
	_ = f.SetColWidth(sheet, "E", "F", 14)
	_ = f.SetColWidth(sheet, "G", "G", 12)
	_ = f.SetColWidth(sheet, "H", "H", 28)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "H1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
