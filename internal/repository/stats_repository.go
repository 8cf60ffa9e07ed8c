package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hamedAligholizade/ajiro/internal/db"
	"github.com/hamedAligholizade/ajiro/internal/domain"
)

// StatsRepository serves the read-only aggregates behind the dashboard
// and analytics endpoints.
type StatsRepository struct {
	DB *db.Postgres
}

func NewStatsRepository(pg *db.Postgres) *StatsRepository {
	return &StatsRepository{DB: pg}
}

type DashboardStats struct {
	DailySales   int64
	WeeklySales  int64
	MonthlySales int64
	Products     int64
	Customers    int64
	Transactions int64
}

type TopProduct struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int64
	Sales     int64
}

type SalesPoint struct {
	Date  string
	Total int64
	Count int64
}

type CategoryMetric struct {
	Category       string
	ProductCount   int64
	TotalStock     int64
	InventoryValue int64
}

// Dashboard aggregates completed-sale totals from the start of today,
// week, and month, plus the shop's head counts.
func (r *StatsRepository) Dashboard(ctx context.Context, shopID uuid.UUID, startOfDay, startOfWeek, startOfMonth time.Time) (DashboardStats, error) {
	var s DashboardStats
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_amount) FILTER (WHERE transaction_date >= $2), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE transaction_date >= $3), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE transaction_date >= $4), 0),
			COUNT(*)
		FROM transactions
		WHERE shop_id=$1 AND status='completed'
	`, shopID, startOfDay, startOfWeek, startOfMonth).Scan(&s.DailySales, &s.WeeklySales, &s.MonthlySales, &s.Transactions)
	if err != nil {
		return s, fmt.Errorf("dashboard sales stats: %w", err)
	}

	err = r.DB.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE shop_id=$1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM customers WHERE shop_id=$1 AND is_active)
	`, shopID).Scan(&s.Products, &s.Customers)
	if err != nil {
		return s, fmt.Errorf("dashboard counts: %w", err)
	}
	return s, nil
}

// TopProducts ranks products by units sold since the given time.
func (r *StatsRepository) TopProducts(ctx context.Context, shopID uuid.UUID, since time.Time, limit int) ([]TopProduct, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT ti.product_id, ti.name, SUM(ti.quantity) AS quantity, COALESCE(SUM(ti.subtotal),0) AS sales
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		WHERE t.shop_id=$1 AND t.status='completed' AND t.transaction_date >= $2
		GROUP BY ti.product_id, ti.name
		ORDER BY quantity DESC
		LIMIT $3
	`, shopID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var items []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.Quantity, &tp.Sales); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		items = append(items, tp)
	}
	return items, rows.Err()
}

// RecentTransactions returns the latest sales without their items.
func (r *StatsRepository) RecentTransactions(ctx context.Context, shopID uuid.UUID, limit int) ([]domain.Transaction, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE shop_id=$1
		ORDER BY transaction_date DESC, id DESC
		LIMIT $2
	`, shopID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.ShopID, &t.CustomerID, &t.TotalAmount.Amount, &t.PointsEarned,
			&t.PointsRedeemed, &t.Status, &t.Notes, &t.TransactionDate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// SalesSeries buckets completed-sale totals per day or per month
// between from and to.
func (r *StatsRepository) SalesSeries(ctx context.Context, shopID uuid.UUID, from, to time.Time, byMonth bool) ([]SalesPoint, error) {
	bucket := "YYYY-MM-DD"
	if byMonth {
		bucket = "YYYY-MM"
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT to_char(transaction_date, $4) AS bucket,
		       COALESCE(SUM(total_amount),0) AS total,
		       COUNT(*) AS cnt
		FROM transactions
		WHERE shop_id=$1 AND status='completed' AND transaction_date >= $2 AND transaction_date < $3
		GROUP BY bucket
		ORDER BY bucket
	`, shopID, from, to, bucket)
	if err != nil {
		return nil, fmt.Errorf("sales series: %w", err)
	}
	defer rows.Close()

	var points []SalesPoint
	for rows.Next() {
		var p SalesPoint
		if err := rows.Scan(&p.Date, &p.Total, &p.Count); err != nil {
			return nil, fmt.Errorf("scan sales point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// LowStock lists active products at or below the threshold, emptiest
// first.
func (r *StatsRepository) LowStock(ctx context.Context, shopID uuid.UUID, threshold, limit int) ([]domain.Product, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE shop_id=$1 AND deleted_at IS NULL AND stock_quantity <= $2
		ORDER BY stock_quantity ASC, updated_at DESC
		LIMIT $3
	`, shopID, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.ShopID, &p.Name, &p.Category, &p.Price.Amount, &p.StockQuantity,
			&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// InventoryTotals returns the out-of-stock count and the value of the
// stock on hand.
func (r *StatsRepository) InventoryTotals(ctx context.Context, shopID uuid.UUID) (outOfStock int64, value int64, err error) {
	err = r.DB.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE stock_quantity = 0),
			COALESCE(SUM(stock_quantity::bigint * price), 0)
		FROM products
		WHERE shop_id=$1 AND deleted_at IS NULL
	`, shopID).Scan(&outOfStock, &value)
	if err != nil {
		return 0, 0, fmt.Errorf("inventory totals: %w", err)
	}
	return outOfStock, value, nil
}

// CategoryMetrics groups stock counts and value per product category,
// most valuable first.
func (r *StatsRepository) CategoryMetrics(ctx context.Context, shopID uuid.UUID) ([]CategoryMetric, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT category,
		       COUNT(*) AS product_count,
		       COALESCE(SUM(stock_quantity),0) AS total_stock,
		       COALESCE(SUM(stock_quantity::bigint * price),0) AS inventory_value
		FROM products
		WHERE shop_id=$1 AND deleted_at IS NULL
		GROUP BY category
		ORDER BY inventory_value DESC
	`, shopID)
	if err != nil {
		return nil, fmt.Errorf("category metrics: %w", err)
	}
	defer rows.Close()

	var metrics []CategoryMetric
	for rows.Next() {
		var m CategoryMetric
		if err := rows.Scan(&m.Category, &m.ProductCount, &m.TotalStock, &m.InventoryValue); err != nil {
			return nil, fmt.Errorf("scan category metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
