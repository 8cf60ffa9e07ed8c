// Package repository implements the persistence layer over pgx.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/hamedAligholizade/ajiro/internal/db"
	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/service"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// store code serves autocommit reads and transactional writes.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Gateway implements service.Gateway. Outside InTx its store methods
// run against the pool; inside InTx they share one transaction, which
// is what gives FOR UPDATE row locks their scope.
type Gateway struct {
	DB *db.Postgres
	store
}

func NewGateway(pg *db.Postgres) *Gateway {
	return &Gateway{DB: pg, store: store{q: pg.Pool}}
}

// InTx runs fn against a transaction-bound store. fn returning an
// error rolls everything back.
func (g *Gateway) InTx(ctx context.Context, fn func(service.Store) error) error {
	tx, err := g.DB.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(store{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type store struct {
	q querier
}

func (s store) LoyaltyConfig(ctx context.Context, shopID uuid.UUID) (*domain.LoyaltyConfig, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, shop_id, is_enabled, points_per_unit, redemption_value, points_expiry_days,
		       tier_thresholds, tier_multipliers, special_rules, created_at, updated_at
		FROM loyalty_configs
		WHERE shop_id=$1
	`, shopID)

	var cfg domain.LoyaltyConfig
	var thresholds, multipliers, rules []byte
	err := row.Scan(&cfg.ID, &cfg.ShopID, &cfg.IsEnabled, &cfg.PointsPerUnit, &cfg.RedemptionValue,
		&cfg.PointsExpiryDays, &thresholds, &multipliers, &rules, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("get loyalty config: %w", err)
	}

	if err := json.Unmarshal(thresholds, &cfg.TierThresholds); err != nil {
		return nil, fmt.Errorf("decode tier thresholds: %w", err)
	}
	if err := json.Unmarshal(multipliers, &cfg.TierMultipliers); err != nil {
		return nil, fmt.Errorf("decode tier multipliers: %w", err)
	}
	if err := json.Unmarshal(rules, &cfg.SpecialRules); err != nil {
		return nil, fmt.Errorf("decode special rules: %w", err)
	}
	return &cfg, nil
}

func (s store) SaveLoyaltyConfig(ctx context.Context, cfg *domain.LoyaltyConfig) error {
	thresholds, err := json.Marshal(cfg.TierThresholds)
	if err != nil {
		return fmt.Errorf("encode tier thresholds: %w", err)
	}
	multipliers, err := json.Marshal(decimalMapToNumbers(cfg.TierMultipliers))
	if err != nil {
		return fmt.Errorf("encode tier multipliers: %w", err)
	}
	rules, err := json.Marshal(cfg.SpecialRules)
	if err != nil {
		return fmt.Errorf("encode special rules: %w", err)
	}

	_, err = s.q.Exec(ctx, `
		INSERT INTO loyalty_configs
			(id, shop_id, is_enabled, points_per_unit, redemption_value, points_expiry_days,
			 tier_thresholds, tier_multipliers, special_rules, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now(), now())
		ON CONFLICT (shop_id) DO UPDATE SET
			is_enabled=EXCLUDED.is_enabled,
			points_per_unit=EXCLUDED.points_per_unit,
			redemption_value=EXCLUDED.redemption_value,
			points_expiry_days=EXCLUDED.points_expiry_days,
			tier_thresholds=EXCLUDED.tier_thresholds,
			tier_multipliers=EXCLUDED.tier_multipliers,
			special_rules=EXCLUDED.special_rules,
			updated_at=now()
	`, cfg.ID, cfg.ShopID, cfg.IsEnabled, cfg.PointsPerUnit, cfg.RedemptionValue,
		cfg.PointsExpiryDays, thresholds, multipliers, rules)
	if err != nil {
		return fmt.Errorf("save loyalty config: %w", err)
	}
	return nil
}

// decimalMapToNumbers stores multipliers as JSON numbers rather than
// the quoted strings shopspring/decimal marshals by default.
func decimalMapToNumbers(m map[domain.Tier]decimal.Decimal) map[domain.Tier]json.RawMessage {
	out := make(map[domain.Tier]json.RawMessage, len(m))
	for tier, d := range m {
		out[tier] = json.RawMessage(d.String())
	}
	return out
}

const customerColumns = `
	id, shop_id, first_name, last_name, mobile_number, email, birth_date,
	total_points, available_points, tier, total_spent, notes, is_active,
	created_at, updated_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.ShopID, &c.FirstName, &c.LastName, &c.MobileNumber, &c.Email, &c.BirthDate,
		&c.TotalPoints, &c.AvailablePoints, &c.Tier, &c.TotalSpent.Amount, &c.Notes, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return &c, nil
}

func (s store) Customer(ctx context.Context, shopID, customerID uuid.UUID) (*domain.Customer, error) {
	return scanCustomer(s.q.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id=$1 AND shop_id=$2 AND is_active
	`, customerID, shopID))
}

func (s store) CustomerForUpdate(ctx context.Context, shopID, customerID uuid.UUID) (*domain.Customer, error) {
	return scanCustomer(s.q.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id=$1 AND shop_id=$2 AND is_active
		FOR UPDATE
	`, customerID, shopID))
}

func (s store) SaveCustomerBalances(ctx context.Context, c *domain.Customer) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE customers
		SET total_points=$1, available_points=$2, tier=$3, total_spent=$4, updated_at=now()
		WHERE id=$5 AND shop_id=$6
	`, c.TotalPoints, c.AvailablePoints, c.Tier, c.TotalSpent.Amount, c.ID, c.ShopID)
	if err != nil {
		return fmt.Errorf("save customer balances: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s store) ProductForUpdate(ctx context.Context, shopID, productID uuid.UUID) (*domain.Product, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, shop_id, name, category, price, stock_quantity, created_at, updated_at
		FROM products
		WHERE id=$1 AND shop_id=$2 AND deleted_at IS NULL
		FOR UPDATE
	`, productID, shopID)

	var p domain.Product
	err := row.Scan(&p.ID, &p.ShopID, &p.Name, &p.Category, &p.Price.Amount, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return &p, nil
}

func (s store) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
	`, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s store) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO transactions
			(shop_id, customer_id, total_amount, points_earned, points_redeemed, status, notes, transaction_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now())
		RETURNING id
	`, t.ShopID, t.CustomerID, t.TotalAmount.Amount, t.PointsEarned, t.PointsRedeemed,
		t.Status, t.Notes, t.TransactionDate).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (s store) CreateTransactionItems(ctx context.Context, items []domain.TransactionItem) error {
	for i := range items {
		it := &items[i]
		err := s.q.QueryRow(ctx, `
			INSERT INTO transaction_items (transaction_id, product_id, name, quantity, price_at_sale, subtotal, created_at)
			VALUES ($1,$2,$3,$4,$5,$6, now())
			RETURNING id
		`, it.TransactionID, it.ProductID, it.Name, it.Quantity, it.PriceAtSale.Amount, it.Subtotal.Amount).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("create transaction item: %w", err)
		}
	}
	return nil
}

func (s store) SetTransactionPoints(ctx context.Context, transactionID int64, earned, redeemed int) error {
	_, err := s.q.Exec(ctx, `
		UPDATE transactions SET points_earned=$2, points_redeemed=$3 WHERE id=$1
	`, transactionID, earned, redeemed)
	if err != nil {
		return fmt.Errorf("set transaction points: %w", err)
	}
	return nil
}

func (s store) AppendPointEntry(ctx context.Context, entry *domain.PointTransaction) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO point_transactions
			(id, customer_id, shop_id, transaction_id, points, type, description, expiry_date, is_expired, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, FALSE, $9)
	`, entry.ID, entry.CustomerID, entry.ShopID, entry.TransactionID, entry.Points,
		entry.Type, entry.Description, entry.ExpiryDate, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append point entry: %w", err)
	}
	return nil
}

func (s store) PointEntries(ctx context.Context, shopID, customerID uuid.UUID, limit int) ([]domain.PointTransaction, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, customer_id, shop_id, transaction_id, points, type, description, expiry_date, is_expired, created_at
		FROM point_transactions
		WHERE shop_id=$1 AND customer_id=$2
		ORDER BY created_at DESC
		LIMIT $3
	`, shopID, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("select point entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.PointTransaction
	for rows.Next() {
		var e domain.PointTransaction
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.ShopID, &e.TransactionID, &e.Points,
			&e.Type, &e.Description, &e.ExpiryDate, &e.IsExpired, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan point entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
