package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hamedAligholizade/ajiro/internal/db"
	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/service"
)

type TransactionRepository struct {
	DB *db.Postgres
}

func NewTransactionRepository(pg *db.Postgres) *TransactionRepository {
	return &TransactionRepository{DB: pg}
}

const transactionColumns = `
	id, shop_id, customer_id, total_amount, points_earned, points_redeemed,
	status, notes, transaction_date, created_at`

// List returns transactions in the date range, newest first, with
// their line items attached.
func (r *TransactionRepository) List(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]domain.Transaction, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE shop_id=$1 AND transaction_date >= $2 AND transaction_date < $3
		ORDER BY transaction_date DESC, id DESC
	`, shopID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	var ids []int64
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.ShopID, &t.CustomerID, &t.TotalAmount.Amount, &t.PointsEarned,
			&t.PointsRedeemed, &t.Status, &t.Notes, &t.TransactionDate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return txs, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		txs[i].Items = items[txs[i].ID]
	}
	return txs, nil
}

func (r *TransactionRepository) Get(ctx context.Context, shopID uuid.UUID, id int64) (*domain.Transaction, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id=$1 AND shop_id=$2
	`, id, shopID)

	var t domain.Transaction
	err := row.Scan(&t.ID, &t.ShopID, &t.CustomerID, &t.TotalAmount.Amount, &t.PointsEarned,
		&t.PointsRedeemed, &t.Status, &t.Notes, &t.TransactionDate, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	items, err := r.itemsFor(ctx, []int64{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = items[t.ID]
	return &t, nil
}

func (r *TransactionRepository) itemsFor(ctx context.Context, ids []int64) (map[int64][]domain.TransactionItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, transaction_id, product_id, name, quantity, price_at_sale, subtotal, created_at
		FROM transaction_items
		WHERE transaction_id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]domain.TransactionItem)
	for rows.Next() {
		var it domain.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.Name, &it.Quantity,
			&it.PriceAtSale.Amount, &it.Subtotal.Amount, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		items[it.TransactionID] = append(items[it.TransactionID], it)
	}
	return items, rows.Err()
}
