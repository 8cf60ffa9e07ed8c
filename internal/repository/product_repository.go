package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hamedAligholizade/ajiro/internal/db"
	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/service"
)

type ProductRepository struct {
	DB *db.Postgres
}

func NewProductRepository(pg *db.Postgres) *ProductRepository {
	return &ProductRepository{DB: pg}
}

const productColumns = `
	id, shop_id, name, category, price, stock_quantity, created_at, updated_at, deleted_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.ShopID, &p.Name, &p.Category, &p.Price.Amount, &p.StockQuantity,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context, shopID uuid.UUID) ([]domain.Product, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE shop_id=$1 AND deleted_at IS NULL
		ORDER BY name
	`, shopID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
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

func (r *ProductRepository) Get(ctx context.Context, shopID, productID uuid.UUID) (*domain.Product, error) {
	return scanProduct(r.DB.Pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id=$1 AND shop_id=$2 AND deleted_at IS NULL
	`, productID, shopID))
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.New()
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO products (id, shop_id, name, category, price, stock_quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now(), now())
		RETURNING created_at, updated_at
	`, p.ID, p.ShopID, p.Name, p.Category, p.Price.Amount, p.StockQuantity).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE products
		SET name=$1, category=$2, price=$3, stock_quantity=$4, updated_at=now()
		WHERE id=$5 AND shop_id=$6 AND deleted_at IS NULL
	`, p.Name, p.Category, p.Price.Amount, p.StockQuantity, p.ID, p.ShopID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// Delete soft-deletes so historical transaction items keep their
// product reference.
func (r *ProductRepository) Delete(ctx context.Context, shopID, productID uuid.UUID) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE products SET deleted_at=now(), updated_at=now()
		WHERE id=$1 AND shop_id=$2 AND deleted_at IS NULL
	`, productID, shopID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}
