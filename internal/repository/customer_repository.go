package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hamedAligholizade/ajiro/internal/db"
	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/service"
)

type CustomerRepository struct {
	DB *db.Postgres
}

func NewCustomerRepository(pg *db.Postgres) *CustomerRepository {
	return &CustomerRepository{DB: pg}
}

// List returns active customers, optionally filtered by a name or
// mobile substring.
func (r *CustomerRepository) List(ctx context.Context, shopID uuid.UUID, search string) ([]domain.Customer, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE shop_id=$1 AND is_active
		  AND ($2 = '' OR first_name ILIKE '%'||$2||'%' OR last_name ILIKE '%'||$2||'%' OR mobile_number LIKE '%'||$2||'%')
		ORDER BY created_at DESC
	`, shopID, search)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.ShopID, &c.FirstName, &c.LastName, &c.MobileNumber, &c.Email, &c.BirthDate,
			&c.TotalPoints, &c.AvailablePoints, &c.Tier, &c.TotalSpent.Amount, &c.Notes, &c.IsActive,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Get(ctx context.Context, shopID, customerID uuid.UUID) (*domain.Customer, error) {
	return scanCustomer(r.DB.Pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id=$1 AND shop_id=$2 AND is_active
	`, customerID, shopID))
}

// GetByMobile looks a customer up by mobile number; the POS uses this
// at the register before attaching a sale.
func (r *CustomerRepository) GetByMobile(ctx context.Context, shopID uuid.UUID, mobile string) (*domain.Customer, error) {
	return scanCustomer(r.DB.Pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE shop_id=$1 AND mobile_number=$2 AND is_active
	`, shopID, mobile))
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	c.ID = uuid.New()
	c.Tier = domain.TierBronze
	c.IsActive = true
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO customers
			(id, shop_id, first_name, last_name, mobile_number, email, birth_date,
			 total_points, available_points, tier, total_spent, notes, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, 0, 0, $8, 0, $9, TRUE, now(), now())
		RETURNING created_at, updated_at
	`, c.ID, c.ShopID, c.FirstName, c.LastName, c.MobileNumber, c.Email, c.BirthDate,
		c.Tier, c.Notes).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE customers
		SET first_name=$1, last_name=$2, mobile_number=$3, email=$4, birth_date=$5, notes=$6, updated_at=now()
		WHERE id=$7 AND shop_id=$8 AND is_active
	`, c.FirstName, c.LastName, c.MobileNumber, c.Email, c.BirthDate, c.Notes, c.ID, c.ShopID)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// Deactivate flags the customer inactive rather than deleting the row,
// so the points ledger and transaction history stay intact.
func (r *CustomerRepository) Deactivate(ctx context.Context, shopID, customerID uuid.UUID) error {
	ct, err := r.DB.Pool.Exec(ctx, `
		UPDATE customers SET is_active=FALSE, updated_at=now()
		WHERE id=$1 AND shop_id=$2 AND is_active
	`, customerID, shopID)
	if err != nil {
		return fmt.Errorf("deactivate customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}
