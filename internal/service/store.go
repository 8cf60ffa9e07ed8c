// Package service holds the application services: the sale transaction
// coordinator and the loyalty operations the HTTP layer calls. Both
// talk to persistence through the Store/Gateway contract so the
// business rules stay independent of pgx.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/loyalty"
)

// ErrNotFound is returned when a referenced record does not exist in
// the given shop scope.
var ErrNotFound = errors.New("not found")

// InsufficientStockError refuses a sale line that would drive a
// product's stock below zero, reporting what is actually available.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Product   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Product, e.Requested, e.Available)
}

// ErrInsufficientStock is the match target for InsufficientStockError.
var ErrInsufficientStock = errors.New("insufficient stock")

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Store is the persistence contract the services operate against.
// Methods suffixed ForUpdate must lock the row for the remainder of
// the enclosing transaction when backed by a real database.
type Store interface {
	LoyaltyConfig(ctx context.Context, shopID uuid.UUID) (*domain.LoyaltyConfig, error)
	SaveLoyaltyConfig(ctx context.Context, cfg *domain.LoyaltyConfig) error

	Customer(ctx context.Context, shopID, customerID uuid.UUID) (*domain.Customer, error)
	CustomerForUpdate(ctx context.Context, shopID, customerID uuid.UUID) (*domain.Customer, error)
	SaveCustomerBalances(ctx context.Context, c *domain.Customer) error

	ProductForUpdate(ctx context.Context, shopID, productID uuid.UUID) (*domain.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error

	CreateTransaction(ctx context.Context, t *domain.Transaction) error
	CreateTransactionItems(ctx context.Context, items []domain.TransactionItem) error
	SetTransactionPoints(ctx context.Context, transactionID int64, earned, redeemed int) error

	AppendPointEntry(ctx context.Context, entry *domain.PointTransaction) error
	PointEntries(ctx context.Context, shopID, customerID uuid.UUID, limit int) ([]domain.PointTransaction, error)
}

// Gateway widens Store with a transaction boundary. InTx runs fn
// against a Store bound to one database transaction; if fn returns an
// error nothing written inside it survives.
type Gateway interface {
	Store
	InTx(ctx context.Context, fn func(Store) error) error
}

// nowFunc is swapped in tests that pin expiry dates.
var nowFunc = time.Now

// configOrDefault returns the shop's loyalty config, creating and
// persisting the default one for shops that never opened their loyalty
// settings. A missing config row must never fail a sale or an
// adjustment.
func configOrDefault(ctx context.Context, store Store, shopID uuid.UUID) (*domain.LoyaltyConfig, error) {
	cfg, err := store.LoyaltyConfig(ctx, shopID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := loyalty.DefaultConfig(shopID)
	if err := store.SaveLoyaltyConfig(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
