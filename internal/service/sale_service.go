package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/loyalty"
	"github.com/hamedAligholizade/ajiro/internal/ports"
)

// SaleService coordinates an atomic sale: stock validation and
// decrement, transaction + line item rows, and the loyalty ledger
// mutations, all inside one Gateway transaction. Any failure rolls the
// whole unit back.
type SaleService struct {
	Gateway  Gateway
	Notifier ports.Notifier
	Currency string
	Logger   *slog.Logger
}

type SaleItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type RecordSaleInput struct {
	ShopID         uuid.UUID
	Items          []SaleItemInput
	CustomerID     *uuid.UUID
	PointsToRedeem int
	Notes          string
}

type RecordSaleResult struct {
	Transaction    *domain.Transaction
	Customer       *domain.Customer
	PointsEarned   int
	PointsRedeemed int
	DiscountAmount int64
	TierChanged    bool
	NewTier        domain.Tier
}

// RecordSale validates and persists one sale. Line prices always come
// from the product row at the moment of sale, never from the caller.
// Redemption is applied before earning; the earn multiplier reads the
// tier as it stood before this sale.
func (s *SaleService) RecordSale(ctx context.Context, in RecordSaleInput) (*RecordSaleResult, error) {
	if err := validateSaleInput(in); err != nil {
		return nil, err
	}

	now := nowFunc()
	res := &RecordSaleResult{}

	err := s.Gateway.InTx(ctx, func(store Store) error {
		cfg, err := configOrDefault(ctx, store, in.ShopID)
		if err != nil {
			return err
		}

		// Lock and decrement stock for every line, building the items
		// at the product's current price.
		var gross int64
		items := make([]domain.TransactionItem, 0, len(in.Items))
		for _, line := range in.Items {
			p, err := store.ProductForUpdate(ctx, in.ShopID, line.ProductID)
			if err != nil {
				return err
			}
			if line.Quantity > p.StockQuantity {
				return &InsufficientStockError{
					ProductID: p.ID,
					Product:   p.Name,
					Requested: line.Quantity,
					Available: p.StockQuantity,
				}
			}
			if err := store.DecrementStock(ctx, p.ID, line.Quantity); err != nil {
				return err
			}
			subtotal := p.Price.Amount * int64(line.Quantity)
			gross += subtotal
			items = append(items, domain.TransactionItem{
				ProductID:   p.ID,
				Name:        p.Name,
				Quantity:    line.Quantity,
				PriceAtSale: p.Price,
				Subtotal:    domain.Money{Amount: subtotal, Currency: p.Price.Currency},
				CreatedAt:   now,
			})
		}

		var customer *domain.Customer
		if in.CustomerID != nil {
			customer, err = store.CustomerForUpdate(ctx, in.ShopID, *in.CustomerID)
			if err != nil {
				return err
			}
		}

		// Redeem before earn so the balance decrement and the earn
		// addition serialize under the same customer row lock.
		var redeemed *loyalty.RedeemResult
		if in.PointsToRedeem > 0 {
			redeemed, err = loyalty.Redeem(customer, in.PointsToRedeem, *cfg, nil, now)
			if err != nil {
				return err
			}
			res.PointsRedeemed = in.PointsToRedeem
			res.DiscountAmount = redeemed.DiscountAmount
		}

		total := gross - res.DiscountAmount
		if total < 0 {
			total = 0
		}

		t := &domain.Transaction{
			ShopID:          in.ShopID,
			CustomerID:      in.CustomerID,
			TotalAmount:     domain.Money{Amount: total, Currency: s.Currency},
			Status:          domain.TransactionCompleted,
			Notes:           in.Notes,
			TransactionDate: now,
			CreatedAt:       now,
		}
		if err := store.CreateTransaction(ctx, t); err != nil {
			return err
		}
		for i := range items {
			items[i].TransactionID = t.ID
		}
		if err := store.CreateTransactionItems(ctx, items); err != nil {
			return err
		}
		t.Items = items

		if customer != nil {
			if redeemed != nil {
				redeemed.Entry.TransactionID = &t.ID
				if err := store.AppendPointEntry(ctx, redeemed.Entry); err != nil {
					return err
				}
			}

			earned, err := loyalty.Earn(customer, total, *cfg, &t.ID, now)
			if err != nil {
				return err
			}
			if earned.Entry != nil {
				if err := store.AppendPointEntry(ctx, earned.Entry); err != nil {
					return err
				}
			}
			res.PointsEarned = earned.PointsEarned
			res.TierChanged = earned.TierChanged
			res.NewTier = earned.NewTier

			if err := store.SaveCustomerBalances(ctx, customer); err != nil {
				return err
			}
			if err := store.SetTransactionPoints(ctx, t.ID, res.PointsEarned, res.PointsRedeemed); err != nil {
				return err
			}
			t.PointsEarned = res.PointsEarned
			t.PointsRedeemed = res.PointsRedeemed
		}

		res.Transaction = t
		res.Customer = customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifySale(res)
	return res, nil
}

func validateSaleInput(in RecordSaleInput) error {
	if in.ShopID == uuid.Nil {
		return fmt.Errorf("%w: shop id is required", loyalty.ErrInvalidArgument)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: a sale needs at least one item", loyalty.ErrInvalidArgument)
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity %d must be positive", loyalty.ErrInvalidArgument, line.Quantity)
		}
	}
	if in.PointsToRedeem < 0 {
		return fmt.Errorf("%w: pointsToRedeem must not be negative", loyalty.ErrInvalidArgument)
	}
	if in.PointsToRedeem > 0 && in.CustomerID == nil {
		return fmt.Errorf("%w: pointsToRedeem requires a customer", loyalty.ErrInvalidArgument)
	}
	return nil
}

// notifySale sends the receipt SMS outside the transaction. Failures
// are logged and dropped.
func (s *SaleService) notifySale(res *RecordSaleResult) {
	if s.Notifier == nil || res.Customer == nil || res.Customer.MobileNumber == "" {
		return
	}

	msg := fmt.Sprintf("Purchase of %d recorded. Points earned: %d, balance: %d.",
		res.Transaction.TotalAmount.Amount, res.PointsEarned, res.Customer.AvailablePoints)
	mobile := res.Customer.MobileNumber

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Notifier.Send(ctx, mobile, msg); err != nil && s.Logger != nil {
			s.Logger.Warn("sale notification failed", "mobile", mobile, "err", err)
		}
	}()
}
