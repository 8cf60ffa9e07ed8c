package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/loyalty"
)

// LoyaltyService exposes the loyalty operations that are not part of a
// sale: previews, manual adjustments, config management, and the
// customer loyalty view.
type LoyaltyService struct {
	Gateway Gateway
	Logger  *slog.Logger
}

type PreviewResult struct {
	Points     int
	BasePoints int
	Tier       domain.Tier
	Multiplier decimal.Decimal
}

// PreviewPoints quotes the points a sale would earn without persisting
// anything. No customer or a disabled program quotes zero; neither is
// an error.
func (s *LoyaltyService) PreviewPoints(ctx context.Context, shopID uuid.UUID, customerID *uuid.UUID, amount int64) (*PreviewResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: negative amount %d", loyalty.ErrInvalidArgument, amount)
	}

	res := &PreviewResult{Multiplier: decimal.NewFromInt(1)}
	if customerID == nil {
		return res, nil
	}

	cfg, err := s.GetConfig(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !cfg.IsEnabled {
		return res, nil
	}

	customer, err := s.Gateway.Customer(ctx, shopID, *customerID)
	if err != nil {
		return nil, err
	}

	base, err := loyalty.EarnedPoints(amount, cfg.PointsPerUnit)
	if err != nil {
		return nil, err
	}
	points, err := loyalty.PreviewEarn(amount, customer.Tier, *cfg)
	if err != nil {
		return nil, err
	}

	res.Points = points
	res.BasePoints = base
	res.Tier = customer.Tier
	if m, ok := cfg.TierMultipliers[customer.Tier]; ok {
		res.Multiplier = m
	}
	return res, nil
}

type AdjustResult struct {
	EntryID     uuid.UUID
	NewBalance  int
	TierChanged bool
	NewTier     domain.Tier
}

// AdjustPoints applies a signed manual correction to a customer's
// balance inside one transaction, holding the customer row lock across
// the read-modify-write.
func (s *LoyaltyService) AdjustPoints(ctx context.Context, shopID, customerID uuid.UUID, delta int, description string) (*AdjustResult, error) {
	var out *AdjustResult
	err := s.Gateway.InTx(ctx, func(store Store) error {
		cfg, err := configOrDefault(ctx, store, shopID)
		if err != nil {
			return err
		}
		customer, err := store.CustomerForUpdate(ctx, shopID, customerID)
		if err != nil {
			return err
		}

		res, err := loyalty.Adjust(customer, delta, description, *cfg, nowFunc())
		if err != nil {
			return err
		}
		if err := store.AppendPointEntry(ctx, res.Entry); err != nil {
			return err
		}
		if err := store.SaveCustomerBalances(ctx, customer); err != nil {
			return err
		}

		out = &AdjustResult{
			EntryID:     res.Entry.ID,
			NewBalance:  customer.AvailablePoints,
			TierChanged: res.TierChanged,
			NewTier:     customer.Tier,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetConfig returns the shop's loyalty config, creating the default one
// on first access.
func (s *LoyaltyService) GetConfig(ctx context.Context, shopID uuid.UUID) (*domain.LoyaltyConfig, error) {
	return configOrDefault(ctx, s.Gateway, shopID)
}

// UpdateConfigInput carries partial config updates; nil fields keep
// their current value.
type UpdateConfigInput struct {
	IsEnabled        *bool
	PointsPerUnit    *int
	RedemptionValue  *int
	PointsExpiryDays *int
	ClearExpiry      bool
	TierThresholds   map[domain.Tier]int
	TierMultipliers  map[domain.Tier]decimal.Decimal
	SpecialRules     map[string]int
}

// UpdateConfig merges the given fields into the shop's config,
// validates the result, and persists it. The read-merge-write runs
// inside one transaction so concurrent edits cannot drop each other's
// fields.
func (s *LoyaltyService) UpdateConfig(ctx context.Context, shopID uuid.UUID, in UpdateConfigInput) (*domain.LoyaltyConfig, error) {
	var out *domain.LoyaltyConfig
	err := s.Gateway.InTx(ctx, func(store Store) error {
		cfg, err := configOrDefault(ctx, store, shopID)
		if err != nil {
			return err
		}

		if in.IsEnabled != nil {
			cfg.IsEnabled = *in.IsEnabled
		}
		if in.PointsPerUnit != nil {
			cfg.PointsPerUnit = *in.PointsPerUnit
		}
		if in.RedemptionValue != nil {
			cfg.RedemptionValue = *in.RedemptionValue
		}
		if in.ClearExpiry {
			cfg.PointsExpiryDays = nil
		} else if in.PointsExpiryDays != nil {
			cfg.PointsExpiryDays = in.PointsExpiryDays
		}
		if in.TierThresholds != nil {
			cfg.TierThresholds = in.TierThresholds
		}
		if in.TierMultipliers != nil {
			cfg.TierMultipliers = in.TierMultipliers
		}
		if in.SpecialRules != nil {
			cfg.SpecialRules = in.SpecialRules
		}

		if err := loyalty.ValidateConfig(*cfg); err != nil {
			return err
		}
		cfg.UpdatedAt = nowFunc()
		if err := store.SaveLoyaltyConfig(ctx, cfg); err != nil {
			return err
		}
		out = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type CustomerLoyalty struct {
	Customer *domain.Customer
	Entries  []domain.PointTransaction
}

// CustomerLoyaltyDetail returns a customer's balances, tier, and recent
// ledger entries.
func (s *LoyaltyService) CustomerLoyaltyDetail(ctx context.Context, shopID, customerID uuid.UUID) (*CustomerLoyalty, error) {
	customer, err := s.Gateway.Customer(ctx, shopID, customerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Gateway.PointEntries(ctx, shopID, customerID, 50)
	if err != nil {
		return nil, err
	}
	return &CustomerLoyalty{Customer: customer, Entries: entries}, nil
}
