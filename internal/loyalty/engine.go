package loyalty

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamedAligholizade/ajiro/internal/domain"
)

// The engine functions below are the single source of truth for point
// mutations. Both the preview path and the commit path go through
// PreviewEarn, so a quoted number always matches what a sale awards.
// Callers are responsible for running them inside the same atomic unit
// that persists the returned ledger entry and the customer record.

// PreviewEarn computes the points a sale of the given amount would earn
// for a customer in the given tier. Returns 0 when the program is
// disabled; that is a defined outcome, not an error.
func PreviewEarn(amount int64, tier domain.Tier, cfg domain.LoyaltyConfig) (int, error) {
	if !cfg.IsEnabled {
		return 0, nil
	}
	base, err := EarnedPoints(amount, cfg.PointsPerUnit)
	if err != nil {
		return 0, err
	}
	multiplier, ok := cfg.TierMultipliers[tier]
	if !ok {
		multiplier = decimal.NewFromInt(1)
	}
	return ApplyTierMultiplier(base, multiplier)
}

// EarnResult reports the outcome of applying an earn transition.
type EarnResult struct {
	// Entry is nil when the program is disabled or no points accrued.
	Entry        *domain.PointTransaction
	PointsEarned int
	TierChanged  bool
	NewTier      domain.Tier
}

// Earn applies the post-sale earn transition to the customer: appends
// an earned ledger entry, raises TotalPoints/AvailablePoints/TotalSpent
// and recomputes the tier from the new lifetime total. The multiplier
// is read from the tier as it stood before this sale. No-op when the
// program is disabled.
func Earn(c *domain.Customer, amount int64, cfg domain.LoyaltyConfig, transactionID *int64, now time.Time) (*EarnResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: negative amount %d", ErrInvalidArgument, amount)
	}
	if !cfg.IsEnabled {
		return &EarnResult{NewTier: c.Tier}, nil
	}

	points, err := PreviewEarn(amount, c.Tier, cfg)
	if err != nil {
		return nil, err
	}

	c.TotalPoints += points
	c.AvailablePoints += points
	c.TotalSpent.Amount += amount

	res := &EarnResult{PointsEarned: points, NewTier: c.Tier}
	if points > 0 {
		var expiry *time.Time
		if cfg.PointsExpiryDays != nil {
			e := now.AddDate(0, 0, *cfg.PointsExpiryDays)
			expiry = &e
		}
		res.Entry = &domain.PointTransaction{
			ID:            uuid.New(),
			CustomerID:    c.ID,
			ShopID:        c.ShopID,
			TransactionID: transactionID,
			Points:        points,
			Type:          domain.PointsEarned,
			Description:   fmt.Sprintf("Earned %d points from purchase of %d", points, amount),
			ExpiryDate:    expiry,
			CreatedAt:     now,
		}
	}

	if newTier := ResolveTier(c.TotalPoints, cfg.TierThresholds); newTier != c.Tier {
		c.Tier = newTier
		res.TierChanged = true
		res.NewTier = newTier
	}
	return res, nil
}

// RedeemResult reports the outcome of a redemption.
type RedeemResult struct {
	Entry          *domain.PointTransaction
	DiscountAmount int64
}

// Redeem converts available points into a currency discount. It only
// touches AvailablePoints; lifetime points and tier are unaffected.
func Redeem(c *domain.Customer, points int, cfg domain.LoyaltyConfig, transactionID *int64, now time.Time) (*RedeemResult, error) {
	if !cfg.IsEnabled {
		return nil, ErrProgramDisabled
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: pointsToRedeem %d must be positive", ErrInvalidArgument, points)
	}
	if points > c.AvailablePoints {
		return nil, &InsufficientPointsError{Requested: points, Available: c.AvailablePoints}
	}

	discount, err := RedemptionAmount(points, cfg.RedemptionValue)
	if err != nil {
		return nil, err
	}

	c.AvailablePoints -= points

	return &RedeemResult{
		Entry: &domain.PointTransaction{
			ID:            uuid.New(),
			CustomerID:    c.ID,
			ShopID:        c.ShopID,
			TransactionID: transactionID,
			Points:        -points,
			Type:          domain.PointsRedeemed,
			Description:   fmt.Sprintf("Redeemed %d points for %d discount", points, discount),
			CreatedAt:     now,
		},
		DiscountAmount: discount,
	}, nil
}

// AdjustResult reports the outcome of a manual adjustment.
type AdjustResult struct {
	Entry       *domain.PointTransaction
	TierChanged bool
	NewTier     domain.Tier
}

// Adjust applies a signed manual correction. Negative deltas must not
// take the available balance below zero. Lifetime points only grow:
// positive deltas add to TotalPoints, negative deltas reduce the
// spendable balance alone. The tier is recomputed after every
// adjustment so it always matches the lifetime total.
func Adjust(c *domain.Customer, delta int, description string, cfg domain.LoyaltyConfig, now time.Time) (*AdjustResult, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment delta must be non-zero", ErrInvalidArgument)
	}
	if delta < 0 && c.AvailablePoints+delta < 0 {
		return nil, &InsufficientPointsError{Requested: -delta, Available: c.AvailablePoints}
	}

	if description == "" {
		description = "Manual adjustment"
	}

	c.AvailablePoints += delta
	if delta > 0 {
		c.TotalPoints += delta
	}

	res := &AdjustResult{
		Entry: &domain.PointTransaction{
			ID:          uuid.New(),
			CustomerID:  c.ID,
			ShopID:      c.ShopID,
			Points:      delta,
			Type:        domain.PointsAdjustment,
			Description: description,
			CreatedAt:   now,
		},
		NewTier: c.Tier,
	}
	if newTier := ResolveTier(c.TotalPoints, cfg.TierThresholds); newTier != c.Tier {
		c.Tier = newTier
		res.TierChanged = true
		res.NewTier = newTier
	}
	return res, nil
}
