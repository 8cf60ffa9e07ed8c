package loyalty

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hamedAligholizade/ajiro/internal/domain"
)

// tierOrder lists tiers highest rank first. ResolveTier scans in this
// order, so when two thresholds are equal the higher tier wins.
var tierOrder = []domain.Tier{
	domain.TierPlatinum,
	domain.TierGold,
	domain.TierSilver,
	domain.TierBronze,
}

// ResolveTier returns the highest tier whose threshold is within the
// customer's lifetime points. Bronze's threshold is conventionally 0,
// so any non-negative input resolves.
func ResolveTier(lifetimePoints int, thresholds map[domain.Tier]int) domain.Tier {
	for _, tier := range tierOrder {
		threshold, ok := thresholds[tier]
		if !ok {
			continue
		}
		if lifetimePoints >= threshold {
			return tier
		}
	}
	return domain.TierBronze
}

// ValidateThresholds checks that every tier is present and thresholds
// are non-decreasing in rank order (bronze <= silver <= gold <= platinum).
func ValidateThresholds(thresholds map[domain.Tier]int) error {
	prev := -1
	for i := len(tierOrder) - 1; i >= 0; i-- {
		tier := tierOrder[i]
		threshold, ok := thresholds[tier]
		if !ok {
			return fmt.Errorf("%w: missing threshold for tier %q", ErrInvalidArgument, tier)
		}
		if threshold < 0 {
			return fmt.Errorf("%w: negative threshold %d for tier %q", ErrInvalidArgument, threshold, tier)
		}
		if threshold < prev {
			return fmt.Errorf("%w: threshold for tier %q (%d) is below the previous tier (%d)", ErrInvalidArgument, tier, threshold, prev)
		}
		prev = threshold
	}
	return nil
}

// ValidateMultipliers checks that every tier has a multiplier >= 1.
func ValidateMultipliers(multipliers map[domain.Tier]decimal.Decimal) error {
	one := decimal.NewFromInt(1)
	for _, tier := range tierOrder {
		m, ok := multipliers[tier]
		if !ok {
			return fmt.Errorf("%w: missing multiplier for tier %q", ErrInvalidArgument, tier)
		}
		if m.LessThan(one) {
			return fmt.Errorf("%w: multiplier %s for tier %q must be >= 1", ErrInvalidArgument, m, tier)
		}
	}
	return nil
}
