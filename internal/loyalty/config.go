package loyalty

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamedAligholizade/ajiro/internal/domain"
)

// DefaultConfig returns the config a shop starts with before the owner
// tunes anything: 1 point per 1000 spent, 100 currency units back per
// point, no expiry.
func DefaultConfig(shopID uuid.UUID) domain.LoyaltyConfig {
	now := time.Now()
	return domain.LoyaltyConfig{
		ID:              uuid.New(),
		ShopID:          shopID,
		IsEnabled:       true,
		PointsPerUnit:   1,
		RedemptionValue: 100,
		TierThresholds: map[domain.Tier]int{
			domain.TierBronze:   0,
			domain.TierSilver:   1000,
			domain.TierGold:     5000,
			domain.TierPlatinum: 20000,
		},
		TierMultipliers: map[domain.Tier]decimal.Decimal{
			domain.TierBronze:   decimal.NewFromInt(1),
			domain.TierSilver:   decimal.RequireFromString("1.1"),
			domain.TierGold:     decimal.RequireFromString("1.2"),
			domain.TierPlatinum: decimal.RequireFromString("1.5"),
		},
		SpecialRules: map[string]int{
			"birthdayBonus": 500,
			"welcomeBonus":  200,
			"referralBonus": 300,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateConfig rejects malformed configs before they are persisted.
func ValidateConfig(cfg domain.LoyaltyConfig) error {
	if cfg.PointsPerUnit < 0 {
		return fmt.Errorf("%w: pointsPerUnit %d must be >= 0", ErrInvalidArgument, cfg.PointsPerUnit)
	}
	if cfg.RedemptionValue < 1 {
		return fmt.Errorf("%w: redemptionValue %d must be >= 1", ErrInvalidArgument, cfg.RedemptionValue)
	}
	if cfg.PointsExpiryDays != nil && *cfg.PointsExpiryDays <= 0 {
		return fmt.Errorf("%w: pointsExpiryDays %d must be positive", ErrInvalidArgument, *cfg.PointsExpiryDays)
	}
	if err := ValidateThresholds(cfg.TierThresholds); err != nil {
		return err
	}
	if err := ValidateMultipliers(cfg.TierMultipliers); err != nil {
		return err
	}
	for name, bonus := range cfg.SpecialRules {
		if bonus < 0 {
			return fmt.Errorf("%w: special rule %q has negative bonus %d", ErrInvalidArgument, name, bonus)
		}
	}
	return nil
}
