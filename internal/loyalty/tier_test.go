package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hamedAligholizade/ajiro/internal/domain"
)

func defaultThresholds() map[domain.Tier]int {
	return map[domain.Tier]int{
		domain.TierBronze:   0,
		domain.TierSilver:   1000,
		domain.TierGold:     5000,
		domain.TierPlatinum: 20000,
	}
}

func TestResolveTier(t *testing.T) {
	thresholds := defaultThresholds()

	tests := []struct {
		points int
		want   domain.Tier
	}{
		{0, domain.TierBronze},
		{999, domain.TierBronze},
		{1000, domain.TierSilver},
		{1001, domain.TierSilver},
		{4999, domain.TierSilver},
		{5000, domain.TierGold},
		{19999, domain.TierGold},
		{20000, domain.TierPlatinum},
		{1000000, domain.TierPlatinum},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveTier(tt.points, thresholds), "points=%d", tt.points)
	}
}

func TestResolveTierEqualThresholdsHigherRankWins(t *testing.T) {
	thresholds := map[domain.Tier]int{
		domain.TierBronze:   0,
		domain.TierSilver:   0,
		domain.TierGold:     5000,
		domain.TierPlatinum: 20000,
	}
	assert.Equal(t, domain.TierSilver, ResolveTier(0, thresholds))
}

func TestResolveTierMissingEntriesFallBack(t *testing.T) {
	thresholds := map[domain.Tier]int{
		domain.TierBronze: 0,
		domain.TierGold:   5000,
	}
	assert.Equal(t, domain.TierBronze, ResolveTier(4999, thresholds))
	assert.Equal(t, domain.TierGold, ResolveTier(5000, thresholds))
}

func TestValidateThresholds(t *testing.T) {
	assert.NoError(t, ValidateThresholds(defaultThresholds()))

	decreasing := defaultThresholds()
	decreasing[domain.TierGold] = 500 // below silver
	assert.ErrorIs(t, ValidateThresholds(decreasing), ErrInvalidArgument)

	missing := defaultThresholds()
	delete(missing, domain.TierPlatinum)
	assert.ErrorIs(t, ValidateThresholds(missing), ErrInvalidArgument)

	negative := defaultThresholds()
	negative[domain.TierBronze] = -1
	assert.ErrorIs(t, ValidateThresholds(negative), ErrInvalidArgument)
}

func TestValidateMultipliers(t *testing.T) {
	valid := map[domain.Tier]decimal.Decimal{
		domain.TierBronze:   decimal.NewFromInt(1),
		domain.TierSilver:   decimal.RequireFromString("1.1"),
		domain.TierGold:     decimal.RequireFromString("1.2"),
		domain.TierPlatinum: decimal.RequireFromString("1.5"),
	}
	assert.NoError(t, ValidateMultipliers(valid))

	valid[domain.TierSilver] = decimal.RequireFromString("0.9")
	assert.ErrorIs(t, ValidateMultipliers(valid), ErrInvalidArgument)

	delete(valid, domain.TierSilver)
	assert.ErrorIs(t, ValidateMultipliers(valid), ErrInvalidArgument)
}
