package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarnedPoints(t *testing.T) {
	tests := []struct {
		name          string
		amount        int64
		pointsPerUnit int
		want          int
	}{
		{"exact multiple", 5000, 1, 5},
		{"fractional floors down", 1500, 1, 1},
		{"below denominator", 999, 1, 0},
		{"zero amount", 0, 1, 0},
		{"higher rate", 2500, 3, 7},
		{"zero rate", 10000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EarnedPoints(tt.amount, tt.pointsPerUnit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEarnedPointsNegativeInput(t *testing.T) {
	_, err := EarnedPoints(-100, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EarnedPoints(1000, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestApplyTierMultiplierFloors(t *testing.T) {
	// 10 * 1.15 = 11.5 must floor to 11, never round to 12.
	got, err := ApplyTierMultiplier(10, decimal.RequireFromString("1.15"))
	require.NoError(t, err)
	assert.Equal(t, 11, got)

	got, err = ApplyTierMultiplier(6, decimal.RequireFromString("1.1"))
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	got, err = ApplyTierMultiplier(5, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestApplyTierMultiplierRejectsNegatives(t *testing.T) {
	_, err := ApplyTierMultiplier(-1, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ApplyTierMultiplier(1, decimal.RequireFromString("-0.5"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRedemptionAmount(t *testing.T) {
	got, err := RedemptionAmount(300, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), got)

	_, err = RedemptionAmount(-1, 100)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RedemptionAmount(10, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
