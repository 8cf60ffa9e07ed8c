// Package loyalty implements the points engine: earn/redeem arithmetic,
// tier resolution, and the ledger state transitions applied to a
// customer during a sale or a manual adjustment.
package loyalty

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Points are awarded per pointsDenominator currency units spent.
const pointsDenominator = 1000

// EarnedPoints returns floor(amount/1000 * pointsPerUnit).
func EarnedPoints(amount int64, pointsPerUnit int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: negative amount %d", ErrInvalidArgument, amount)
	}
	if pointsPerUnit < 0 {
		return 0, fmt.Errorf("%w: negative pointsPerUnit %d", ErrInvalidArgument, pointsPerUnit)
	}
	base := decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(pointsPerUnit))).
		Div(decimal.NewFromInt(pointsDenominator)).
		Floor()
	return int(base.IntPart()), nil
}

// ApplyTierMultiplier returns floor(basePoints * multiplier). Floor, not
// round: base 10 at multiplier 1.15 yields 11.
func ApplyTierMultiplier(basePoints int, multiplier decimal.Decimal) (int, error) {
	if basePoints < 0 {
		return 0, fmt.Errorf("%w: negative basePoints %d", ErrInvalidArgument, basePoints)
	}
	if multiplier.IsNegative() {
		return 0, fmt.Errorf("%w: negative multiplier %s", ErrInvalidArgument, multiplier)
	}
	out := decimal.NewFromInt(int64(basePoints)).Mul(multiplier).Floor()
	return int(out.IntPart()), nil
}

// RedemptionAmount converts points into a currency discount.
func RedemptionAmount(points int, redemptionValue int) (int64, error) {
	if points < 0 {
		return 0, fmt.Errorf("%w: negative points %d", ErrInvalidArgument, points)
	}
	if redemptionValue < 1 {
		return 0, fmt.Errorf("%w: redemptionValue %d must be >= 1", ErrInvalidArgument, redemptionValue)
	}
	return int64(points) * int64(redemptionValue), nil
}
