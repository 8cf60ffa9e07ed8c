package loyalty

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamedAligholizade/ajiro/internal/domain"
)

func testConfig() domain.LoyaltyConfig {
	return DefaultConfig(uuid.New())
}

func testCustomer(total, available int, tier domain.Tier) *domain.Customer {
	return &domain.Customer{
		ID:              uuid.New(),
		ShopID:          uuid.New(),
		TotalPoints:     total,
		AvailablePoints: available,
		Tier:            tier,
		IsActive:        true,
	}
}

func TestPreviewEarnDisabledReturnsZero(t *testing.T) {
	cfg := testConfig()
	cfg.IsEnabled = false

	points, err := PreviewEarn(100000, domain.TierGold, cfg)
	require.NoError(t, err)
	assert.Zero(t, points)
}

func TestPreviewEarnUnknownTierDefaultsToOne(t *testing.T) {
	cfg := testConfig()
	delete(cfg.TierMultipliers, domain.TierGold)

	points, err := PreviewEarn(5000, domain.TierGold, cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, points)
}

func TestEarnBronzeStaysBronze(t *testing.T) {
	// Scenario: 950 lifetime points, bronze, sale of 5000 earns 5.
	cfg := testConfig()
	c := testCustomer(950, 950, domain.TierBronze)

	txID := int64(42)
	res, err := Earn(c, 5000, cfg, &txID, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 5, res.PointsEarned)
	assert.Equal(t, 955, c.TotalPoints)
	assert.Equal(t, 955, c.AvailablePoints)
	assert.Equal(t, int64(5000), c.TotalSpent.Amount)
	assert.False(t, res.TierChanged)
	assert.Equal(t, domain.TierBronze, c.Tier)

	require.NotNil(t, res.Entry)
	assert.Equal(t, 5, res.Entry.Points)
	assert.Equal(t, domain.PointsEarned, res.Entry.Type)
	assert.Equal(t, &txID, res.Entry.TransactionID)
	assert.Nil(t, res.Entry.ExpiryDate)
}

func TestEarnCrossesTierThreshold(t *testing.T) {
	// Scenario: 995 lifetime points, sale of 6000 earns 6 and promotes
	// the customer to silver.
	cfg := testConfig()
	c := testCustomer(995, 995, domain.TierBronze)

	res, err := Earn(c, 6000, cfg, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 6, res.PointsEarned)
	assert.Equal(t, 1001, c.TotalPoints)
	assert.True(t, res.TierChanged)
	assert.Equal(t, domain.TierSilver, res.NewTier)
	assert.Equal(t, domain.TierSilver, c.Tier)
}

func TestEarnUsesPreSaleTierMultiplier(t *testing.T) {
	cfg := testConfig()
	c := testCustomer(2000, 2000, domain.TierSilver)

	// Silver multiplier 1.1: floor(6 * 1.1) = 6.
	res, err := Earn(c, 6000, cfg, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 6, res.PointsEarned)

	// Gold multiplier 1.2 on base 10 -> 12.
	c2 := testCustomer(6000, 6000, domain.TierGold)
	res, err = Earn(c2, 10000, cfg, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 12, res.PointsEarned)
}

func TestEarnDisabledIsNoOp(t *testing.T) {
	cfg := testConfig()
	cfg.IsEnabled = false
	c := testCustomer(100, 100, domain.TierBronze)

	res, err := Earn(c, 5000, cfg, nil, time.Now())
	require.NoError(t, err)
	assert.Zero(t, res.PointsEarned)
	assert.Nil(t, res.Entry)
	assert.Equal(t, 100, c.TotalPoints)
	assert.Equal(t, 100, c.AvailablePoints)
	assert.Equal(t, int64(0), c.TotalSpent.Amount)
}

func TestEarnZeroPointsWritesNoEntry(t *testing.T) {
	cfg := testConfig()
	c := testCustomer(0, 0, domain.TierBronze)

	res, err := Earn(c, 500, cfg, nil, time.Now())
	require.NoError(t, err)
	assert.Zero(t, res.PointsEarned)
	assert.Nil(t, res.Entry)
	// The spend is still recorded.
	assert.Equal(t, int64(500), c.TotalSpent.Amount)
}

func TestEarnSetsExpiryWhenConfigured(t *testing.T) {
	cfg := testConfig()
	days := 90
	cfg.PointsExpiryDays = &days
	c := testCustomer(0, 0, domain.TierBronze)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res, err := Earn(c, 3000, cfg, nil, now)
	require.NoError(t, err)

	require.NotNil(t, res.Entry)
	require.NotNil(t, res.Entry.ExpiryDate)
	assert.Equal(t, now.AddDate(0, 0, 90), *res.Entry.ExpiryDate)
}

func TestRedeemExactBalance(t *testing.T) {
	// Scenario: 300 available, redeem all 300 at redemptionValue 100.
	cfg := testConfig()
	c := testCustomer(300, 300, domain.TierBronze)

	res, err := Redeem(c, 300, cfg, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(30000), res.DiscountAmount)
	assert.Equal(t, 0, c.AvailablePoints)
	assert.Equal(t, 300, c.TotalPoints, "lifetime points untouched by redemption")
	assert.Equal(t, -300, res.Entry.Points)
	assert.Equal(t, domain.PointsRedeemed, res.Entry.Type)
}

func TestRedeemOverBalanceFails(t *testing.T) {
	cfg := testConfig()
	c := testCustomer(300, 300, domain.TierBronze)

	_, err := Redeem(c, 301, cfg, nil, time.Now())
	require.ErrorIs(t, err, ErrInsufficientPoints)

	var ipe *InsufficientPointsError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, 301, ipe.Requested)
	assert.Equal(t, 300, ipe.Available)

	// Balance unchanged.
	assert.Equal(t, 300, c.AvailablePoints)
}

func TestRedeemRejectsDisabledAndNonPositive(t *testing.T) {
	cfg := testConfig()
	c := testCustomer(100, 100, domain.TierBronze)

	cfg.IsEnabled = false
	_, err := Redeem(c, 10, cfg, nil, time.Now())
	assert.ErrorIs(t, err, ErrProgramDisabled)

	cfg.IsEnabled = true
	_, err = Redeem(c, 0, cfg, nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Redeem(c, -5, cfg, nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAdjustNegative(t *testing.T) {
	cfg := testConfig()
	c := testCustomer(1200, 1000, domain.TierSilver)

	res, err := Adjust(c, -50, "correction", cfg, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 950, c.AvailablePoints)
	assert.Equal(t, 1200, c.TotalPoints, "negative delta leaves lifetime total alone")
	assert.Equal(t, -50, res.Entry.Points)
	assert.Equal(t, domain.PointsAdjustment, res.Entry.Type)
	assert.Equal(t, "correction", res.Entry.Description)
	assert.False(t, res.TierChanged)
}

func TestAdjustNegativeBeyondBalanceFails(t *testing.T) {
	cfg := testConfig()
	c := testCustomer(1200, 30, domain.TierSilver)

	_, err := Adjust(c, -50, "correction", cfg, time.Now())
	require.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, 30, c.AvailablePoints)
}

func TestAdjustPositivePromotesTier(t *testing.T) {
	cfg := testConfig()
	c := testCustomer(990, 990, domain.TierBronze)

	res, err := Adjust(c, 20, "", cfg, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1010, c.TotalPoints)
	assert.Equal(t, 1010, c.AvailablePoints)
	assert.True(t, res.TierChanged)
	assert.Equal(t, domain.TierSilver, res.NewTier)
	assert.Equal(t, "Manual adjustment", res.Entry.Description)
}

func TestAdjustZeroDeltaRejected(t *testing.T) {
	cfg := testConfig()
	c := testCustomer(0, 0, domain.TierBronze)

	_, err := Adjust(c, 0, "", cfg, time.Now())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// The ledger-sum invariant: after any sequence of engine transitions
// the sum of produced entries equals the customer's available balance.
func TestLedgerSumMatchesAvailablePoints(t *testing.T) {
	cfg := testConfig()
	c := testCustomer(0, 0, domain.TierBronze)
	now := time.Now()

	var entries []*domain.PointTransaction

	earn, err := Earn(c, 250000, cfg, nil, now)
	require.NoError(t, err)
	entries = append(entries, earn.Entry)

	redeem, err := Redeem(c, 100, cfg, nil, now)
	require.NoError(t, err)
	entries = append(entries, redeem.Entry)

	adj, err := Adjust(c, -20, "correction", cfg, now)
	require.NoError(t, err)
	entries = append(entries, adj.Entry)

	sum := 0
	for _, e := range entries {
		require.NotNil(t, e)
		sum += e.Points
	}
	assert.Equal(t, c.AvailablePoints, sum)
	assert.Equal(t, ResolveTier(c.TotalPoints, cfg.TierThresholds), c.Tier)
	assert.GreaterOrEqual(t, c.AvailablePoints, 0)
}
