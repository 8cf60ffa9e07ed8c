package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamedAligholizade/ajiro/internal/domain"
	"github.com/hamedAligholizade/ajiro/internal/loyalty"
)

func newLoyaltyService(g *fakeGateway) *LoyaltyService {
	return &LoyaltyService{Gateway: g}
}

func TestGetConfigCreatesDefault(t *testing.T) {
	g := newFakeGateway()
	shopID := uuid.New()
	svc := newLoyaltyService(g)

	cfg, err := svc.GetConfig(context.Background(), shopID)
	require.NoError(t, err)

	assert.True(t, cfg.IsEnabled)
	assert.Equal(t, 1, cfg.PointsPerUnit)
	assert.Equal(t, 100, cfg.RedemptionValue)
	assert.Equal(t, 1000, cfg.TierThresholds[domain.TierSilver])

	// Persisted, not just returned.
	_, ok := g.configs[shopID]
	assert.True(t, ok)
}

func TestUpdateConfigMergesFields(t *testing.T) {
	g := newFakeGateway()
	shopID := uuid.New()
	svc := newLoyaltyService(g)

	ppu := 2
	expiry := 180
	cfg, err := svc.UpdateConfig(context.Background(), shopID, UpdateConfigInput{
		PointsPerUnit:    &ppu,
		PointsExpiryDays: &expiry,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.PointsPerUnit)
	require.NotNil(t, cfg.PointsExpiryDays)
	assert.Equal(t, 180, *cfg.PointsExpiryDays)
	// Untouched fields keep their defaults.
	assert.Equal(t, 100, cfg.RedemptionValue)

	cfg, err = svc.UpdateConfig(context.Background(), shopID, UpdateConfigInput{ClearExpiry: true})
	require.NoError(t, err)
	assert.Nil(t, cfg.PointsExpiryDays)
}

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	g := newFakeGateway()
	shopID := uuid.New()
	svc := newLoyaltyService(g)

	_, err := svc.UpdateConfig(context.Background(), shopID, UpdateConfigInput{
		TierMultipliers: map[domain.Tier]decimal.Decimal{
			domain.TierBronze:   decimal.RequireFromString("0.5"),
			domain.TierSilver:   decimal.RequireFromString("1.1"),
			domain.TierGold:     decimal.RequireFromString("1.2"),
			domain.TierPlatinum: decimal.RequireFromString("1.5"),
		},
	})
	assert.ErrorIs(t, err, loyalty.ErrInvalidArgument)

	_, err = svc.UpdateConfig(context.Background(), shopID, UpdateConfigInput{
		TierThresholds: map[domain.Tier]int{
			domain.TierBronze: 0,
			domain.TierSilver: 5000,
			domain.TierGold:   1000,
		},
	})
	assert.ErrorIs(t, err, loyalty.ErrInvalidArgument)
}

func TestUpdateConfigInvalidRollsBack(t *testing.T) {
	// The merge runs in one transaction: a rejected update must not
	// leave a half-created config behind on a fresh shop.
	g := newFakeGateway()
	shopID := uuid.New()
	svc := newLoyaltyService(g)

	bad := -1
	_, err := svc.UpdateConfig(context.Background(), shopID, UpdateConfigInput{
		RedemptionValue: &bad,
	})
	require.ErrorIs(t, err, loyalty.ErrInvalidArgument)

	_, ok := g.configs[shopID]
	assert.False(t, ok)
}

func TestAdjustPoints(t *testing.T) {
	g := newFakeGateway()
	shopID := seedShop(t, g)
	customerID := seedCustomer(g, shopID, 100, 100, domain.TierBronze)
	svc := newLoyaltyService(g)

	res, err := svc.AdjustPoints(context.Background(), shopID, customerID, -50, "damaged goods return")
	require.NoError(t, err)
	assert.Equal(t, 50, res.NewBalance)
	assert.Equal(t, 50, g.customers[customerID].AvailablePoints)
	// A negative correction never takes lifetime points away.
	assert.Equal(t, 100, g.customers[customerID].TotalPoints)

	require.Len(t, g.entries, 1)
	assert.Equal(t, domain.PointsAdjustment, g.entries[0].Type)
	assert.Equal(t, -50, g.entries[0].Points)
	assert.Equal(t, "damaged goods return", g.entries[0].Description)
}

func TestAdjustPointsWithoutConfigRow(t *testing.T) {
	// Manual corrections work for shops that never touched their
	// loyalty settings.
	g := newFakeGateway()
	shopID := uuid.New()
	customerID := seedCustomer(g, shopID, 100, 100, domain.TierBronze)
	svc := newLoyaltyService(g)

	res, err := svc.AdjustPoints(context.Background(), shopID, customerID, 25, "")
	require.NoError(t, err)
	assert.Equal(t, 125, res.NewBalance)

	_, ok := g.configs[shopID]
	assert.True(t, ok)
}

func TestAdjustPointsPositiveCanUpgradeTier(t *testing.T) {
	g := newFakeGateway()
	shopID := seedShop(t, g)
	customerID := seedCustomer(g, shopID, 950, 950, domain.TierBronze)
	svc := newLoyaltyService(g)

	res, err := svc.AdjustPoints(context.Background(), shopID, customerID, 100, "")
	require.NoError(t, err)
	assert.True(t, res.TierChanged)
	assert.Equal(t, domain.TierSilver, res.NewTier)
	assert.Equal(t, 1050, g.customers[customerID].TotalPoints)
	assert.Equal(t, "Manual adjustment", g.entries[0].Description)
}

func TestAdjustPointsUnderflow(t *testing.T) {
	g := newFakeGateway()
	shopID := seedShop(t, g)
	customerID := seedCustomer(g, shopID, 100, 100, domain.TierBronze)
	svc := newLoyaltyService(g)

	_, err := svc.AdjustPoints(context.Background(), shopID, customerID, -150, "")
	require.ErrorIs(t, err, loyalty.ErrInsufficientPoints)
	assert.Equal(t, 100, g.customers[customerID].AvailablePoints)
	assert.Empty(t, g.entries)
}

func TestPreviewPoints(t *testing.T) {
	g := newFakeGateway()
	shopID := seedShop(t, g)
	customerID := seedCustomer(g, shopID, 6000, 6000, domain.TierGold)
	svc := newLoyaltyService(g)

	res, err := svc.PreviewPoints(context.Background(), shopID, &customerID, 10000)
	require.NoError(t, err)
	// 10 base points, gold multiplier 1.2 -> floor(12).
	assert.Equal(t, 10, res.BasePoints)
	assert.Equal(t, 12, res.Points)
	assert.Equal(t, domain.TierGold, res.Tier)

	// Anonymous sales quote zero.
	res, err = svc.PreviewPoints(context.Background(), shopID, nil, 10000)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Points)

	_, err = svc.PreviewPoints(context.Background(), shopID, &customerID, -1)
	assert.ErrorIs(t, err, loyalty.ErrInvalidArgument)
}

func TestCustomerLoyaltyDetail(t *testing.T) {
	g := newFakeGateway()
	shopID := seedShop(t, g)
	customerID := seedCustomer(g, shopID, 500, 300, domain.TierBronze)
	g.entries = append(g.entries,
		domain.PointTransaction{ID: uuid.New(), CustomerID: customerID, ShopID: shopID, Points: 500, Type: domain.PointsEarned},
		domain.PointTransaction{ID: uuid.New(), CustomerID: customerID, ShopID: shopID, Points: -200, Type: domain.PointsRedeemed},
		domain.PointTransaction{ID: uuid.New(), CustomerID: uuid.New(), ShopID: shopID, Points: 50, Type: domain.PointsEarned},
	)
	svc := newLoyaltyService(g)

	detail, err := svc.CustomerLoyaltyDetail(context.Background(), shopID, customerID)
	require.NoError(t, err)
	assert.Equal(t, 300, detail.Customer.AvailablePoints)
	require.Len(t, detail.Entries, 2)
	// Newest first.
	assert.Equal(t, -200, detail.Entries[0].Points)

	_, err = svc.CustomerLoyaltyDetail(context.Background(), shopID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
