package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Enumerations
const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"

	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
	TransactionRefunded  TransactionStatus = "refunded"

	PointsEarned     PointEntryType = "earned"
	PointsRedeemed   PointEntryType = "redeemed"
	PointsExpired    PointEntryType = "expired"
	PointsAdjustment PointEntryType = "adjustment"
)

type Tier string
type TransactionStatus string
type PointEntryType string

type Money struct {
	Amount   int64
	Currency string
}

// LoyaltyConfig holds a shop's loyalty program settings. One row per shop.
type LoyaltyConfig struct {
	ID               uuid.UUID
	ShopID           uuid.UUID
	IsEnabled        bool
	PointsPerUnit    int
	RedemptionValue  int
	PointsExpiryDays *int
	TierThresholds   map[Tier]int
	TierMultipliers  map[Tier]decimal.Decimal
	SpecialRules     map[string]int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Customer struct {
	ID              uuid.UUID
	ShopID          uuid.UUID
	FirstName       string
	LastName        string
	MobileNumber    string
	Email           string
	BirthDate       *time.Time
	TotalPoints     int
	AvailablePoints int
	Tier            Tier
	TotalSpent      Money
	Notes           string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Product struct {
	ID            uuid.UUID
	ShopID        uuid.UUID
	Name          string
	Category      string
	Price         Money
	StockQuantity int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// PointTransaction is an append-only ledger entry. Positive points are
// earned, negative points are redeemed or expired.
type PointTransaction struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	ShopID        uuid.UUID
	TransactionID *int64
	Points        int
	Type          PointEntryType
	Description   string
	ExpiryDate    *time.Time
	IsExpired     bool
	CreatedAt     time.Time
}

type Transaction struct {
	ID              int64
	ShopID          uuid.UUID
	CustomerID      *uuid.UUID
	TotalAmount     Money
	PointsEarned    int
	PointsRedeemed  int
	Status          TransactionStatus
	Notes           string
	TransactionDate time.Time
	Items           []TransactionItem
	CreatedAt       time.Time
}

type TransactionItem struct {
	ID            int64
	TransactionID int64
	ProductID     uuid.UUID
	Name          string
	Quantity      int
	PriceAtSale   Money
	Subtotal      Money
	CreatedAt     time.Time
}
