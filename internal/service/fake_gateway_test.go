package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/hamedAligholizade/ajiro/internal/domain"
)

// fakeGateway is an in-memory Store with snapshot-based transactions:
// InTx copies all state up front and restores it when fn fails, which
// mirrors the rollback the real gateway gets from Postgres.
type fakeGateway struct {
	configs      map[uuid.UUID]domain.LoyaltyConfig
	customers    map[uuid.UUID]domain.Customer
	products     map[uuid.UUID]domain.Product
	transactions map[int64]domain.Transaction
	items        []domain.TransactionItem
	entries      []domain.PointTransaction
	nextTxID     int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		configs:      make(map[uuid.UUID]domain.LoyaltyConfig),
		customers:    make(map[uuid.UUID]domain.Customer),
		products:     make(map[uuid.UUID]domain.Product),
		transactions: make(map[int64]domain.Transaction),
		nextTxID:     1,
	}
}

func (g *fakeGateway) snapshot() *fakeGateway {
	c := newFakeGateway()
	for k, v := range g.configs {
		c.configs[k] = v
	}
	for k, v := range g.customers {
		c.customers[k] = v
	}
	for k, v := range g.products {
		c.products[k] = v
	}
	for k, v := range g.transactions {
		c.transactions[k] = v
	}
	c.items = append([]domain.TransactionItem(nil), g.items...)
	c.entries = append([]domain.PointTransaction(nil), g.entries...)
	c.nextTxID = g.nextTxID
	return c
}

func (g *fakeGateway) restore(snap *fakeGateway) {
	g.configs = snap.configs
	g.customers = snap.customers
	g.products = snap.products
	g.transactions = snap.transactions
	g.items = snap.items
	g.entries = snap.entries
	g.nextTxID = snap.nextTxID
}

func (g *fakeGateway) InTx(ctx context.Context, fn func(Store) error) error {
	snap := g.snapshot()
	if err := fn(g); err != nil {
		g.restore(snap)
		return err
	}
	return nil
}

func (g *fakeGateway) LoyaltyConfig(ctx context.Context, shopID uuid.UUID) (*domain.LoyaltyConfig, error) {
	cfg, ok := g.configs[shopID]
	if !ok {
		return nil, ErrNotFound
	}
	return &cfg, nil
}

func (g *fakeGateway) SaveLoyaltyConfig(ctx context.Context, cfg *domain.LoyaltyConfig) error {
	g.configs[cfg.ShopID] = *cfg
	return nil
}

func (g *fakeGateway) Customer(ctx context.Context, shopID, customerID uuid.UUID) (*domain.Customer, error) {
	c, ok := g.customers[customerID]
	if !ok || c.ShopID != shopID || !c.IsActive {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (g *fakeGateway) CustomerForUpdate(ctx context.Context, shopID, customerID uuid.UUID) (*domain.Customer, error) {
	return g.Customer(ctx, shopID, customerID)
}

func (g *fakeGateway) SaveCustomerBalances(ctx context.Context, c *domain.Customer) error {
	cur, ok := g.customers[c.ID]
	if !ok {
		return ErrNotFound
	}
	cur.TotalPoints = c.TotalPoints
	cur.AvailablePoints = c.AvailablePoints
	cur.Tier = c.Tier
	cur.TotalSpent = c.TotalSpent
	g.customers[c.ID] = cur
	return nil
}

func (g *fakeGateway) ProductForUpdate(ctx context.Context, shopID, productID uuid.UUID) (*domain.Product, error) {
	p, ok := g.products[productID]
	if !ok || p.ShopID != shopID || p.DeletedAt != nil {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (g *fakeGateway) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	p, ok := g.products[productID]
	if !ok {
		return ErrNotFound
	}
	p.StockQuantity -= quantity
	g.products[productID] = p
	return nil
}

func (g *fakeGateway) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	t.ID = g.nextTxID
	g.nextTxID++
	g.transactions[t.ID] = *t
	return nil
}

func (g *fakeGateway) CreateTransactionItems(ctx context.Context, items []domain.TransactionItem) error {
	g.items = append(g.items, items...)
	return nil
}

func (g *fakeGateway) SetTransactionPoints(ctx context.Context, transactionID int64, earned, redeemed int) error {
	t, ok := g.transactions[transactionID]
	if !ok {
		return ErrNotFound
	}
	t.PointsEarned = earned
	t.PointsRedeemed = redeemed
	g.transactions[transactionID] = t
	return nil
}

func (g *fakeGateway) AppendPointEntry(ctx context.Context, entry *domain.PointTransaction) error {
	g.entries = append(g.entries, *entry)
	return nil
}

func (g *fakeGateway) PointEntries(ctx context.Context, shopID, customerID uuid.UUID, limit int) ([]domain.PointTransaction, error) {
	var out []domain.PointTransaction
	for i := len(g.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := g.entries[i]
		if e.ShopID == shopID && e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// customerEntrySum is the ledger balance check tests assert against
// AvailablePoints.
func (g *fakeGateway) customerEntrySum(customerID uuid.UUID) int {
	sum := 0
	for _, e := range g.entries {
		if e.CustomerID == customerID && !e.IsExpired {
			sum += e.Points
		}
	}
	return sum
}

// fakeNotifier delivers on a channel because the service sends from a
// goroutine after commit.
type fakeNotifier struct {
	sent chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(chan string, 8)}
}

func (n *fakeNotifier) Send(ctx context.Context, mobile, message string) error {
	n.sent <- mobile + ": " + message
	return nil
}
