package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	balances     []domain.InventoryBalance
	transactions []domain.InventoryTransaction
	products     []domain.Product
	warehouses   []domain.Warehouse
	poItems      []domain.PurchaseOrderItem
	suppliers    []domain.Supplier

	failTransactions bool
}

func (f *fakeStore) Balances(ctx context.Context) ([]domain.InventoryBalance, error) {
	return f.balances, nil
}

func (f *fakeStore) Transactions(ctx context.Context) ([]domain.InventoryTransaction, error) {
	if f.failTransactions {
		return nil, errors.New("connection reset")
	}
	return f.transactions, nil
}

func (f *fakeStore) Products(ctx context.Context) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeStore) Warehouses(ctx context.Context) ([]domain.Warehouse, error) {
	return f.warehouses, nil
}

func (f *fakeStore) PurchaseOrderItems(ctx context.Context) ([]domain.PurchaseOrderItem, error) {
	return f.poItems, nil
}

func (f *fakeStore) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	return f.suppliers, nil
}

func (f *fakeStore) UpdateSafetyStock(ctx context.Context, warehouseID, productID string, value float64) (*domain.InventoryBalance, error) {
	return nil, errors.New("not implemented")
}

func TestLoadSnapshotCollectsAllReads(t *testing.T) {
	fs := &fakeStore{
		balances:   []domain.InventoryBalance{{WarehouseID: "WH1", ProductID: "P1"}},
		products:   []domain.Product{{ProductID: "P1"}},
		warehouses: []domain.Warehouse{{WarehouseID: "WH1"}},
		suppliers:  []domain.Supplier{{SupplierID: "S1"}},
	}

	snap, err := LoadSnapshot(context.Background(), fs)
	require.NoError(t, err)

	assert.Len(t, snap.Balances, 1)
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Warehouses, 1)
	assert.Len(t, snap.Suppliers, 1)
	assert.Empty(t, snap.Transactions)
}

func TestLoadSnapshotFailsWhole(t *testing.T) {
	fs := &fakeStore{
		balances:         []domain.InventoryBalance{{WarehouseID: "WH1", ProductID: "P1"}},
		failTransactions: true,
	}

	snap, err := LoadSnapshot(context.Background(), fs)

	require.Error(t, err)
	assert.Nil(t, snap)
	assert.Contains(t, err.Error(), "load transactions")
}

func TestLatestUnitCosts(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	snap := &Snapshot{
		PurchaseOrderItems: []domain.PurchaseOrderItem{
			{ProductID: "P1", UnitCost: 5, CreatedAt: now.AddDate(0, 0, -30)},
			{ProductID: "P1", UnitCost: 8, CreatedAt: now.AddDate(0, 0, -1)},
			{ProductID: "P2", UnitCost: 3, CreatedAt: now.AddDate(0, 0, -10)},
		},
	}

	costs := snap.LatestUnitCosts()

	assert.Equal(t, 8.0, costs["P1"])
	assert.Equal(t, 3.0, costs["P2"])
	_, ok := costs["P3"]
	assert.False(t, ok)
}

func TestBalanceIndex(t *testing.T) {
	snap := &Snapshot{
		Balances: []domain.InventoryBalance{
			{WarehouseID: "WH1", ProductID: "P1", QtyOnHand: 4},
			{WarehouseID: "WH2", ProductID: "P1", QtyOnHand: 9},
		},
	}

	idx := snap.BalanceIndex()

	assert.Equal(t, 4.0, idx[BalanceKey{WarehouseID: "WH1", ProductID: "P1"}].QtyOnHand)
	assert.Equal(t, 9.0, idx[BalanceKey{WarehouseID: "WH2", ProductID: "P1"}].QtyOnHand)
}
