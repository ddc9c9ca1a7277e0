// backend-go/internal/store/store.go
package store

import (
	"context"
	"fmt"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"golang.org/x/sync/errgroup"
)

// InventoryStore is the boundary to the inventory data store. The engine only
// reads bulk collections from it, plus a single write: patching the safety
// stock field of one balance.
type InventoryStore interface {
	Balances(ctx context.Context) ([]domain.InventoryBalance, error)
	Transactions(ctx context.Context) ([]domain.InventoryTransaction, error)
	Products(ctx context.Context) ([]domain.Product, error)
	Warehouses(ctx context.Context) ([]domain.Warehouse, error)
	PurchaseOrderItems(ctx context.Context) ([]domain.PurchaseOrderItem, error)
	Suppliers(ctx context.Context) ([]domain.Supplier, error)

	// UpdateSafetyStock patches the safety stock of the (warehouse, product)
	// balance and returns the updated record.
	UpdateSafetyStock(ctx context.Context, warehouseID, productID string, value float64) (*domain.InventoryBalance, error)
}

// Snapshot is the materialized dataset every engine run computes over. All
// analytics are pure functions of one snapshot; nothing is carried between
// runs.
type Snapshot struct {
	Balances           []domain.InventoryBalance
	Transactions       []domain.InventoryTransaction
	Products           []domain.Product
	Warehouses         []domain.Warehouse
	PurchaseOrderItems []domain.PurchaseOrderItem
	Suppliers          []domain.Supplier
}

// LoadSnapshot fans out the bulk reads concurrently and fans in before any
// computation starts. A single failed read fails the whole load; partial
// snapshots are never returned.
func LoadSnapshot(ctx context.Context, s InventoryStore) (*Snapshot, error) {
	snap := &Snapshot{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if snap.Balances, err = s.Balances(ctx); err != nil {
			return fmt.Errorf("load balances: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if snap.Transactions, err = s.Transactions(ctx); err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if snap.Products, err = s.Products(ctx); err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if snap.Warehouses, err = s.Warehouses(ctx); err != nil {
			return fmt.Errorf("load warehouses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if snap.PurchaseOrderItems, err = s.PurchaseOrderItems(ctx); err != nil {
			return fmt.Errorf("load purchase order items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if snap.Suppliers, err = s.Suppliers(ctx); err != nil {
			return fmt.Errorf("load suppliers: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snap, nil
}

// LatestUnitCosts indexes the most recent purchase order item cost per
// product. Products without any purchase history get no entry; callers treat
// missing as 0.
func (s *Snapshot) LatestUnitCosts() map[string]float64 {
	latest := make(map[string]domain.PurchaseOrderItem)
	for _, item := range s.PurchaseOrderItems {
		if cur, ok := latest[item.ProductID]; !ok || item.CreatedAt.After(cur.CreatedAt) {
			latest[item.ProductID] = item
		}
	}

	costs := make(map[string]float64, len(latest))
	for id, item := range latest {
		costs[id] = item.UnitCost
	}
	return costs
}

// ProductIndex maps product IDs to catalog entries.
func (s *Snapshot) ProductIndex() map[string]domain.Product {
	idx := make(map[string]domain.Product, len(s.Products))
	for _, p := range s.Products {
		idx[p.ProductID] = p
	}
	return idx
}

// BalanceIndex maps (warehouse, product) keys to balances.
func (s *Snapshot) BalanceIndex() map[BalanceKey]domain.InventoryBalance {
	idx := make(map[BalanceKey]domain.InventoryBalance, len(s.Balances))
	for _, b := range s.Balances {
		idx[BalanceKey{WarehouseID: b.WarehouseID, ProductID: b.ProductID}] = b
	}
	return idx
}

// BalanceKey identifies one inventory balance.
type BalanceKey struct {
	WarehouseID string
	ProductID   string
}
