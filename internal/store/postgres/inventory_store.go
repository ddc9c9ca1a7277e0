package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
)

// InventoryStore reads the inventory tables directly. It implements
// store.InventoryStore for deployments where the ledger database is reachable.
type InventoryStore struct {
	db *DB
}

func NewInventoryStore(db *DB) *InventoryStore {
	return &InventoryStore{db: db}
}

func (s *InventoryStore) Balances(ctx context.Context) ([]domain.InventoryBalance, error) {
	release, err := s.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var balances []domain.InventoryBalance
	query := `
		SELECT warehouse_id, product_id, qty_on_hand, qty_reserved,
		       safety_stock, reorder_point, updated_at
		FROM inventory_balances`
	if err := s.db.SelectContext(ctx, &balances, query); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}
	return balances, nil
}

func (s *InventoryStore) Transactions(ctx context.Context) ([]domain.InventoryTransaction, error) {
	release, err := s.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var trxs []domain.InventoryTransaction
	query := `
		SELECT trx_id, date, warehouse_id, product_id, type, qty, signed_qty,
		       COALESCE(ref_type, '') AS ref_type, COALESCE(ref_id, '') AS ref_id,
		       created_at
		FROM inventory_transactions
		ORDER BY date`
	if err := s.db.SelectContext(ctx, &trxs, query); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return trxs, nil
}

func (s *InventoryStore) Products(ctx context.Context) ([]domain.Product, error) {
	release, err := s.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var products []domain.Product
	query := `SELECT product_id, sku, name, category, active FROM products`
	if err := s.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}

func (s *InventoryStore) Warehouses(ctx context.Context) ([]domain.Warehouse, error) {
	release, err := s.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var warehouses []domain.Warehouse
	query := `SELECT warehouse_id, name, COALESCE(location, '') AS location FROM warehouses`
	if err := s.db.SelectContext(ctx, &warehouses, query); err != nil {
		return nil, fmt.Errorf("select warehouses: %w", err)
	}
	return warehouses, nil
}

func (s *InventoryStore) PurchaseOrderItems(ctx context.Context) ([]domain.PurchaseOrderItem, error) {
	release, err := s.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var items []domain.PurchaseOrderItem
	query := `SELECT product_id, unit_cost, created_at FROM purchase_order_items`
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("select purchase order items: %w", err)
	}
	return items, nil
}

func (s *InventoryStore) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	release, err := s.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var suppliers []domain.Supplier
	query := `SELECT supplier_id, name, COALESCE(email, '') AS email FROM suppliers`
	if err := s.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, fmt.Errorf("select suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *InventoryStore) UpdateSafetyStock(ctx context.Context, warehouseID, productID string, value float64) (*domain.InventoryBalance, error) {
	var updated domain.InventoryBalance
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE inventory_balances
			SET safety_stock = $1, updated_at = NOW()
			WHERE warehouse_id = $2 AND product_id = $3
			RETURNING warehouse_id, product_id, qty_on_hand, qty_reserved,
			          safety_stock, reorder_point, updated_at`,
			value, warehouseID, productID)
		return row.Scan(&updated.WarehouseID, &updated.ProductID, &updated.QtyOnHand,
			&updated.QtyReserved, &updated.SafetyStock, &updated.ReorderPoint, &updated.UpdatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("update safety stock for %s/%s: %w", warehouseID, productID, err)
	}
	return &updated, nil
}
