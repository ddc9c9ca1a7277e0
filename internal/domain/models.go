// backend-go/internal/domain/models.go
package domain

import "time"

// Transaction types as stored in the ledger.
const (
	TrxTypeIssue   = "ISSUE"
	TrxTypeReceipt = "RECEIPT"
)

// Product categories (fixed enumeration).
const (
	CategoryRawMaterial = "RAW_MATERIAL"
	CategoryComponent   = "COMPONENT"
	CategoryFinished    = "FINISHED_GOODS"
	CategoryConsumable  = "CONSUMABLE"
	CategorySparePart   = "SPARE_PART"
)

// InventoryBalance is the on-hand position for a (warehouse, product) pair.
// Exactly one balance exists per pair. SafetyStock is the critical floor the
// engine recalibrates; ReorderPoint is the replenishment trigger and is
// expected to sit at or above SafetyStock.
type InventoryBalance struct {
	WarehouseID  string    `json:"warehouse_id" db:"warehouse_id"`
	ProductID    string    `json:"product_id" db:"product_id"`
	QtyOnHand    float64   `json:"qty_on_hand" db:"qty_on_hand"`
	QtyReserved  float64   `json:"qty_reserved" db:"qty_reserved"`
	SafetyStock  float64   `json:"safety_stock" db:"safety_stock"`
	ReorderPoint float64   `json:"reorder_point" db:"reorder_point"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryTransaction is an immutable ledger entry. Qty is always positive;
// SignedQty carries the effect on the balance (negative for issues).
type InventoryTransaction struct {
	TrxID       string    `json:"trx_id" db:"trx_id"`
	Date        time.Time `json:"date" db:"date"`
	WarehouseID string    `json:"warehouse_id" db:"warehouse_id"`
	ProductID   string    `json:"product_id" db:"product_id"`
	Type        string    `json:"type" db:"type"`
	Qty         float64   `json:"qty" db:"qty"`
	SignedQty   float64   `json:"signed_qty" db:"signed_qty"`
	RefType     string    `json:"ref_type" db:"ref_type"`
	RefID       string    `json:"ref_id" db:"ref_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Product is a catalog entry.
type Product struct {
	ProductID string `json:"product_id" db:"product_id"`
	SKU       string `json:"sku" db:"sku"`
	Name      string `json:"name" db:"name"`
	Category  string `json:"category" db:"category"`
	Active    bool   `json:"active" db:"active"`
}

// Warehouse is a stocking location.
type Warehouse struct {
	WarehouseID string `json:"warehouse_id" db:"warehouse_id"`
	Name        string `json:"name" db:"name"`
	Location    string `json:"location" db:"location"`
}

// Supplier is a vendor master record.
type Supplier struct {
	SupplierID string `json:"supplier_id" db:"supplier_id"`
	Name       string `json:"name" db:"name"`
	Email      string `json:"email" db:"email"`
}

// PurchaseOrderItem is a line on a purchase order. The latest unit cost for a
// product is the UnitCost of its most recently created item.
type PurchaseOrderItem struct {
	ProductID string    `json:"product_id" db:"product_id"`
	UnitCost  float64   `json:"unit_cost" db:"unit_cost"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SafetyStockPolicy is the recalibration configuration. It is not persisted;
// callers override individual fields, everything else comes from defaults.
type SafetyStockPolicy struct {
	ServiceLevel     float64 `json:"service_level"`
	LeadTimeDays     int     `json:"lead_time_days"`
	MaxChangePercent float64 `json:"max_change_percent"`
	RoundToPack      int     `json:"round_to_pack"`
	MinSafetyStock   int     `json:"min_safety_stock"`
}
