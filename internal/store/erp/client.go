// backend-go/internal/store/erp/client.go
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
)

// Client talks to the remote ERP inventory API. It implements
// store.InventoryStore over HTTP; every collection endpoint returns a JSON
// array and numeric fields may arrive as strings.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type balanceDTO struct {
	WarehouseID  string    `json:"warehouse_id"`
	ProductID    string    `json:"product_id"`
	QtyOnHand    flexFloat `json:"qty_on_hand"`
	QtyReserved  flexFloat `json:"qty_reserved"`
	SafetyStock  flexFloat `json:"safety_stock"`
	ReorderPoint flexFloat `json:"reorder_point"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type transactionDTO struct {
	TrxID       string    `json:"trx_id"`
	Date        time.Time `json:"date"`
	WarehouseID string    `json:"warehouse_id"`
	ProductID   string    `json:"product_id"`
	Type        string    `json:"type"`
	Qty         flexFloat `json:"qty"`
	SignedQty   flexFloat `json:"signed_qty"`
	RefType     string    `json:"ref_type"`
	RefID       string    `json:"ref_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type poItemDTO struct {
	ProductID string    `json:"product_id"`
	UnitCost  flexFloat `json:"unit_cost"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Client) Balances(ctx context.Context) ([]domain.InventoryBalance, error) {
	var dtos []balanceDTO
	if err := c.getJSON(ctx, "/api/inventory/balances", &dtos); err != nil {
		return nil, err
	}

	balances := make([]domain.InventoryBalance, 0, len(dtos))
	for _, d := range dtos {
		balances = append(balances, domain.InventoryBalance{
			WarehouseID:  d.WarehouseID,
			ProductID:    d.ProductID,
			QtyOnHand:    d.QtyOnHand.Float64(),
			QtyReserved:  d.QtyReserved.Float64(),
			SafetyStock:  d.SafetyStock.Float64(),
			ReorderPoint: d.ReorderPoint.Float64(),
			UpdatedAt:    d.UpdatedAt,
		})
	}
	return balances, nil
}

func (c *Client) Transactions(ctx context.Context) ([]domain.InventoryTransaction, error) {
	var dtos []transactionDTO
	if err := c.getJSON(ctx, "/api/inventory/transactions", &dtos); err != nil {
		return nil, err
	}

	trxs := make([]domain.InventoryTransaction, 0, len(dtos))
	for _, d := range dtos {
		trxs = append(trxs, domain.InventoryTransaction{
			TrxID:       d.TrxID,
			Date:        d.Date,
			WarehouseID: d.WarehouseID,
			ProductID:   d.ProductID,
			Type:        d.Type,
			Qty:         d.Qty.Float64(),
			SignedQty:   d.SignedQty.Float64(),
			RefType:     d.RefType,
			RefID:       d.RefID,
			CreatedAt:   d.CreatedAt,
		})
	}
	return trxs, nil
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.getJSON(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Warehouses(ctx context.Context) ([]domain.Warehouse, error) {
	var warehouses []domain.Warehouse
	if err := c.getJSON(ctx, "/api/warehouses", &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (c *Client) PurchaseOrderItems(ctx context.Context) ([]domain.PurchaseOrderItem, error) {
	var dtos []poItemDTO
	if err := c.getJSON(ctx, "/api/purchase-orders/items", &dtos); err != nil {
		return nil, err
	}

	items := make([]domain.PurchaseOrderItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, domain.PurchaseOrderItem{
			ProductID: d.ProductID,
			UnitCost:  d.UnitCost.Float64(),
			CreatedAt: d.CreatedAt,
		})
	}
	return items, nil
}

func (c *Client) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	if err := c.getJSON(ctx, "/api/suppliers", &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (c *Client) UpdateSafetyStock(ctx context.Context, warehouseID, productID string, value float64) (*domain.InventoryBalance, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"safety_stock": value,
	})
	if err != nil {
		return nil, fmt.Errorf("encode safety stock patch: %w", err)
	}

	path := fmt.Sprintf("/api/inventory/balances/%s/%s", warehouseID, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("patch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("patch %s: unexpected status %d: %s", path, resp.StatusCode, body)
	}

	var dto balanceDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decode patched balance: %w", err)
	}

	return &domain.InventoryBalance{
		WarehouseID:  dto.WarehouseID,
		ProductID:    dto.ProductID,
		QtyOnHand:    dto.QtyOnHand.Float64(),
		QtyReserved:  dto.QtyReserved.Float64(),
		SafetyStock:  dto.SafetyStock.Float64(),
		ReorderPoint: dto.ReorderPoint.Float64(),
		UpdatedAt:    dto.UpdatedAt,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: unexpected status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
