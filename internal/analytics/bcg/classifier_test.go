package bcg

import (
	"fmt"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classifyNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func defaultOpts() Options {
	return Options{WindowDays: 30, Now: classifyNow}
}

func product(id string, category string) domain.Product {
	return domain.Product{ProductID: id, SKU: "SKU-" + id, Name: "Product " + id, Category: category, Active: true}
}

func issueTrx(productID, warehouseID string, qty float64, daysAgo int) domain.InventoryTransaction {
	return domain.InventoryTransaction{
		TrxID:       fmt.Sprintf("%s-%s-%d", productID, warehouseID, daysAgo),
		Date:        classifyNow.AddDate(0, 0, -daysAgo),
		WarehouseID: warehouseID,
		ProductID:   productID,
		Type:        domain.TrxTypeIssue,
		Qty:         qty,
		SignedQty:   -qty,
	}
}

// fourQuadrantSnapshot sets up one product per quadrant. All unit costs are 1
// so revenue equals issued quantity.
func fourQuadrantSnapshot() *store.Snapshot {
	snap := &store.Snapshot{
		Products: []domain.Product{
			product("P1", domain.CategoryFinished),   // high turnover, high revenue
			product("P2", domain.CategoryFinished),   // low turnover, high revenue
			product("P3", domain.CategoryComponent),  // high turnover, low revenue
			product("P4", domain.CategoryConsumable), // low turnover, low revenue
		},
		Balances: []domain.InventoryBalance{
			{WarehouseID: "WH1", ProductID: "P1", QtyOnHand: 10},
			{WarehouseID: "WH1", ProductID: "P2", QtyOnHand: 100},
			{WarehouseID: "WH1", ProductID: "P3", QtyOnHand: 5},
			{WarehouseID: "WH1", ProductID: "P4", QtyOnHand: 50},
		},
		Transactions: []domain.InventoryTransaction{
			issueTrx("P1", "WH1", 80, 5),
			issueTrx("P2", "WH1", 90, 5),
			issueTrx("P3", "WH1", 20, 5),
			issueTrx("P4", "WH1", 10, 5),
		},
	}
	for _, id := range []string{"P1", "P2", "P3", "P4"} {
		snap.PurchaseOrderItems = append(snap.PurchaseOrderItems, domain.PurchaseOrderItem{
			ProductID: id, UnitCost: 1, CreatedAt: classifyNow.AddDate(0, 0, -10),
		})
	}
	return snap
}

func TestClassifyQuadrantPartition(t *testing.T) {
	result := Classify(fourQuadrantSnapshot(), defaultOpts())

	// Turnovers: P1=8, P2=0.9, P3=4, P4=0.2 -> median (index 2 of sorted) = 4
	// Revenues: P1=80, P2=90, P3=20, P4=10 -> median = 80
	assert.Equal(t, 4.0, result.MedianTurnover)
	assert.Equal(t, 80.0, result.MedianRevenue)

	byID := make(map[string]string)
	for _, p := range result.Products {
		byID[p.ProductID] = p.Quadrant
	}
	assert.Equal(t, domain.QuadrantStar, byID["P1"])
	assert.Equal(t, domain.QuadrantCashCow, byID["P2"])
	assert.Equal(t, domain.QuadrantQuestionMark, byID["P3"])
	assert.Equal(t, domain.QuadrantDog, byID["P4"])

	assert.Equal(t, 4, result.EvaluatedCount)
	total := 0
	for _, n := range result.QuadrantCounts {
		total += n
	}
	assert.Equal(t, result.EvaluatedCount, total)
}

func TestClassifyTopStarsAndBottomDogs(t *testing.T) {
	result := Classify(fourQuadrantSnapshot(), defaultOpts())

	require.Len(t, result.TopStars, 1)
	assert.Equal(t, "P1", result.TopStars[0].ProductID)
	require.Len(t, result.BottomDogs, 1)
	assert.Equal(t, "P4", result.BottomDogs[0].ProductID)
}

func TestClassifySkipsInactiveProducts(t *testing.T) {
	snap := fourQuadrantSnapshot()
	snap.Products[0].Active = false

	result := Classify(snap, defaultOpts())

	assert.Equal(t, 3, result.EvaluatedCount)
	for _, p := range result.Products {
		assert.NotEqual(t, "P1", p.ProductID)
	}
}

func TestClassifySkipsZeroOnHand(t *testing.T) {
	snap := fourQuadrantSnapshot()
	snap.Balances[0].QtyOnHand = 0

	result := Classify(snap, defaultOpts())

	assert.Equal(t, 3, result.EvaluatedCount)
}

func TestClassifyCategoryFilter(t *testing.T) {
	opts := defaultOpts()
	opts.Category = domain.CategoryFinished

	result := Classify(fourQuadrantSnapshot(), opts)

	assert.Equal(t, 2, result.EvaluatedCount)
	for _, p := range result.Products {
		assert.Equal(t, domain.CategoryFinished, p.Category)
	}
}

func TestClassifyWarehouseFilter(t *testing.T) {
	snap := fourQuadrantSnapshot()
	// A second warehouse with different activity for P1.
	snap.Balances = append(snap.Balances, domain.InventoryBalance{
		WarehouseID: "WH2", ProductID: "P1", QtyOnHand: 30,
	})
	snap.Transactions = append(snap.Transactions, issueTrx("P1", "WH2", 300, 4))

	opts := defaultOpts()
	opts.WarehouseID = "WH1"
	result := Classify(snap, opts)

	// WH2 activity must not leak into the WH1 view.
	for _, p := range result.Products {
		if p.ProductID == "P1" {
			assert.Equal(t, 80.0, p.IssuedQty)
			assert.Equal(t, 10.0, p.AvgOnHand)
		}
	}
}

func TestClassifyEmptySnapshot(t *testing.T) {
	result := Classify(&store.Snapshot{}, defaultOpts())

	assert.Equal(t, 0, result.EvaluatedCount)
	assert.Empty(t, result.Products)
	assert.NotNil(t, result.TopStars)
	assert.NotNil(t, result.BottomDogs)
}

func TestMiddleIndexMedian(t *testing.T) {
	// Even length takes the upper middle element, not an average.
	assert.Equal(t, 3.0, middleIndexMedian([]float64{1, 2, 3, 4}))
	assert.Equal(t, 2.0, middleIndexMedian([]float64{3, 1, 2}))
	assert.Equal(t, 7.0, middleIndexMedian([]float64{7}))
}
