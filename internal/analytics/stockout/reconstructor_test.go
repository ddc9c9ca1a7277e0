package stockout

import (
	"testing"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var replayNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func issue(productID, warehouseID string, qty float64, daysAgo int) domain.InventoryTransaction {
	return domain.InventoryTransaction{
		TrxID:       productID + warehouseID + time.Duration(daysAgo).String(),
		Date:        replayNow.AddDate(0, 0, -daysAgo),
		WarehouseID: warehouseID,
		ProductID:   productID,
		Type:        domain.TrxTypeIssue,
		Qty:         qty,
		SignedQty:   -qty,
	}
}

func receipt(productID, warehouseID string, qty float64, daysAgo int) domain.InventoryTransaction {
	return domain.InventoryTransaction{
		TrxID:       "r" + productID + warehouseID + time.Duration(daysAgo).String(),
		Date:        replayNow.AddDate(0, 0, -daysAgo),
		WarehouseID: warehouseID,
		ProductID:   productID,
		Type:        domain.TrxTypeReceipt,
		Qty:         qty,
		SignedQty:   qty,
	}
}

func TestReconstructSingleEpisode(t *testing.T) {
	// Current 5 on hand. Undoing a 10-unit receipt 3 days ago reveals a -5
	// position, i.e. a stockout that the receipt resolved.
	snap := &store.Snapshot{
		Balances: []domain.InventoryBalance{
			{WarehouseID: "WH1", ProductID: "P1", QtyOnHand: 5, SafetyStock: 2},
		},
		Transactions: []domain.InventoryTransaction{
			receipt("P1", "WH1", 10, 3),
			issue("P1", "WH1", 7, 8),
		},
	}

	items := Reconstruct(snap, 90, replayNow)

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, 1, item.Frequency)
	require.NotNil(t, item.LastStockout)
	assert.Equal(t, replayNow.AddDate(0, 0, -3), *item.LastStockout)
	// Position was -5 during [8d ago, 3d ago): five stockout days.
	assert.Equal(t, 5, item.StockoutDays)
	assert.Equal(t, 5.0, item.CurrentQty)
	assert.Equal(t, 2.0, item.SafetyStock)
}

func TestReconstructNoStockoutDropped(t *testing.T) {
	snap := &store.Snapshot{
		Balances: []domain.InventoryBalance{
			{WarehouseID: "WH1", ProductID: "P1", QtyOnHand: 100},
		},
		Transactions: []domain.InventoryTransaction{
			issue("P1", "WH1", 10, 2),
			receipt("P1", "WH1", 20, 5),
		},
	}

	assert.Empty(t, Reconstruct(snap, 90, replayNow))
}

func TestReconstructCurrentlyStockedOut(t *testing.T) {
	// Zero on hand now. The replay finds an earlier episode resolved by the
	// receipt 10 days ago, and the unresolved current outage still accrues
	// stockout days.
	snap := &store.Snapshot{
		Balances: []domain.InventoryBalance{
			{WarehouseID: "WH1", ProductID: "P1", QtyOnHand: 0},
		},
		Transactions: []domain.InventoryTransaction{
			issue("P1", "WH1", 8, 4),
			receipt("P1", "WH1", 8, 10),
			issue("P1", "WH1", 5, 12),
		},
	}

	items := Reconstruct(snap, 90, replayNow)

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, 1, item.Frequency)
	require.NotNil(t, item.LastStockout)
	assert.Equal(t, replayNow.AddDate(0, 0, -10), *item.LastStockout)
	// [now-4d, now) for the current outage plus [12d, 10d) for the earlier one.
	assert.Equal(t, 6, item.StockoutDays)
}

func TestReconstructMultipleEpisodes(t *testing.T) {
	// Two separate dips below zero, both resolved by receipts.
	snap := &store.Snapshot{
		Balances: []domain.InventoryBalance{
			{WarehouseID: "WH1", ProductID: "P1", QtyOnHand: 5},
		},
		Transactions: []domain.InventoryTransaction{
			receipt("P1", "WH1", 10, 2),  // resolves second stockout
			issue("P1", "WH1", 10, 6),    // causes second stockout (pos 5 -> -5)
			receipt("P1", "WH1", 10, 10), // resolves first stockout (pos -5 -> 5)
			issue("P1", "WH1", 10, 14),   // causes first stockout (pos 5 -> -5)
			receipt("P1", "WH1", 4, 20),
		},
	}

	items := Reconstruct(snap, 90, replayNow)

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, 2, item.Frequency)
	require.NotNil(t, item.LastStockout)
	// Most recent episode is the one discovered first on the backward walk.
	assert.Equal(t, replayNow.AddDate(0, 0, -2), *item.LastStockout)
	// [6d, 2d) and [14d, 10d): four days each.
	assert.Equal(t, 8, item.StockoutDays)
}

func TestReconstructWindowTail(t *testing.T) {
	// Only one receipt inside the window; before it the reconstructed position
	// is negative all the way back to the window start.
	snap := &store.Snapshot{
		Balances: []domain.InventoryBalance{
			{WarehouseID: "WH1", ProductID: "P1", QtyOnHand: 3},
		},
		Transactions: []domain.InventoryTransaction{
			receipt("P1", "WH1", 10, 5),
		},
	}

	items := Reconstruct(snap, 30, replayNow)

	require.Len(t, items, 1)
	// Position was -7 during [window start (30d ago), 5d ago).
	assert.Equal(t, 25, items[0].StockoutDays)
	assert.Equal(t, 1, items[0].Frequency)
}

func TestReconstructSortOrder(t *testing.T) {
	mk := func(productID string, episodes int) []domain.InventoryTransaction {
		var trxs []domain.InventoryTransaction
		day := 2
		for i := 0; i < episodes; i++ {
			trxs = append(trxs,
				receipt(productID, "WH1", 10, day),
				issue(productID, "WH1", 10, day+2),
			)
			day += 4
		}
		return trxs
	}

	snap := &store.Snapshot{
		Balances: []domain.InventoryBalance{
			{WarehouseID: "WH1", ProductID: "P1", QtyOnHand: 5},
			{WarehouseID: "WH1", ProductID: "P2", QtyOnHand: 5},
		},
		Transactions: append(mk("P1", 1), mk("P2", 3)...),
	}

	items := Reconstruct(snap, 90, replayNow)

	require.Len(t, items, 2)
	assert.Equal(t, "P2", items[0].ProductID)
	assert.Equal(t, "P1", items[1].ProductID)
	assert.Greater(t, items[0].Frequency, items[1].Frequency)
}

func TestDaysBetween(t *testing.T) {
	a := replayNow.AddDate(0, 0, -3)
	assert.Equal(t, 3, daysBetween(a, replayNow))
	assert.Equal(t, 0, daysBetween(replayNow, a))
	assert.Equal(t, 0, daysBetween(replayNow, replayNow))
}
