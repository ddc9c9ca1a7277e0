// backend-go/internal/analytics/stockout/reconstructor.go
package stockout

import (
	"sort"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
)

// Reconstruct replays each balance's transactions backward from the current
// on-hand quantity to recover stockout episodes inside the lookback window.
//
// The replay is an explicit two-state machine (in-stock / stockout) over the
// reconstructed running quantity. Walking newest to oldest, undoing a
// transaction's signed quantity yields the quantity held before it; a step
// where the running quantity crosses from above zero to at-or-below zero
// marks one stockout episode, with that transaction's date as the episode's
// most recent stockout.
func Reconstruct(snap *store.Snapshot, lookbackDays int, now time.Time) []domain.StockoutHistoryItem {
	if lookbackDays <= 0 {
		lookbackDays = 90
	}
	windowStart := now.AddDate(0, 0, -lookbackDays)

	byBalance := make(map[store.BalanceKey][]domain.InventoryTransaction)
	for _, t := range snap.Transactions {
		if !t.Date.After(windowStart) || t.Date.After(now) {
			continue
		}
		key := store.BalanceKey{WarehouseID: t.WarehouseID, ProductID: t.ProductID}
		byBalance[key] = append(byBalance[key], t)
	}

	items := make([]domain.StockoutHistoryItem, 0)
	for _, balance := range snap.Balances {
		key := store.BalanceKey{WarehouseID: balance.WarehouseID, ProductID: balance.ProductID}
		trxs := byBalance[key]
		sort.SliceStable(trxs, func(i, j int) bool { return trxs[i].Date.After(trxs[j].Date) })

		item := replay(balance, trxs, windowStart, now)
		if item.Frequency == 0 {
			continue
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if a.StockoutDays != b.StockoutDays {
			return a.StockoutDays > b.StockoutDays
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.WarehouseID < b.WarehouseID
	})

	return items
}

func replay(balance domain.InventoryBalance, trxsDesc []domain.InventoryTransaction, windowStart, now time.Time) domain.StockoutHistoryItem {
	item := domain.StockoutHistoryItem{
		ProductID:   balance.ProductID,
		WarehouseID: balance.WarehouseID,
		CurrentQty:  balance.QtyOnHand,
		SafetyStock: balance.SafetyStock,
	}

	running := balance.QtyOnHand
	boundary := now

	for _, t := range trxsDesc {
		// running holds the quantity during [t.Date, boundary).
		if running <= 0 {
			item.StockoutDays += daysBetween(t.Date, boundary)
		}

		prev := running
		running -= t.SignedQty

		if running <= 0 && prev > 0 {
			item.Frequency++
			if item.LastStockout == nil {
				d := t.Date
				item.LastStockout = &d
			}
		}
		boundary = t.Date
	}

	// Tail of the window before the oldest transaction.
	if running <= 0 {
		item.StockoutDays += daysBetween(windowStart, boundary)
	}

	return item
}

func daysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
