// backend-go/internal/analytics/metrics/aggregator.go
package metrics

import (
	"sort"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
)

const (
	defaultTopN      = 10
	defaultTrendDays = 30
)

// Overview computes the baseline valuation metrics over a snapshot: total
// inventory value at latest unit cost, value split by category and by
// warehouse, the daily net movement trend and the top products by value.
func Overview(snap *store.Snapshot, topN, trendDays int, now time.Time) *domain.OverviewMetrics {
	if topN <= 0 {
		topN = defaultTopN
	}
	if trendDays <= 0 {
		trendDays = defaultTrendDays
	}

	costs := snap.LatestUnitCosts()
	products := snap.ProductIndex()

	valueByProduct := make(map[string]float64)
	valueByWarehouse := make(map[string]float64)
	var total float64
	for _, b := range snap.Balances {
		v := b.QtyOnHand * costs[b.ProductID]
		valueByProduct[b.ProductID] += v
		valueByWarehouse[b.WarehouseID] += v
		total += v
	}

	out := &domain.OverviewMetrics{
		TotalValue:            total,
		CategorySplit:         categorySplit(valueByProduct, products),
		MovementTrend:         movementTrend(snap.Transactions, trendDays, now),
		TopProducts:           topProducts(valueByProduct, products, topN),
		WarehouseDistribution: warehouseDistribution(valueByWarehouse, snap.Warehouses),
	}
	return out
}

func categorySplit(valueByProduct map[string]float64, products map[string]domain.Product) []domain.CategoryValue {
	byCategory := make(map[string]float64)
	for id, v := range valueByProduct {
		byCategory[products[id].Category] += v
	}

	split := make([]domain.CategoryValue, 0, len(byCategory))
	for category, v := range byCategory {
		split = append(split, domain.CategoryValue{Category: category, Value: v})
	}
	sort.Slice(split, func(i, j int) bool {
		if split[i].Value != split[j].Value {
			return split[i].Value > split[j].Value
		}
		return split[i].Category < split[j].Category
	})
	return split
}

func movementTrend(trxs []domain.InventoryTransaction, trendDays int, now time.Time) []domain.MovementPoint {
	start := now.AddDate(0, 0, -(trendDays - 1))
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	byDay := make(map[string]float64)
	for _, t := range trxs {
		if t.Date.Before(startDay) || t.Date.After(now) {
			continue
		}
		byDay[t.Date.UTC().Format("2006-01-02")] += t.SignedQty
	}

	trend := make([]domain.MovementPoint, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		day := startDay.AddDate(0, 0, i).Format("2006-01-02")
		trend = append(trend, domain.MovementPoint{Date: day, NetQty: byDay[day]})
	}
	return trend
}

func topProducts(valueByProduct map[string]float64, products map[string]domain.Product, topN int) []domain.ProductValue {
	ranked := make([]domain.ProductValue, 0, len(valueByProduct))
	for id, v := range valueByProduct {
		p := products[id]
		ranked = append(ranked, domain.ProductValue{
			ProductID: id,
			SKU:       p.SKU,
			Name:      p.Name,
			Value:     v,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func warehouseDistribution(valueByWarehouse map[string]float64, warehouses []domain.Warehouse) []domain.WarehouseValue {
	names := make(map[string]string, len(warehouses))
	for _, w := range warehouses {
		names[w.WarehouseID] = w.Name
	}

	dist := make([]domain.WarehouseValue, 0, len(valueByWarehouse))
	for id, v := range valueByWarehouse {
		dist = append(dist, domain.WarehouseValue{WarehouseID: id, Name: names[id], Value: v})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Value != dist[j].Value {
			return dist[i].Value > dist[j].Value
		}
		return dist[i].WarehouseID < dist[j].WarehouseID
	})
	return dist
}
