// backend-go/internal/analytics/anomaly/unusual_transactions.go
package anomaly

import (
	"math"
	"sort"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/google/uuid"
)

// UnusualTransactionDetector compares recent transaction volume against an
// immediately preceding baseline window of equal length, per
// (product, warehouse, type) tuple.
type UnusualTransactionDetector struct{}

func NewUnusualTransactionDetector() *UnusualTransactionDetector {
	return &UnusualTransactionDetector{}
}

func (d *UnusualTransactionDetector) Name() string {
	return "unusual_transactions"
}

type trxTuple struct {
	ProductID   string
	WarehouseID string
	Type        string
}

type tupleWindow struct {
	recentSum    float64
	baselineSum  float64
	recentByDay  map[string]float64
	baselineDays map[string]struct{}
	recentTrxs   []domain.InventoryTransaction
}

func (d *UnusualTransactionDetector) Detect(snap *store.Snapshot, cfg Config) []domain.AnomalyItem {
	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}
	threshold := cfg.ThresholdPercentage
	if threshold <= 0 {
		threshold = 150
	}

	recentStart := cfg.Now.AddDate(0, 0, -lookback)
	baselineStart := cfg.Now.AddDate(0, 0, -2*lookback)

	windows := make(map[trxTuple]*tupleWindow)
	for _, t := range snap.Transactions {
		if !t.Date.After(baselineStart) || t.Date.After(cfg.Now) {
			continue
		}

		key := trxTuple{ProductID: t.ProductID, WarehouseID: t.WarehouseID, Type: t.Type}
		w := windows[key]
		if w == nil {
			w = &tupleWindow{
				recentByDay:  make(map[string]float64),
				baselineDays: make(map[string]struct{}),
			}
			windows[key] = w
		}

		day := t.Date.UTC().Format("2006-01-02")
		if t.Date.After(recentStart) {
			w.recentSum += t.Qty
			w.recentByDay[day] += t.Qty
			w.recentTrxs = append(w.recentTrxs, t)
		} else {
			w.baselineSum += t.Qty
			w.baselineDays[day] = struct{}{}
		}
	}

	costs := snap.LatestUnitCosts()

	// Only tuples that appear in the recent window are evaluated.
	keys := make([]trxTuple, 0, len(windows))
	for key, w := range windows {
		if len(w.recentTrxs) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		return a.Type < b.Type
	})

	anomalies := make([]domain.AnomalyItem, 0)
	for _, key := range keys {
		w := windows[key]

		recentAvg := w.recentSum / float64(lookback)
		baselineAvg := w.baselineSum / float64(lookback)
		if baselineAvg == 0 {
			// Ratio undefined without a baseline.
			continue
		}

		change := (recentAvg - baselineAvg) / baselineAvg * 100
		if math.Abs(change) < threshold {
			continue
		}

		anomalies = append(anomalies, domain.AnomalyItem{
			ID:               uuid.NewString(),
			Type:             domain.AnomalyUnusualTransaction,
			Severity:         severityForChange(math.Abs(change)),
			ProductID:        key.ProductID,
			WarehouseID:      key.WarehouseID,
			TrxType:          key.Type,
			ChangePercentage: change,
			BaselineValue:    baselineAvg,
			CurrentValue:     recentAvg,
			ProbableCause:    probableCause(key, w, recentAvg, change),
			EstimatedImpact:  math.Abs(recentAvg-baselineAvg) * float64(lookback) * costs[key.ProductID],
		})
	}

	return anomalies
}

// probableCause is a strictly ordered chain of predicate checks; the first
// match wins.
func probableCause(key trxTuple, w *tupleWindow, recentAvg, change float64) string {
	if hasDuplicateRefs(w.recentTrxs) {
		return domain.CauseDuplicateEntry
	}
	if singleDayExceeds(w.recentByDay, 5*recentAvg) {
		return domain.CauseDataError
	}
	if key.Type == domain.TrxTypeIssue && change > 0 {
		return domain.CauseDemandSpike
	}
	if key.Type == domain.TrxTypeReceipt && change < 0 {
		return domain.CauseReceiptDelay
	}
	if activeDays(w.recentByDay) >= 5 && len(w.baselineDays) >= 5 {
		return domain.CauseProcessChange
	}
	return domain.CauseUnknown
}

func hasDuplicateRefs(trxs []domain.InventoryTransaction) bool {
	type refKey struct {
		RefType string
		RefID   string
	}
	seen := make(map[refKey]int)
	for _, t := range trxs {
		if t.RefID == "" {
			continue
		}
		k := refKey{RefType: t.RefType, RefID: t.RefID}
		seen[k]++
		if seen[k] > 1 {
			return true
		}
	}
	return false
}

func singleDayExceeds(byDay map[string]float64, limit float64) bool {
	if limit <= 0 {
		return false
	}
	for _, qty := range byDay {
		if qty > limit {
			return true
		}
	}
	return false
}

func activeDays(byDay map[string]float64) int {
	n := 0
	for _, qty := range byDay {
		if qty != 0 {
			n++
		}
	}
	return n
}
