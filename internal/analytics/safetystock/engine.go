// backend-go/internal/analytics/safetystock/engine.go
package safetystock

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/rs/zerolog/log"
)

const historyDays = 30

// Writer persists one recalibrated safety stock value. A failed write is
// logged and the candidate skipped; the batch continues.
type Writer interface {
	UpdateSafetyStock(ctx context.Context, warehouseID, productID string, value float64) (*domain.InventoryBalance, error)
}

// Engine recalibrates safety stock per warehouse from historical issue
// variance. All inputs come from a materialized snapshot; the only side
// effect is the sequential write-back of changed values.
type Engine struct {
	writer Writer
}

func NewEngine(writer Writer) *Engine {
	return &Engine{writer: writer}
}

// Recalibrate sizes safety stock for every balance in the warehouse. For each
// balance it builds a 30-day daily issue series, caps outliers at the 95th
// percentile, scales the sample deviation to the lead time and maps the
// service level to a z-score. Recommendations equal to the current value are
// not written.
func (e *Engine) Recalibrate(ctx context.Context, snap *store.Snapshot, warehouseID string, policy domain.SafetyStockPolicy, now time.Time) (*domain.RecalibrationResult, error) {
	result := &domain.RecalibrationResult{
		WarehouseID: warehouseID,
		Changes:     []domain.SafetyStockChange{},
	}

	issues := indexDailyIssues(snap.Transactions, warehouseID, now)
	z := zScore(policy.ServiceLevel)

	balances := make([]domain.InventoryBalance, 0)
	for _, b := range snap.Balances {
		if b.WarehouseID == warehouseID {
			balances = append(balances, b)
		}
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].ProductID < balances[j].ProductID })
	result.TotalCandidates = len(balances)

	for _, balance := range balances {
		series := issues[balance.ProductID]
		if series == nil {
			series = make([]float64, historyDays)
		}

		_, sd := meanStdDev(clampToP95(series))
		sigmaLT := sd * math.Sqrt(float64(policy.LeadTimeDays))
		recommended := e.postProcess(z*sigmaLT, balance.SafetyStock, policy)

		if recommended == balance.SafetyStock {
			continue
		}

		if _, err := e.writer.UpdateSafetyStock(ctx, warehouseID, balance.ProductID, recommended); err != nil {
			log.Warn().Err(err).
				Str("warehouse_id", warehouseID).
				Str("product_id", balance.ProductID).
				Msg("safety stock write-back failed, skipping candidate")
			continue
		}

		result.AppliedCount++
		result.Changes = append(result.Changes, domain.SafetyStockChange{
			WarehouseID:   warehouseID,
			ProductID:     balance.ProductID,
			Current:       balance.SafetyStock,
			Recommended:   recommended,
			ChangePercent: changePercent(balance.SafetyStock, recommended),
			Reason:        reasonString(z, policy.ServiceLevel, sd, policy.LeadTimeDays),
		})
	}

	sort.SliceStable(result.Changes, func(i, j int) bool {
		return math.Abs(result.Changes[i].ChangePercent) > math.Abs(result.Changes[j].ChangePercent)
	})

	return result, nil
}

// postProcess applies rounding, the max-change clamp, pack rounding and the
// configured minimum, in that order. Non-finite intermediates fall back to
// the current value.
func (e *Engine) postProcess(raw, current float64, policy domain.SafetyStockPolicy) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return current
	}

	recommended := math.Round(raw)

	if policy.MaxChangePercent > 0 {
		lo := current * (1 - policy.MaxChangePercent/100)
		hi := current * (1 + policy.MaxChangePercent/100)
		if recommended < lo {
			recommended = math.Round(lo)
		}
		if recommended > hi {
			recommended = math.Round(hi)
		}
	}

	if policy.RoundToPack > 0 {
		pack := float64(policy.RoundToPack)
		packs := math.Round(recommended / pack)
		if packs < 1 {
			packs = 1
		}
		recommended = packs * pack
	}

	if floor := float64(policy.MinSafetyStock); recommended < floor {
		recommended = floor
	}

	if math.IsNaN(recommended) || math.IsInf(recommended, 0) {
		return current
	}
	return recommended
}

func changePercent(current, recommended float64) float64 {
	if current > 0 {
		return (recommended - current) / current * 100
	}
	if recommended != current {
		return 100
	}
	return 0
}

func reasonString(z, serviceLevel, dailySD float64, leadTimeDays int) string {
	return fmt.Sprintf("z=%.4f (service level %.2f), daily sd=%.3f, lead time %dd",
		z, serviceLevel, dailySD, leadTimeDays)
}

// indexDailyIssues builds 30-day daily issue series per product for one
// warehouse, zero-filled for days without ISSUE transactions. Index 0 is the
// oldest day.
func indexDailyIssues(trxs []domain.InventoryTransaction, warehouseID string, now time.Time) map[string][]float64 {
	windowStart := truncateDay(now).AddDate(0, 0, -(historyDays - 1))

	series := make(map[string][]float64)
	for _, t := range trxs {
		if t.WarehouseID != warehouseID || t.Type != domain.TrxTypeIssue {
			continue
		}
		day := truncateDay(t.Date)
		if day.Before(windowStart) || day.After(truncateDay(now)) {
			continue
		}

		s := series[t.ProductID]
		if s == nil {
			s = make([]float64, historyDays)
			series[t.ProductID] = s
		}
		idx := int(day.Sub(windowStart).Hours() / 24)
		if idx >= 0 && idx < historyDays {
			s[idx] += t.Qty
		}
	}
	return series
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
