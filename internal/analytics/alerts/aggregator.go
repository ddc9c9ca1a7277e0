// backend-go/internal/analytics/alerts/aggregator.go
package alerts

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/analytics/anomaly"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/google/uuid"
)

const (
	stockoutMinFrequency      = 3
	stockoutCriticalFrequency = 5
	riskHorizonDays           = 7
)

// Aggregator merges detector outputs with stockout history, enriches each
// anomaly with impact estimates and ranks today's priorities.
type Aggregator struct {
	detectors []anomaly.Detector
}

func NewAggregator(detectors ...anomaly.Detector) *Aggregator {
	return &Aggregator{detectors: detectors}
}

// Report runs the detector chain over the snapshot and composes the merged
// alert view. Detection order is preserved; the priority ranking is a stable
// sort so the original order breaks score ties.
func (a *Aggregator) Report(snap *store.Snapshot, cfg anomaly.Config, stockouts []domain.StockoutHistoryItem) *domain.AlertReport {
	anomalies := make([]domain.AnomalyItem, 0)
	for _, d := range a.detectors {
		anomalies = append(anomalies, d.Detect(snap, cfg)...)
	}
	anomalies = append(anomalies, stockoutAnomalies(stockouts)...)

	balances := snap.BalanceIndex()
	enriched := make([]domain.EnrichedAnomaly, 0, len(anomalies))
	for _, item := range anomalies {
		enriched = append(enriched, enrich(item, balances))
	}

	report := &domain.AlertReport{
		Anomalies: enriched,
		SeverityCounts: map[string]int{
			domain.SeverityCritical: 0,
			domain.SeverityHigh:     0,
			domain.SeverityMedium:   0,
			domain.SeverityLow:      0,
		},
		GeneratedAt: time.Now().UTC(),
	}
	for _, e := range enriched {
		report.SeverityCounts[e.Severity]++
	}
	report.TodaysPriorities = rankPriorities(enriched)

	return report
}

// stockoutAnomalies promotes recurring stockout history into alert items.
// Only chronic offenders (frequency >= 3) surface here.
func stockoutAnomalies(items []domain.StockoutHistoryItem) []domain.AnomalyItem {
	anomalies := make([]domain.AnomalyItem, 0)
	for _, item := range items {
		if item.Frequency < stockoutMinFrequency {
			continue
		}
		severity := domain.SeverityHigh
		if item.Frequency >= stockoutCriticalFrequency {
			severity = domain.SeverityCritical
		}
		anomalies = append(anomalies, domain.AnomalyItem{
			ID:            uuid.NewString(),
			Type:          domain.AnomalyStockout,
			Severity:      severity,
			ProductID:     item.ProductID,
			WarehouseID:   item.WarehouseID,
			BaselineValue: item.SafetyStock,
			CurrentValue:  item.CurrentQty,
			ProbableCause: domain.CauseUnknown,
		})
	}
	return anomalies
}

func enrich(item domain.AnomalyItem, balances map[store.BalanceKey]domain.InventoryBalance) domain.EnrichedAnomaly {
	e := domain.EnrichedAnomaly{AnomalyItem: item}

	balance, ok := balances[store.BalanceKey{WarehouseID: item.WarehouseID, ProductID: item.ProductID}]
	if ok && item.Type == domain.AnomalyUnusualTransaction && item.ChangePercentage > 0 {
		switch item.TrxType {
		case domain.TrxTypeIssue:
			rate := item.CurrentValue
			if balance.QtyOnHand > balance.SafetyStock && rate > 0 {
				days := int(math.Floor((balance.QtyOnHand - balance.SafetyStock) / rate))
				e.StockRiskDays = &days
				if days <= riskHorizonDays {
					lost := math.Round(rate * float64(riskHorizonDays-maxInt(0, days)))
					e.PotentialLostSales = &lost
				}
			}
		case domain.TrxTypeReceipt:
			if balance.QtyOnHand > 3*balance.SafetyStock {
				excess := balance.QtyOnHand - 3*balance.SafetyStock
				e.ExcessQty = &excess
			}
		}
	}

	e.Confidence = confidence(e)
	return e
}

func confidence(e domain.EnrichedAnomaly) string {
	if e.BaselineValue == 0 {
		return "low"
	}
	causeKnown := e.ProbableCause != "" && e.ProbableCause != domain.CauseUnknown
	if causeKnown && (e.Severity == domain.SeverityCritical || e.Severity == domain.SeverityHigh) {
		return "high"
	}
	return "medium"
}

func rankPriorities(anomalies []domain.EnrichedAnomaly) []domain.PriorityAlert {
	ranked := make([]domain.PriorityAlert, 0, len(anomalies))
	for _, e := range anomalies {
		ranked = append(ranked, domain.PriorityAlert{
			EnrichedAnomaly: e,
			Score:           priorityScore(e),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	return ranked
}

func priorityScore(e domain.EnrichedAnomaly) int {
	score := severityBase(e.Severity)
	if e.ProbableCause == domain.CauseDuplicateEntry || e.ProbableCause == domain.CauseDataError {
		score++
	}
	if e.StockRiskDays != nil && *e.StockRiskDays <= riskHorizonDays {
		score++
	}
	if e.Type == domain.AnomalyStockout {
		score++
	}
	return score
}

func severityBase(severity string) int {
	switch severity {
	case domain.SeverityCritical:
		return 3
	case domain.SeverityHigh:
		return 2
	case domain.SeverityMedium:
		return 1
	default:
		return 0
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
