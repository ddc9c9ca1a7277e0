// backend-go/internal/analytics/anomaly/price_variance.go
package anomaly

import (
	"math"
	"sort"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/google/uuid"
)

const (
	priceRecentDays   = 7
	priceBaselineDays = 30
	priceMinSamples   = 3
)

// PriceVarianceDetector flags products whose average purchase unit cost over
// the last 7 days moved sharply against the preceding 30 days. Feature-flag
// gated; both windows need at least 3 observations.
type PriceVarianceDetector struct{}

func NewPriceVarianceDetector() *PriceVarianceDetector {
	return &PriceVarianceDetector{}
}

func (d *PriceVarianceDetector) Name() string {
	return "price_variance"
}

func (d *PriceVarianceDetector) Detect(snap *store.Snapshot, cfg Config) []domain.AnomalyItem {
	recentStart := cfg.Now.AddDate(0, 0, -priceRecentDays)
	baselineStart := recentStart.AddDate(0, 0, -priceBaselineDays)

	type costWindow struct {
		recentSum     float64
		recentCount   int
		baselineSum   float64
		baselineCount int
	}

	byProduct := make(map[string]*costWindow)
	for _, item := range snap.PurchaseOrderItems {
		if !item.CreatedAt.After(baselineStart) || item.CreatedAt.After(cfg.Now) {
			continue
		}
		w := byProduct[item.ProductID]
		if w == nil {
			w = &costWindow{}
			byProduct[item.ProductID] = w
		}
		if item.CreatedAt.After(recentStart) {
			w.recentSum += item.UnitCost
			w.recentCount++
		} else {
			w.baselineSum += item.UnitCost
			w.baselineCount++
		}
	}

	productIDs := make([]string, 0, len(byProduct))
	for id := range byProduct {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	anomalies := make([]domain.AnomalyItem, 0)
	for _, id := range productIDs {
		w := byProduct[id]
		if w.recentCount < priceMinSamples || w.baselineCount < priceMinSamples {
			continue
		}

		baselineAvg := w.baselineSum / float64(w.baselineCount)
		if baselineAvg == 0 {
			continue
		}
		recentAvg := w.recentSum / float64(w.recentCount)

		change := (recentAvg - baselineAvg) / baselineAvg * 100
		severity := priceSeverity(math.Abs(change))
		if severity == "" {
			continue
		}

		anomalies = append(anomalies, domain.AnomalyItem{
			ID:               uuid.NewString(),
			Type:             domain.AnomalyPriceVariance,
			Severity:         severity,
			ProductID:        id,
			ChangePercentage: change,
			BaselineValue:    baselineAvg,
			CurrentValue:     recentAvg,
			ProbableCause:    domain.CauseUnknown,
			EstimatedImpact:  math.Abs(recentAvg - baselineAvg),
		})
	}

	return anomalies
}

func priceSeverity(absChange float64) string {
	switch {
	case absChange >= 45:
		return domain.SeverityCritical
	case absChange >= 30:
		return domain.SeverityHigh
	case absChange >= 20:
		return domain.SeverityMedium
	default:
		return ""
	}
}
