// backend-go/internal/analytics/bcg/classifier.go
package bcg

import (
	"sort"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
)

// Options filter and size the classification window.
type Options struct {
	WarehouseID string
	Category    string
	WindowDays  int
	Now         time.Time
}

// Classify places every evaluated active product into a BCG quadrant by
// turnover rate and revenue potential, split on the medians of the evaluated
// set. The median is the element at index n/2 of the sorted values — the
// middle index rule, not an averaged median.
func Classify(snap *store.Snapshot, opts Options) *domain.ClassificationResult {
	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = 30
	}
	windowStart := opts.Now.AddDate(0, 0, -windowDays)

	issuedByProduct := make(map[string]float64)
	for _, t := range snap.Transactions {
		if t.Type != domain.TrxTypeIssue {
			continue
		}
		if !t.Date.After(windowStart) || t.Date.After(opts.Now) {
			continue
		}
		if opts.WarehouseID != "" && t.WarehouseID != opts.WarehouseID {
			continue
		}
		issuedByProduct[t.ProductID] += t.Qty
	}

	type onHand struct {
		sum   float64
		count int
	}
	onHandByProduct := make(map[string]*onHand)
	for _, b := range snap.Balances {
		if opts.WarehouseID != "" && b.WarehouseID != opts.WarehouseID {
			continue
		}
		oh := onHandByProduct[b.ProductID]
		if oh == nil {
			oh = &onHand{}
			onHandByProduct[b.ProductID] = oh
		}
		oh.sum += b.QtyOnHand
		oh.count++
	}

	costs := snap.LatestUnitCosts()

	products := append([]domain.Product(nil), snap.Products...)
	sort.Slice(products, func(i, j int) bool { return products[i].ProductID < products[j].ProductID })

	evaluated := make([]domain.ProductPerformance, 0)
	for _, p := range products {
		if !p.Active {
			continue
		}
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}

		oh := onHandByProduct[p.ProductID]
		if oh == nil || oh.count == 0 {
			continue
		}
		avgOnHand := oh.sum / float64(oh.count)
		if avgOnHand == 0 {
			// Turnover undefined.
			continue
		}

		issued := issuedByProduct[p.ProductID]
		evaluated = append(evaluated, domain.ProductPerformance{
			ProductID:        p.ProductID,
			SKU:              p.SKU,
			Name:             p.Name,
			Category:         p.Category,
			IssuedQty:        issued,
			AvgOnHand:        avgOnHand,
			TurnoverRate:     issued / avgOnHand,
			RevenuePotential: issued * costs[p.ProductID],
		})
	}

	result := &domain.ClassificationResult{
		QuadrantCounts: map[string]int{
			domain.QuadrantStar:         0,
			domain.QuadrantCashCow:      0,
			domain.QuadrantQuestionMark: 0,
			domain.QuadrantDog:          0,
		},
		Products:       []domain.ProductPerformance{},
		TopStars:       []domain.ProductPerformance{},
		BottomDogs:     []domain.ProductPerformance{},
		EvaluatedCount: len(evaluated),
	}
	if len(evaluated) == 0 {
		return result
	}

	turnovers := make([]float64, len(evaluated))
	revenues := make([]float64, len(evaluated))
	for i, e := range evaluated {
		turnovers[i] = e.TurnoverRate
		revenues[i] = e.RevenuePotential
	}
	result.MedianTurnover = middleIndexMedian(turnovers)
	result.MedianRevenue = middleIndexMedian(revenues)

	for i := range evaluated {
		evaluated[i].Quadrant = quadrant(evaluated[i], result.MedianTurnover, result.MedianRevenue)
		result.QuadrantCounts[evaluated[i].Quadrant]++
	}
	result.Products = evaluated

	result.TopStars = topByRevenue(evaluated, domain.QuadrantStar, 5, true)
	result.BottomDogs = topByRevenue(evaluated, domain.QuadrantDog, 5, false)

	return result
}

func quadrant(p domain.ProductPerformance, medianTurnover, medianRevenue float64) string {
	highTurnover := p.TurnoverRate >= medianTurnover
	highRevenue := p.RevenuePotential >= medianRevenue
	switch {
	case highTurnover && highRevenue:
		return domain.QuadrantStar
	case !highTurnover && highRevenue:
		return domain.QuadrantCashCow
	case highTurnover && !highRevenue:
		return domain.QuadrantQuestionMark
	default:
		return domain.QuadrantDog
	}
}

// middleIndexMedian returns sorted[n/2]; for even n this is the upper middle
// element, never an average of the two middles.
func middleIndexMedian(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func topByRevenue(products []domain.ProductPerformance, quadrant string, limit int, desc bool) []domain.ProductPerformance {
	filtered := make([]domain.ProductPerformance, 0)
	for _, p := range products {
		if p.Quadrant == quadrant {
			filtered = append(filtered, p)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if desc {
			return filtered[i].RevenuePotential > filtered[j].RevenuePotential
		}
		return filtered[i].RevenuePotential < filtered[j].RevenuePotential
	})

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}
