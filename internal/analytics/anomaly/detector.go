// backend-go/internal/analytics/anomaly/detector.go
package anomaly

import (
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
)

// Config carries the detection parameters shared by all detectors.
type Config struct {
	LookbackDays        int
	ThresholdPercentage float64
	Now                 time.Time
}

// Detector inspects a snapshot and reports anomalies. Implementations must be
// pure: same snapshot and config, same findings (ids aside).
type Detector interface {
	Name() string
	Detect(snap *store.Snapshot, cfg Config) []domain.AnomalyItem
}

// BuildDetectors assembles the detector chain from configuration. The unusual
// transaction detector always runs; optional detectors are toggled by flags so
// new ones can be added without touching the alert aggregator.
func BuildDetectors(priceVariance bool) []Detector {
	detectors := []Detector{NewUnusualTransactionDetector()}
	if priceVariance {
		detectors = append(detectors, NewPriceVarianceDetector())
	}
	return detectors
}

func severityForChange(absChange float64) string {
	switch {
	case absChange >= 300:
		return domain.SeverityCritical
	case absChange >= 200:
		return domain.SeverityHigh
	case absChange >= 150:
		return domain.SeverityMedium
	default:
		// Unreachable with the default 150% threshold; kept for lower
		// configured thresholds.
		return domain.SeverityLow
	}
}
