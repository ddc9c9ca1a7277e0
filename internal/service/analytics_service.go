// backend-go/internal/service/analytics_service.go
package service

import (
	"context"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/analytics/alerts"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/analytics/anomaly"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/analytics/bcg"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/analytics/metrics"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/analytics/safetystock"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/analytics/stockout"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/cache"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/config"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/telemetry"
	"github.com/rs/zerolog/log"
)

// AnalyticsService wires the data store, the engines and the response cache.
// Every operation materializes a fresh snapshot; nothing is carried between
// invocations.
type AnalyticsService struct {
	store      store.InventoryStore
	cache      cache.AnalyticsCache
	cfg        config.EngineConfig
	safety     *safetystock.Engine
	detectors  []anomaly.Detector
	aggregator *alerts.Aggregator
}

func NewAnalyticsService(inventoryStore store.InventoryStore, cacheImpl cache.AnalyticsCache, cfg config.EngineConfig) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}

	detectors := anomaly.BuildDetectors(cfg.PriceVarianceEnabled)

	return &AnalyticsService{
		store:      inventoryStore,
		cache:      cacheImpl,
		cfg:        cfg,
		safety:     safetystock.NewEngine(&countingWriter{store: inventoryStore}),
		detectors:  detectors,
		aggregator: alerts.NewAggregator(detectors...),
	}
}

// DefaultPolicy returns the configured recalibration defaults; handlers merge
// per-request overrides on top.
func (s *AnalyticsService) DefaultPolicy() domain.SafetyStockPolicy {
	return domain.SafetyStockPolicy{
		ServiceLevel:     s.cfg.ServiceLevel,
		LeadTimeDays:     s.cfg.LeadTimeDays,
		MaxChangePercent: s.cfg.MaxChangePercent,
		RoundToPack:      s.cfg.RoundToPack,
		MinSafetyStock:   s.cfg.MinSafetyStock,
	}
}

func (s *AnalyticsService) Overview(ctx context.Context) (*domain.OverviewMetrics, error) {
	if overview, ok, err := s.cache.GetOverview(ctx); err == nil && ok {
		return overview, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get overview failed")
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	defer s.observe("overview", time.Now())
	overview := metrics.Overview(snap, 0, 0, time.Now().UTC())

	if err := s.cache.SetOverview(ctx, overview); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set overview failed")
	}

	return overview, nil
}

func (s *AnalyticsService) RecalibrateSafetyStock(ctx context.Context, warehouseID string, policy domain.SafetyStockPolicy) (*domain.RecalibrationResult, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	defer s.observe("recalibrate", time.Now())
	result, err := s.safety.Recalibrate(ctx, snap, warehouseID, policy, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if result.AppliedCount > 0 {
		if err := s.cache.InvalidateWarehouse(ctx, warehouseID); err != nil {
			log.Warn().Err(err).Str("warehouse_id", warehouseID).Msg("analytics: cache invalidation failed")
		}
	}

	log.Info().
		Str("warehouse_id", warehouseID).
		Int("applied", result.AppliedCount).
		Int("candidates", result.TotalCandidates).
		Msg("safety stock recalibration completed")

	return result, nil
}

func (s *AnalyticsService) DetectAnomalies(ctx context.Context, lookbackDays int, thresholdPct float64) ([]domain.AnomalyItem, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	defer s.observe("anomalies", time.Now())
	cfg := s.anomalyConfig(lookbackDays, thresholdPct)

	anomalies := make([]domain.AnomalyItem, 0)
	for _, d := range s.detectors {
		anomalies = append(anomalies, d.Detect(snap, cfg)...)
	}
	for _, a := range anomalies {
		telemetry.AnomaliesDetectedTotal.WithLabelValues(a.Type, a.Severity).Inc()
	}

	return anomalies, nil
}

func (s *AnalyticsService) StockoutHistory(ctx context.Context, lookbackDays int) ([]domain.StockoutHistoryItem, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	defer s.observe("stockouts", time.Now())
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.StockoutLookbackDays
	}

	return stockout.Reconstruct(snap, lookbackDays, time.Now().UTC()), nil
}

func (s *AnalyticsService) ClassifyProducts(ctx context.Context, warehouseID, category string, windowDays int) (*domain.ClassificationResult, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.ClassifyWindowDays
	}
	filter := cache.ClassificationFilter{WarehouseID: warehouseID, Category: category, WindowDays: windowDays}

	if result, ok, err := s.cache.GetClassification(ctx, filter); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get classification failed")
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	defer s.observe("classification", time.Now())
	result := bcg.Classify(snap, bcg.Options{
		WarehouseID: warehouseID,
		Category:    category,
		WindowDays:  windowDays,
		Now:         time.Now().UTC(),
	})

	if err := s.cache.SetClassification(ctx, filter, result); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set classification failed")
	}

	return result, nil
}

func (s *AnalyticsService) AlertReport(ctx context.Context, lookbackDays int, thresholdPct float64) (*domain.AlertReport, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	defer s.observe("alerts", time.Now())
	cfg := s.anomalyConfig(lookbackDays, thresholdPct)
	stockouts := stockout.Reconstruct(snap, s.cfg.StockoutLookbackDays, cfg.Now)

	report := s.aggregator.Report(snap, cfg, stockouts)
	for _, a := range report.Anomalies {
		telemetry.AnomaliesDetectedTotal.WithLabelValues(a.Type, a.Severity).Inc()
	}

	return report, nil
}

func (s *AnalyticsService) anomalyConfig(lookbackDays int, thresholdPct float64) anomaly.Config {
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.AnomalyLookbackDays
	}
	if thresholdPct <= 0 {
		thresholdPct = s.cfg.AnomalyThresholdPct
	}
	return anomaly.Config{
		LookbackDays:        lookbackDays,
		ThresholdPercentage: thresholdPct,
		Now:                 time.Now().UTC(),
	}
}

func (s *AnalyticsService) loadSnapshot(ctx context.Context) (*store.Snapshot, error) {
	start := time.Now()
	snap, err := store.LoadSnapshot(ctx, s.store)
	telemetry.SnapshotLoadDuration.Observe(time.Since(start).Seconds())
	return snap, err
}

func (s *AnalyticsService) observe(operation string, start time.Time) {
	telemetry.EngineRunsTotal.WithLabelValues(operation).Inc()
	telemetry.EngineRunDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// countingWriter instruments safety stock write-backs.
type countingWriter struct {
	store store.InventoryStore
}

func (w *countingWriter) UpdateSafetyStock(ctx context.Context, warehouseID, productID string, value float64) (*domain.InventoryBalance, error) {
	updated, err := w.store.UpdateSafetyStock(ctx, warehouseID, productID, value)
	if err != nil {
		telemetry.SafetyStockWriteFailuresTotal.Inc()
		return nil, err
	}
	telemetry.SafetyStockWritesTotal.Inc()
	return updated, nil
}
