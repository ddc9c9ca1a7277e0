// backend-go/internal/domain/results.go
package domain

import "time"

// Anomaly types.
const (
	AnomalyUnusualTransaction = "unusual_transaction"
	AnomalyStockout           = "stockout"
	AnomalyPriceVariance      = "price_variance"
)

// Severity labels. These are part of the API contract.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Probable-cause labels, also part of the API contract.
const (
	CauseDemandSpike    = "demand_spike"
	CauseReceiptDelay   = "receipt_delay"
	CauseDuplicateEntry = "duplicate_entry"
	CauseProcessChange  = "process_change"
	CauseDataError      = "data_error"
	CauseUnknown        = "unknown"
)

// BCG quadrant labels.
const (
	QuadrantStar         = "Star"
	QuadrantCashCow      = "Cash Cow"
	QuadrantQuestionMark = "Question Mark"
	QuadrantDog          = "Dog"
)

// AnomalyItem is a single detection result. Recomputed on every run, never
// persisted. ProductID/WarehouseID/TrxType identify the tuple the detector
// flagged so the alert aggregator can enrich without re-deriving it.
type AnomalyItem struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Severity         string  `json:"severity"`
	ProductID        string  `json:"product_id"`
	WarehouseID      string  `json:"warehouse_id,omitempty"`
	TrxType          string  `json:"trx_type,omitempty"`
	ChangePercentage float64 `json:"change_percentage"`
	BaselineValue    float64 `json:"baseline_value"`
	CurrentValue     float64 `json:"current_value"`
	ProbableCause    string  `json:"probable_cause"`
	EstimatedImpact  float64 `json:"estimated_impact"`
}

// StockoutHistoryItem is one product/warehouse pair's reconstructed stockout
// record over the lookback window.
type StockoutHistoryItem struct {
	ProductID    string     `json:"product_id"`
	WarehouseID  string     `json:"warehouse_id"`
	StockoutDays int        `json:"stockout_days"`
	Frequency    int        `json:"frequency"`
	LastStockout *time.Time `json:"last_stockout,omitempty"`
	CurrentQty   float64    `json:"current_qty"`
	SafetyStock  float64    `json:"safety_stock"`
}

// SafetyStockChange records one applied recalibration.
type SafetyStockChange struct {
	WarehouseID   string  `json:"warehouse_id"`
	ProductID     string  `json:"product_id"`
	Current       float64 `json:"current"`
	Recommended   float64 `json:"recommended"`
	ChangePercent float64 `json:"change_percent"`
	Reason        string  `json:"reason"`
}

// RecalibrationResult is the output of one safety stock engine run.
type RecalibrationResult struct {
	WarehouseID     string              `json:"warehouse_id"`
	AppliedCount    int                 `json:"applied_count"`
	TotalCandidates int                 `json:"total_candidates"`
	Changes         []SafetyStockChange `json:"changes"`
}

// ProductPerformance is one classified product.
type ProductPerformance struct {
	ProductID        string  `json:"product_id"`
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	IssuedQty        float64 `json:"issued_qty"`
	AvgOnHand        float64 `json:"avg_on_hand"`
	TurnoverRate     float64 `json:"turnover_rate"`
	RevenuePotential float64 `json:"revenue_potential"`
	Quadrant         string  `json:"quadrant"`
}

// ClassificationResult is the BCG classifier output.
type ClassificationResult struct {
	QuadrantCounts map[string]int       `json:"quadrant_counts"`
	MedianTurnover float64              `json:"median_turnover"`
	MedianRevenue  float64              `json:"median_revenue"`
	Products       []ProductPerformance `json:"products"`
	TopStars       []ProductPerformance `json:"top_stars"`
	BottomDogs     []ProductPerformance `json:"bottom_dogs"`
	EvaluatedCount int                  `json:"evaluated_count"`
}

// EnrichedAnomaly is an anomaly plus impact estimates added by the alert
// aggregator. Pointer fields stay null when the estimate does not apply.
type EnrichedAnomaly struct {
	AnomalyItem
	StockRiskDays      *int     `json:"stock_risk_days,omitempty"`
	PotentialLostSales *float64 `json:"potential_lost_sales_qty,omitempty"`
	ExcessQty          *float64 `json:"excess_qty,omitempty"`
	Confidence         string   `json:"confidence"`
}

// PriorityAlert is one of "today's priorities".
type PriorityAlert struct {
	EnrichedAnomaly
	Score int `json:"score"`
}

// AlertReport is the merged output of all detectors.
type AlertReport struct {
	Anomalies        []EnrichedAnomaly `json:"anomalies"`
	SeverityCounts   map[string]int    `json:"severity_counts"`
	TodaysPriorities []PriorityAlert   `json:"todays_priorities"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// CategoryValue is one slice of the category split.
type CategoryValue struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// MovementPoint is one day of the movement trend.
type MovementPoint struct {
	Date   string  `json:"date"`
	NetQty float64 `json:"net_qty"`
}

// ProductValue is one entry of the top-N value ranking.
type ProductValue struct {
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
}

// WarehouseValue is one warehouse's share of total inventory value.
type WarehouseValue struct {
	WarehouseID string  `json:"warehouse_id"`
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
}

// OverviewMetrics is the baseline valuation output.
type OverviewMetrics struct {
	TotalValue            float64          `json:"total_value"`
	CategorySplit         []CategoryValue  `json:"category_split"`
	MovementTrend         []MovementPoint  `json:"movement_trend"`
	TopProducts           []ProductValue   `json:"top_products"`
	WarehouseDistribution []WarehouseValue `json:"warehouse_distribution"`
}
