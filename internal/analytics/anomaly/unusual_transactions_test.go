package anomaly

import (
	"fmt"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var detectNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func defaultDetectConfig() Config {
	return Config{LookbackDays: 7, ThresholdPercentage: 150, Now: detectNow}
}

func trx(id, productID, warehouseID, trxType string, qty float64, daysAgo int) domain.InventoryTransaction {
	signed := qty
	if trxType == domain.TrxTypeIssue {
		signed = -qty
	}
	return domain.InventoryTransaction{
		TrxID:       id,
		Date:        detectNow.AddDate(0, 0, -daysAgo),
		WarehouseID: warehouseID,
		ProductID:   productID,
		Type:        trxType,
		Qty:         qty,
		SignedQty:   signed,
	}
}

// spikeSnapshot builds a 7-day recent window averaging 3x the baseline.
func spikeSnapshot(trxType string) *store.Snapshot {
	var trxs []domain.InventoryTransaction
	// Baseline: 10 units/day on days 8..14
	for i := 8; i <= 14; i++ {
		trxs = append(trxs, trx(fmt.Sprintf("b%d", i), "P1", "WH1", trxType, 10, i))
	}
	// Recent: 30 units/day on days 0..6
	for i := 0; i <= 6; i++ {
		trxs = append(trxs, trx(fmt.Sprintf("r%d", i), "P1", "WH1", trxType, 30, i))
	}
	return &store.Snapshot{Transactions: trxs}
}

func TestDetectDemandSpike(t *testing.T) {
	d := NewUnusualTransactionDetector()

	anomalies := d.Detect(spikeSnapshot(domain.TrxTypeIssue), defaultDetectConfig())

	require.Len(t, anomalies, 1)
	a := anomalies[0]
	assert.Equal(t, domain.AnomalyUnusualTransaction, a.Type)
	assert.Equal(t, "P1", a.ProductID)
	assert.Equal(t, "WH1", a.WarehouseID)
	assert.Equal(t, domain.TrxTypeIssue, a.TrxType)
	assert.InDelta(t, 200.0, a.ChangePercentage, 0.001)
	assert.Equal(t, domain.SeverityHigh, a.Severity)
	assert.Equal(t, domain.CauseDemandSpike, a.ProbableCause)
	assert.InDelta(t, 10.0, a.BaselineValue, 0.001)
	assert.InDelta(t, 30.0, a.CurrentValue, 0.001)
	assert.NotEmpty(t, a.ID)
}

func TestDetectReceiptDelay(t *testing.T) {
	var trxs []domain.InventoryTransaction
	// Baseline receipts: 40 units/day
	for i := 8; i <= 14; i++ {
		trxs = append(trxs, trx(fmt.Sprintf("b%d", i), "P1", "WH1", domain.TrxTypeReceipt, 40, i))
	}
	// Recent receipts dry up: one small receipt keeps the tuple active
	trxs = append(trxs, trx("r0", "P1", "WH1", domain.TrxTypeReceipt, 7, 1))

	// A drop is bounded at -100%, so a sub-100 threshold is needed to see it.
	cfg := defaultDetectConfig()
	cfg.ThresholdPercentage = 80

	d := NewUnusualTransactionDetector()
	anomalies := d.Detect(&store.Snapshot{Transactions: trxs}, cfg)

	require.Len(t, anomalies, 1)
	assert.Equal(t, domain.CauseReceiptDelay, anomalies[0].ProbableCause)
	assert.Less(t, anomalies[0].ChangePercentage, 0.0)
}

func TestDetectBelowThresholdIgnored(t *testing.T) {
	var trxs []domain.InventoryTransaction
	for i := 8; i <= 14; i++ {
		trxs = append(trxs, trx(fmt.Sprintf("b%d", i), "P1", "WH1", domain.TrxTypeIssue, 10, i))
	}
	// Recent doubles the baseline: +100% is below the 150% threshold
	for i := 0; i <= 6; i++ {
		trxs = append(trxs, trx(fmt.Sprintf("r%d", i), "P1", "WH1", domain.TrxTypeIssue, 20, i))
	}

	d := NewUnusualTransactionDetector()
	anomalies := d.Detect(&store.Snapshot{Transactions: trxs}, defaultDetectConfig())

	assert.Empty(t, anomalies)
}

func TestDetectNoBaselineIgnored(t *testing.T) {
	var trxs []domain.InventoryTransaction
	for i := 0; i <= 6; i++ {
		trxs = append(trxs, trx(fmt.Sprintf("r%d", i), "P1", "WH1", domain.TrxTypeIssue, 50, i))
	}

	d := NewUnusualTransactionDetector()
	anomalies := d.Detect(&store.Snapshot{Transactions: trxs}, defaultDetectConfig())

	assert.Empty(t, anomalies)
}

func TestDuplicateRefsWinOverDemandSpike(t *testing.T) {
	snap := spikeSnapshot(domain.TrxTypeIssue)
	// Two recent entries share the same reference.
	snap.Transactions[7].RefType = "SO"
	snap.Transactions[7].RefID = "SO-1001"
	snap.Transactions[8].RefType = "SO"
	snap.Transactions[8].RefID = "SO-1001"

	d := NewUnusualTransactionDetector()
	anomalies := d.Detect(snap, defaultDetectConfig())

	require.Len(t, anomalies, 1)
	assert.Equal(t, domain.CauseDuplicateEntry, anomalies[0].ProbableCause)
}

func TestEmptyRefIDNotTreatedAsDuplicate(t *testing.T) {
	trxs := []domain.InventoryTransaction{
		{TrxID: "a", RefType: "SO", RefID: ""},
		{TrxID: "b", RefType: "SO", RefID: ""},
	}
	assert.False(t, hasDuplicateRefs(trxs))
}

func TestSingleDayConcentrationIsDataError(t *testing.T) {
	var trxs []domain.InventoryTransaction
	for i := 8; i <= 14; i++ {
		trxs = append(trxs, trx(fmt.Sprintf("b%d", i), "P1", "WH1", domain.TrxTypeIssue, 2, i))
	}
	// Entire recent volume lands on one day: 120 units against a 2/day baseline.
	trxs = append(trxs, trx("r0", "P1", "WH1", domain.TrxTypeIssue, 120, 1))

	d := NewUnusualTransactionDetector()
	anomalies := d.Detect(&store.Snapshot{Transactions: trxs}, defaultDetectConfig())

	require.Len(t, anomalies, 1)
	// recentAvg = 120/7 ≈ 17.1; the single day carries 120 > 5*17.1
	assert.Equal(t, domain.CauseDataError, anomalies[0].ProbableCause)
}

func TestSeverityLadder(t *testing.T) {
	assert.Equal(t, domain.SeverityCritical, severityForChange(300))
	assert.Equal(t, domain.SeverityCritical, severityForChange(450))
	assert.Equal(t, domain.SeverityHigh, severityForChange(200))
	assert.Equal(t, domain.SeverityHigh, severityForChange(299.9))
	assert.Equal(t, domain.SeverityMedium, severityForChange(150))
	assert.Equal(t, domain.SeverityMedium, severityForChange(199.9))
	assert.Equal(t, domain.SeverityLow, severityForChange(100))
}

func TestEstimatedImpactUsesLatestUnitCost(t *testing.T) {
	snap := spikeSnapshot(domain.TrxTypeIssue)
	snap.PurchaseOrderItems = []domain.PurchaseOrderItem{
		{ProductID: "P1", UnitCost: 2.5, CreatedAt: detectNow.AddDate(0, 0, -40)},
		{ProductID: "P1", UnitCost: 3.0, CreatedAt: detectNow.AddDate(0, 0, -5)},
	}

	d := NewUnusualTransactionDetector()
	anomalies := d.Detect(snap, defaultDetectConfig())

	require.Len(t, anomalies, 1)
	// |30 - 10| * 7 days * latest cost 3.0
	assert.InDelta(t, 420.0, anomalies[0].EstimatedImpact, 0.001)
}

func TestDetectDeterministicOrder(t *testing.T) {
	snap := spikeSnapshot(domain.TrxTypeIssue)
	for _, t2 := range spikeSnapshot(domain.TrxTypeIssue).Transactions {
		t2.ProductID = "P0"
		t2.TrxID = "x" + t2.TrxID
		snap.Transactions = append(snap.Transactions, t2)
	}

	d := NewUnusualTransactionDetector()
	first := d.Detect(snap, defaultDetectConfig())
	second := d.Detect(snap, defaultDetectConfig())

	require.Len(t, first, 2)
	assert.Equal(t, "P0", first[0].ProductID)
	assert.Equal(t, "P1", first[1].ProductID)
	assert.Equal(t, first[0].ProductID, second[0].ProductID)
	assert.Equal(t, first[1].ProductID, second[1].ProductID)
}

func TestBuildDetectors(t *testing.T) {
	assert.Len(t, BuildDetectors(false), 1)
	assert.Len(t, BuildDetectors(true), 2)
}
