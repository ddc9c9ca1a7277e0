package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

type recalibrateRequest struct {
	WarehouseID      string   `json:"warehouse_id" binding:"required"`
	ServiceLevel     *float64 `json:"service_level"`
	LeadTimeDays     *int     `json:"lead_time_days"`
	MaxChangePercent *float64 `json:"max_change_percent"`
	RoundToPack      *int     `json:"round_to_pack"`
	MinSafetyStock   *int     `json:"min_safety_stock"`
}

func (r recalibrateRequest) mergePolicy(defaults domain.SafetyStockPolicy) domain.SafetyStockPolicy {
	policy := defaults
	if r.ServiceLevel != nil {
		policy.ServiceLevel = *r.ServiceLevel
	}
	if r.LeadTimeDays != nil {
		policy.LeadTimeDays = *r.LeadTimeDays
	}
	if r.MaxChangePercent != nil {
		policy.MaxChangePercent = *r.MaxChangePercent
	}
	if r.RoundToPack != nil {
		policy.RoundToPack = *r.RoundToPack
	}
	if r.MinSafetyStock != nil {
		policy.MinSafetyStock = *r.MinSafetyStock
	}
	return policy
}

func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute overview", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, overview)
}

func (h *AnalyticsHandler) GetAnomalies(c *gin.Context) {
	lookback := parseIntQuery(c, "lookback_days", 0)
	threshold := parseFloatQuery(c, "threshold_pct", 0)

	anomalies, err := h.service.DetectAnomalies(c.Request.Context(), lookback, threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to detect anomalies", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anomalies": anomalies,
		"total":     len(anomalies),
	})
}

func (h *AnalyticsHandler) GetStockoutHistory(c *gin.Context) {
	lookback := parseIntQuery(c, "lookback_days", 0)

	items, err := h.service.StockoutHistory(c.Request.Context(), lookback)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reconstruct stockout history", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (h *AnalyticsHandler) GetClassification(c *gin.Context) {
	warehouseID := strings.TrimSpace(c.Query("warehouse_id"))
	category := strings.TrimSpace(c.Query("category"))
	windowDays := parseIntQuery(c, "window_days", 0)

	result, err := h.service.ClassifyProducts(c.Request.Context(), warehouseID, category, windowDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to classify products", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) GetAlerts(c *gin.Context) {
	lookback := parseIntQuery(c, "lookback_days", 0)
	threshold := parseFloatQuery(c, "threshold_pct", 0)

	report, err := h.service.AlertReport(c.Request.Context(), lookback, threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build alert report", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) RecalibrateSafetyStock(c *gin.Context) {
	var req recalibrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	policy := req.mergePolicy(h.service.DefaultPolicy())
	if policy.ServiceLevel <= 0 || policy.ServiceLevel >= 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_level must be between 0 and 1 exclusive"})
		return
	}
	if policy.LeadTimeDays <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lead_time_days must be positive"})
		return
	}

	result, err := h.service.RecalibrateSafetyStock(c.Request.Context(), req.WarehouseID, policy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recalibrate safety stock", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return fallback
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return fallback
}

func parseFloatQuery(c *gin.Context, name string, fallback float64) float64 {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return fallback
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return fallback
}
