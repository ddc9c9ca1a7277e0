package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-insights/backend-go/internal/config"
	"github.com/andresuchdata/inventory-insights/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	analyticsKeyPrefix     = "analytics"
	analyticsScanBatchSize = 100
)

// ClassificationFilter identifies one classification cache entry. Warehouse
// and category are explicit key segments so invalidation can target them.
type ClassificationFilter struct {
	WarehouseID string
	Category    string
	WindowDays  int
}

// AnalyticsCache caches read-only analytics responses. Safety stock
// recalibration invalidates the affected warehouse's entries; everything else
// expires by TTL.
type AnalyticsCache interface {
	GetOverview(ctx context.Context) (*domain.OverviewMetrics, bool, error)
	SetOverview(ctx context.Context, overview *domain.OverviewMetrics) error
	GetClassification(ctx context.Context, filter ClassificationFilter) (*domain.ClassificationResult, bool, error)
	SetClassification(ctx context.Context, filter ClassificationFilter, result *domain.ClassificationResult) error
	InvalidateWarehouse(ctx context.Context, warehouseID string) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalyticsCache{client: client, ttl: ttl}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) GetOverview(ctx context.Context) (*domain.OverviewMetrics, bool, error) {
	var overview domain.OverviewMetrics
	ok, err := c.get(ctx, overviewKey(), &overview)
	if err != nil || !ok {
		return nil, false, err
	}
	return &overview, true, nil
}

func (c *redisAnalyticsCache) SetOverview(ctx context.Context, overview *domain.OverviewMetrics) error {
	return c.set(ctx, overviewKey(), overview)
}

func (c *redisAnalyticsCache) GetClassification(ctx context.Context, filter ClassificationFilter) (*domain.ClassificationResult, bool, error) {
	var result domain.ClassificationResult
	ok, err := c.get(ctx, classificationKey(filter), &result)
	if err != nil || !ok {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisAnalyticsCache) SetClassification(ctx context.Context, filter ClassificationFilter, result *domain.ClassificationResult) error {
	return c.set(ctx, classificationKey(filter), result)
}

func (c *redisAnalyticsCache) InvalidateWarehouse(ctx context.Context, warehouseID string) error {
	prefix := fmt.Sprintf("%s:bcg:wh=%s:", analyticsKeyPrefix, normalizeSegment(warehouseID))
	if err := deleteKeysWithPrefix(ctx, c.client, prefix, analyticsScanBatchSize); err != nil {
		return err
	}
	// Unfiltered entries cover every warehouse.
	if err := deleteKeysWithPrefix(ctx, c.client, analyticsKeyPrefix+":bcg:wh=all:", analyticsScanBatchSize); err != nil {
		return err
	}
	return c.client.Del(ctx, overviewKey()).Err()
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analyticsKeyPrefix, analyticsScanBatchSize)
}

func (c *redisAnalyticsCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode analytics cache entry: %w", err)
	}
	return true, nil
}

func (c *redisAnalyticsCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode analytics cache entry: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopAnalyticsCache) GetOverview(ctx context.Context) (*domain.OverviewMetrics, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetOverview(ctx context.Context, overview *domain.OverviewMetrics) error {
	return nil
}

func (n *noopAnalyticsCache) GetClassification(ctx context.Context, filter ClassificationFilter) (*domain.ClassificationResult, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetClassification(ctx context.Context, filter ClassificationFilter, result *domain.ClassificationResult) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateWarehouse(ctx context.Context, warehouseID string) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func overviewKey() string {
	return analyticsKeyPrefix + ":overview"
}

func classificationKey(filter ClassificationFilter) string {
	wh := normalizeSegment(filter.WarehouseID)
	if wh == "" {
		wh = "all"
	}

	parts := []string{
		"category=" + normalizeSegment(filter.Category),
		"window=" + strconv.Itoa(filter.WindowDays),
	}
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))

	return fmt.Sprintf("%s:bcg:wh=%s:%s", analyticsKeyPrefix, wh, hex.EncodeToString(sum[:]))
}

func normalizeSegment(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
