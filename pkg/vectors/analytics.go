package vectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aetherfy/vectors-go/internal/transport"
	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

// DefaultTimeRange is used when an analytics call passes an empty range.
// Accepted ranges are service-defined: 1h, 24h, 7d, 30d.
const DefaultTimeRange = "24h"

func (c *Client) analyticsGet(ctx context.Context, op, path string, query url.Values, out any) error {
	payload, err := c.dispatcher.Do(ctx, &transport.Descriptor{
		Method:     http.MethodGet,
		Path:       path,
		Query:      query,
		Idempotent: true,
		Kind:       transport.KindAnalytics,
		Operation:  op,
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apierrors.New(apierrors.KindUnknown, "malformed analytics response: "+err.Error())
	}
	return nil
}

func timeRangeQuery(timeRange string) url.Values {
	if timeRange == "" {
		timeRange = DefaultTimeRange
	}
	return url.Values{"time_range": []string{timeRange}}
}

// GetPerformanceAnalytics returns the global performance view, optionally
// narrowed to one region.
func (c *Client) GetPerformanceAnalytics(ctx context.Context, timeRange, region string) (*PerformanceAnalytics, error) {
	query := timeRangeQuery(timeRange)
	if region != "" {
		query.Set("region", region)
	}
	var out PerformanceAnalytics
	if err := c.analyticsGet(ctx, "performance_analytics", "analytics/performance", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCollectionAnalytics returns analytics for one collection.
func (c *Client) GetCollectionAnalytics(ctx context.Context, collection, timeRange string) (*CollectionAnalytics, error) {
	if err := validateCollectionName(collection); err != nil {
		return nil, err
	}
	var out CollectionAnalytics
	path := "analytics/collections/" + c.resolver.Scope(collection)
	if err := c.analyticsGet(ctx, "collection_analytics", path, timeRangeQuery(timeRange), &out); err != nil {
		return nil, err
	}
	// The service reports the storage-qualified name; hand back the short one.
	out.CollectionName = collection
	return &out, nil
}

// GetTopCollections returns the collections ranked highest by the given
// metric (requests, latency or storage). An empty metric defaults to
// "requests"; a non-positive limit defaults to 10. Entries belonging to
// other workspaces are excluded and names are handed back short.
func (c *Client) GetTopCollections(ctx context.Context, metric, timeRange string, limit int) ([]map[string]any, error) {
	if metric == "" {
		metric = "requests"
	}
	if limit <= 0 {
		limit = 10
	}
	query := timeRangeQuery(timeRange)
	query.Set("metric", metric)
	query.Set("limit", strconv.Itoa(limit))

	var out []map[string]any
	if err := c.analyticsGet(ctx, "top_collections", "analytics/collections/top", query, &out); err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(out))
	for _, entry := range out {
		if name, ok := entry["collection_name"].(string); ok && name != "" {
			short, owned := c.resolver.Unscope(name)
			if !owned {
				continue
			}
			entry["collection_name"] = short
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetUsageStats returns current usage against the customer's plan limits.
func (c *Client) GetUsageStats(ctx context.Context) (*UsageStats, error) {
	var out UsageStats
	if err := c.analyticsGet(ctx, "usage_stats", "analytics/usage", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRegionPerformance returns per-region performance metrics.
func (c *Client) GetRegionPerformance(ctx context.Context, timeRange string) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64)
	if err := c.analyticsGet(ctx, "region_performance", "analytics/regions", timeRangeQuery(timeRange), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCacheAnalytics returns server-side cache performance data. Caching is
// a remote-service property; this client only observes it.
func (c *Client) GetCacheAnalytics(ctx context.Context, timeRange string) (map[string]any, error) {
	out := make(map[string]any)
	if err := c.analyticsGet(ctx, "cache_analytics", "analytics/cache", timeRangeQuery(timeRange), &out); err != nil {
		return nil, err
	}
	return out, nil
}
