package vectors

import (
	"fmt"
	"strings"

	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

// DistanceMetric selects the similarity function for a collection.
type DistanceMetric string

const (
	DistanceCosine    DistanceMetric = "Cosine"
	DistanceEuclidean DistanceMetric = "Euclidean"
	DistanceDot       DistanceMetric = "Dot"
	DistanceManhattan DistanceMetric = "Manhattan"
)

// NormalizeDistance maps any accepted spelling of a distance metric to its
// canonical form. "euclid" is accepted as an alias for Euclidean.
func NormalizeDistance(s string) (DistanceMetric, error) {
	switch strings.ToLower(s) {
	case "cosine":
		return DistanceCosine, nil
	case "euclidean", "euclid":
		return DistanceEuclidean, nil
	case "dot":
		return DistanceDot, nil
	case "manhattan":
		return DistanceManhattan, nil
	}
	return "", apierrors.New(apierrors.KindInvalidRequest,
		fmt.Sprintf("invalid distance metric %q, must be one of: Cosine, Euclidean, Dot, Manhattan", s))
}

// VectorConfig describes the vector parameters of a collection.
type VectorConfig struct {
	// Size is the vector dimensionality.
	Size int `json:"size"`

	// Distance is the similarity metric.
	Distance DistanceMetric `json:"distance"`
}

// Point is a vector point with an optional payload. ID is a string or an
// integer, matching the service contract.
type Point struct {
	ID      any            `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// RetrievedPoint is a point returned by Retrieve. Payload and Vector are
// populated according to the retrieve options.
type RetrievedPoint struct {
	ID      any            `json:"id"`
	Payload map[string]any `json:"payload,omitempty"`
	Vector  []float32      `json:"vector,omitempty"`
}

// SearchResult is one scored match from a vector search.
type SearchResult struct {
	ID      any            `json:"id"`
	Score   float32        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
	Vector  []float32      `json:"vector,omitempty"`
}

// Filter expresses boolean conditions over point payloads. Conditions are
// passed to the service as-is.
type Filter struct {
	Must    []map[string]any `json:"must,omitempty"`
	MustNot []map[string]any `json:"must_not,omitempty"`
	Should  []map[string]any `json:"should,omitempty"`
}

// CollectionDescription describes one collection. Name is always the short,
// caller-visible name; scoping never leaks out of the client.
type CollectionDescription struct {
	Name        string       `json:"name"`
	Config      VectorConfig `json:"config"`
	PointsCount int64        `json:"points_count"`
	Status      string       `json:"status"`
}

// PerformanceAnalytics is the global performance view of the service.
type PerformanceAnalytics struct {
	CacheHitRate      float64                       `json:"cache_hit_rate"`
	AvgLatencyMs      float64                       `json:"avg_latency_ms"`
	RequestsPerSecond float64                       `json:"requests_per_second"`
	ActiveRegions     []string                      `json:"active_regions"`
	RegionPerformance map[string]map[string]float64 `json:"region_performance"`
	TotalRequests     int64                         `json:"total_requests,omitempty"`
	ErrorRate         float64                       `json:"error_rate,omitempty"`
}

// CollectionAnalytics is the per-collection analytics view.
type CollectionAnalytics struct {
	CollectionName     string   `json:"collection_name"`
	TotalPoints        int64    `json:"total_points"`
	SearchRequests     int64    `json:"search_requests"`
	AvgSearchLatencyMs float64  `json:"avg_search_latency_ms"`
	CacheHitRate       float64  `json:"cache_hit_rate"`
	TopRegions         []string `json:"top_regions"`
	StorageSizeMB      float64  `json:"storage_size_mb,omitempty"`
}

// UsageStats reports current usage against the customer's plan limits.
type UsageStats struct {
	CurrentCollections  int64   `json:"current_collections"`
	MaxCollections      int64   `json:"max_collections"`
	CurrentPoints       int64   `json:"current_points"`
	MaxPoints           int64   `json:"max_points"`
	RequestsThisMonth   int64   `json:"requests_this_month"`
	MaxRequestsPerMonth int64   `json:"max_requests_per_month"`
	StorageUsedMB       float64 `json:"storage_used_mb"`
	MaxStorageMB        float64 `json:"max_storage_mb"`
	PlanName            string  `json:"plan_name"`
}

// CollectionsUsagePercent is the collections quota utilization in percent.
func (u *UsageStats) CollectionsUsagePercent() float64 {
	return percent(float64(u.CurrentCollections), float64(u.MaxCollections))
}

// PointsUsagePercent is the points quota utilization in percent.
func (u *UsageStats) PointsUsagePercent() float64 {
	return percent(float64(u.CurrentPoints), float64(u.MaxPoints))
}

// RequestsUsagePercent is the monthly request quota utilization in percent.
func (u *UsageStats) RequestsUsagePercent() float64 {
	return percent(float64(u.RequestsThisMonth), float64(u.MaxRequestsPerMonth))
}

// StorageUsagePercent is the storage quota utilization in percent.
func (u *UsageStats) StorageUsagePercent() float64 {
	return percent(u.StorageUsedMB, u.MaxStorageMB)
}

func percent(current, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return current / max * 100
}

// collectionPayload is the wire shape of a collection description.
type collectionPayload struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	PointsCount int64  `json:"points_count"`
	Config      struct {
		Params struct {
			Vectors VectorConfig `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

func (p *collectionPayload) toDescription(shortName string) CollectionDescription {
	return CollectionDescription{
		Name:        shortName,
		Config:      p.Config.Params.Vectors,
		PointsCount: p.PointsCount,
		Status:      p.Status,
	}
}
