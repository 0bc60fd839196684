package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cqfsim/internal/domain"
)

// AdmissionPlanCache is a specialized cache for column-generation admission
// results, keyed by network topology and flow set.
type AdmissionPlanCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedColumn is a single path+label assignment chosen for a flow.
type CachedColumn struct {
	FlowID int64   `json:"flow_id"`
	Path   []int64 `json:"path"`
	Label  int     `json:"label"`
	Weight float64 `json:"weight"`
}

// CachedAdmissionResult is the cached outcome of a column-generation run.
type CachedAdmissionResult struct {
	AdmittedFlowIDs   []int64        `json:"admitted_flow_ids"`
	RejectedFlowIDs   []int64        `json:"rejected_flow_ids"`
	Columns           []CachedColumn `json:"columns"`
	Status            string         `json:"status"`
	Iterations        int32          `json:"iterations"`
	ComputationTimeMs float64        `json:"computation_time_ms"`
	ComputedAt        time.Time      `json:"computed_at"`
}

// NewAdmissionPlanCache creates a cache for column-generation admission
// results.
func NewAdmissionPlanCache(cache Cache, defaultTTL time.Duration) *AdmissionPlanCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &AdmissionPlanCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get fetches a cached admission result for the given network and flow set.
func (ac *AdmissionPlanCache) Get(ctx context.Context, network *domain.Network, flows []domain.Flow) (*CachedAdmissionResult, bool, error) {
	key := BuildAdmissionKey(NetworkHash(network), FlowSetHash(flows))

	data, err := ac.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedAdmissionResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Corrupted entry; drop it and report a cache miss.
		_ = ac.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set stores an admission result in the cache.
func (ac *AdmissionPlanCache) Set(ctx context.Context, network *domain.Network, flows []domain.Flow, result *CachedAdmissionResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ac.defaultTTL
	}

	key := BuildAdmissionKey(NetworkHash(network), FlowSetHash(flows))
	result.ComputedAt = time.Now()

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return ac.cache.Set(ctx, key, data, ttl)
}

// Invalidate removes any cached admission result for the given network,
// across every flow set it was computed against.
func (ac *AdmissionPlanCache) Invalidate(ctx context.Context, network *domain.Network) error {
	pattern := fmt.Sprintf("admission:%s:*", NetworkHash(network))
	_, err := ac.cache.DeleteByPattern(ctx, pattern)
	return err
}

// InvalidateAll removes every cached admission result.
func (ac *AdmissionPlanCache) InvalidateAll(ctx context.Context) (int64, error) {
	return ac.cache.DeleteByPattern(ctx, "admission:*")
}
