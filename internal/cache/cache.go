// Package cache memoizes planning results by a content-derived fingerprint
// of the canonical intent projection.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"

	"github.com/af-corp/atlas-planner/internal/types"
)

// canonicalProjection is the subset of intent fields that determine cache-key
// equivalence. Field order is fixed by the struct; preferences are sorted so
// tag order never changes the key.
type canonicalProjection struct {
	Destination string   `json:"destination"`
	DepartDate  string   `json:"depart_date"`
	Days        int      `json:"days"`
	Origin      string   `json:"origin"`
	Travelers   int      `json:"travelers"`
	Preferences []string `json:"preferences"`
	Currency    string   `json:"currency"`
}

// Fingerprint returns a stable 32-hex-char digest of the canonical intent
// projection. Identical projections always hash identically; a truncated
// SHA-256 is collision-resistant enough for a cache key.
func Fingerprint(ti types.TripIntent) string {
	proj := canonicalProjection{
		Destination: ti.Destination,
		Days:        ti.Days,
		Origin:      ti.Origin,
		Travelers:   ti.Travelers,
		Currency:    ti.Currency,
	}
	if ti.DepartDate != nil {
		proj.DepartDate = ti.DepartDate.Format(types.DateOnly)
	}
	if len(ti.Preferences) > 0 {
		proj.Preferences = append([]string(nil), ti.Preferences...)
		sort.Strings(proj.Preferences)
	}
	data, _ := json.Marshal(proj)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:32]
}

// ResultCache memoizes terminal planning results. At most one entry exists
// per fingerprint; no expiry.
type ResultCache interface {
	Get(ti types.TripIntent) *types.PlanningResult
	Put(ti types.TripIntent, result *types.PlanningResult)
	Clear()
}

// MemoryCache is a mutex-guarded in-process ResultCache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*types.PlanningResult
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]*types.PlanningResult)}
}

func (c *MemoryCache) Get(ti types.TripIntent) *types.PlanningResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[Fingerprint(ti)]
}

func (c *MemoryCache) Put(ti types.TripIntent, result *types.PlanningResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[Fingerprint(ti)] = result
}

// Clear empties the cache. Exists for test isolation.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*types.PlanningResult)
}
