package services

import (
	"github.com/address-cache/app/models"
)

// CacheStats cache counters snapshot
type CacheStats struct {
	HitRate     float64 `json:"hit_rate"`    // Hits over total reads
	TotalHits   int64   `json:"total_hits"`  // Reads served from cache
	TotalMiss   int64   `json:"total_miss"`  // Reads that missed or expired
	TotalItems  int64   `json:"total_items"` // Current occupancy
	Evictions   int64   `json:"evictions"`   // Entries dropped by LRU batches
	Expirations int64   `json:"expirations"` // Entries dropped by TTL
}

// IAddressCacheService the surface the engine exposes to its consumers
type IAddressCacheService interface {
	// GetOrCompute resolves a raw provider payload to a normalized
	// address, caching the result and dispatching change notifications.
	// Callbacks must not call back into GetOrCompute; doing so returns
	// ErrReentrantCall.
	GetOrCompute(payload models.RawAddressPayload) (*models.BrazilianStandardAddress, error)

	// RegisterCallback binds fn to the level's change event and returns
	// an id for later unregistration
	RegisterCallback(level models.ChangeLevel, fn models.ChangeCallback) (string, error)

	// UnregisterCallback removes a callback by id, reporting whether it existed
	UnregisterCallback(level models.ChangeLevel, id string) bool

	// Subscribe registers an observer for every processed update
	Subscribe(observer models.AddressObserver)

	// Unsubscribe removes a previously subscribed observer
	Unsubscribe(observer models.AddressObserver)

	// HasChangedAt pure query for the level's change flag
	HasChangedAt(level models.ChangeLevel) bool

	// GetChangeDetails pure query for the level's previous/current pair
	GetChangeDetails(level models.ChangeLevel) *models.ChangeDetails

	// CleanExpired proactively sweeps expired entries, returning the count
	CleanExpired() int

	// ClearCache resets cache, tracker and counters
	ClearCache()

	// Stats returns the cache counters snapshot
	Stats() *CacheStats
}
