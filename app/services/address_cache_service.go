package services

import (
	"sync/atomic"

	"github.com/address-cache/app/models"
	"github.com/address-cache/internal/normalizer"
	"github.com/address-cache/internal/tracker"
	"go.uber.org/zap"
)

// AddressCacheService facade orchestrating normalizer, cache store,
// signature tracker and notification hub for each incoming resolved
// payload. Calls are sequential; the in-flight flag only exists to turn
// callback re-entrancy into a typed error instead of corrupted state.
type AddressCacheService struct {
	store      *CacheStore
	normalizer *normalizer.AddressNormalizer
	tracker    *tracker.SignatureTracker
	hub        *NotificationHub
	logger     *zap.Logger

	inFlight atomic.Bool
}

// compile-time interface check
var _ IAddressCacheService = (*AddressCacheService)(nil)

// NewAddressCacheService creates the engine facade from its components
func NewAddressCacheService(
	store *CacheStore,
	addressNormalizer *normalizer.AddressNormalizer,
	signatureTracker *tracker.SignatureTracker,
	hub *NotificationHub,
	logger *zap.Logger,
) *AddressCacheService {
	return &AddressCacheService{
		store:      store,
		normalizer: addressNormalizer,
		tracker:    signatureTracker,
		hub:        hub,
		logger:     logger,
	}
}

// GetOrCompute resolves a raw provider payload to its normalized
// address. On a cache hit the cached value is reused and normalization
// skipped, but change detection still runs: a different input can map
// to an address identical to the current one, and that no-op outcome is
// suppressed by signature dedup, not by short-circuiting on the hit.
func (acs *AddressCacheService) GetOrCompute(payload models.RawAddressPayload) (*models.BrazilianStandardAddress, error) {
	if !acs.inFlight.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer acs.inFlight.Store(false)

	key := acs.store.GenerateKey(payload)

	value, hit := acs.store.Get(key)
	if !hit {
		value = acs.normalizer.Normalize(payload)
		acs.store.Set(key, value, payload)
	}

	acs.tracker.Update(value)

	changed := make([]models.ChangeLevel, 0, len(models.AllLevels))
	for _, level := range models.AllLevels {
		if !acs.tracker.HasChangedAt(level) || !acs.tracker.ShouldNotify(level) {
			continue
		}
		details := acs.tracker.GetChangeDetails(level)
		acs.hub.Dispatch(level, details)
		acs.tracker.MarkNotified(level)
		changed = append(changed, level)
	}

	acs.hub.Broadcast(value, changed)

	acs.logger.Debug("processed address payload",
		zap.String("key", key),
		zap.Bool("cache_hit", hit),
		zap.Int("changed_levels", len(changed)))

	return value, nil
}

// RegisterCallback binds fn to the level's change event
func (acs *AddressCacheService) RegisterCallback(level models.ChangeLevel, fn models.ChangeCallback) (string, error) {
	return acs.hub.RegisterCallback(level, fn)
}

// UnregisterCallback removes a callback by id
func (acs *AddressCacheService) UnregisterCallback(level models.ChangeLevel, id string) bool {
	return acs.hub.UnregisterCallback(level, id)
}

// Subscribe registers a generic observer
func (acs *AddressCacheService) Subscribe(observer models.AddressObserver) {
	acs.hub.Subscribe(observer)
}

// Unsubscribe removes a generic observer
func (acs *AddressCacheService) Unsubscribe(observer models.AddressObserver) {
	acs.hub.Unsubscribe(observer)
}

// HasChangedAt pure query, no side effects
func (acs *AddressCacheService) HasChangedAt(level models.ChangeLevel) bool {
	return acs.tracker.HasChangedAt(level)
}

// GetChangeDetails pure query, no side effects
func (acs *AddressCacheService) GetChangeDetails(level models.ChangeLevel) *models.ChangeDetails {
	return acs.tracker.GetChangeDetails(level)
}

// CleanExpired sweeps expired cache entries, returning the count removed
func (acs *AddressCacheService) CleanExpired() int {
	return acs.store.CleanExpired()
}

// ClearCache resets cache, tracker and counters. Reset hook for tests
// and for hosts that must drop state on demand.
func (acs *AddressCacheService) ClearCache() {
	acs.store.Purge()
	acs.tracker.Reset()
	acs.logger.Info("cleared address cache and change-tracking state")
}

// Stats returns the cache counters snapshot
func (acs *AddressCacheService) Stats() *CacheStats {
	return acs.store.Stats()
}
