package services

import (
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/address-cache/app/models"
	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"
)

// Cache defaults
const (
	DefaultMaxSize = 50              // Maximum entries held at once
	DefaultTTL     = 5 * time.Minute // Entry lifetime from creation
)

// evictionFraction share of entries dropped in one LRU batch eviction
const evictionFraction = 0.25

// CacheStore bounded key -> address store with LRU batch eviction and
// TTL expiry. Expiry is lazy on Get and always correct on its own;
// CleanExpired exists for hosts that want a proactive sweep.
type CacheStore struct {
	mu      sync.Mutex
	entries *lru.LRU[string, *models.CacheEntry]
	maxSize int
	ttl     time.Duration
	clock   clock.Clock
	logger  *zap.Logger

	// Metrics
	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}

// NewCacheStore creates a CacheStore with the given bounds
func NewCacheStore(maxSize int, ttl time.Duration, logger *zap.Logger) (*CacheStore, error) {
	return newCacheStoreWithClock(maxSize, ttl, clock.New(), logger)
}

// newCacheStoreWithClock lets tests drive TTL expiry with a mock clock
func newCacheStoreWithClock(maxSize int, ttl time.Duration, clk clock.Clock, logger *zap.Logger) (*CacheStore, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("cache max size must be positive, got %d", maxSize)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %v", ttl)
	}

	entries, err := lru.NewLRU[string, *models.CacheEntry](maxSize, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create LRU store: %w", err)
	}

	return &CacheStore{
		entries: entries,
		maxSize: maxSize,
		ttl:     ttl,
		clock:   clk,
		logger:  logger,
	}, nil
}

// Get returns the cached value for the key. A hit refreshes recency and
// touches last-accessed; an expired entry is purged and reported as a miss.
func (cs *CacheStore) Get(key string) (*models.BrazilianStandardAddress, bool) {
	if key == "" {
		return nil, false
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	entry, found := cs.entries.Get(key)
	if !found {
		cs.misses++
		return nil, false
	}

	now := cs.clock.Now()
	if entry.ExpiredAt(now, cs.ttl) {
		cs.entries.Remove(key)
		cs.expirations++
		cs.misses++
		cs.logger.Debug("cache entry expired on read", zap.String("key", key))
		return nil, false
	}

	entry.LastAccessedAt = now
	entry.AccessCount++
	cs.hits++
	return entry.Value, true
}

// Set inserts the value under the key. At capacity it first evicts a
// batch of least-recently-used entries so eviction cost is amortized
// across many insertions. A sentinel (empty) key is a logged no-op.
func (cs *CacheStore) Set(key string, value *models.BrazilianStandardAddress, raw models.RawAddressPayload) {
	if key == "" {
		cs.logger.Warn("ignoring cache set with sentinel key")
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.entries.Contains(key) && cs.entries.Len() >= cs.maxSize {
		cs.evictBatch()
	}

	cs.entries.Add(key, models.NewCacheEntry(key, value, raw, cs.clock.Now()))
}

// evictBatch removes the least-recently-used batch. Batch size is
// ceil(maxSize * fraction) with a floor of one so small caches still
// make room. Caller holds the lock.
func (cs *CacheStore) evictBatch() {
	count := int(math.Ceil(float64(cs.maxSize) * evictionFraction))
	if count < 1 {
		count = 1
	}

	removed := 0
	for i := 0; i < count; i++ {
		if _, _, ok := cs.entries.RemoveOldest(); !ok {
			break
		}
		removed++
	}
	cs.evictions += int64(removed)

	cs.logger.Debug("evicted LRU batch",
		zap.Int("removed", removed),
		zap.Int("remaining", cs.entries.Len()))
}

// CleanExpired removes every entry past its TTL and returns how many
// were dropped. Safe to call at any frequency, including never.
func (cs *CacheStore) CleanExpired() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.clock.Now()
	removed := 0
	for _, key := range cs.entries.Keys() {
		entry, found := cs.entries.Peek(key)
		if !found {
			continue
		}
		if entry.ExpiredAt(now, cs.ttl) {
			cs.entries.Remove(key)
			removed++
		}
	}
	cs.expirations += int64(removed)

	if removed > 0 {
		cs.logger.Debug("cleaned expired cache entries", zap.Int("removed", removed))
	}
	return removed
}

// Purge drops every entry and resets the metrics
func (cs *CacheStore) Purge() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.entries.Purge()
	cs.hits = 0
	cs.misses = 0
	cs.evictions = 0
	cs.expirations = 0
}

// Len returns the current occupancy
func (cs *CacheStore) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.entries.Len()
}

// Contains reports whether the key is present, without refreshing recency
func (cs *CacheStore) Contains(key string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.entries.Contains(key)
}

// Stats returns a snapshot of the hit/miss counters
func (cs *CacheStore) Stats() *CacheStats {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	total := cs.hits + cs.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(cs.hits) / float64(total)
	}

	return &CacheStats{
		HitRate:     hitRate,
		TotalHits:   cs.hits,
		TotalMiss:   cs.misses,
		TotalItems:  int64(cs.entries.Len()),
		Evictions:   cs.evictions,
		Expirations: cs.expirations,
	}
}

// GenerateKey derives the deterministic cache key for a payload.
// Identical logical queries yield the identical key regardless of field
// ordering: the address fields are serialized in sorted key order
// before hashing. An empty or malformed payload yields the sentinel "".
func (cs *CacheStore) GenerateKey(payload models.RawAddressPayload) string {
	return GenerateCacheKey(payload)
}

// GenerateCacheKey pure key derivation, see CacheStore.GenerateKey
func GenerateCacheKey(payload models.RawAddressPayload) string {
	addr, ok := payload.Address()
	if !ok {
		return ""
	}

	keys := make([]string, 0, len(addr))
	for k := range addr {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		fmt.Fprintf(&b, "%v", addr[k])
		b.WriteByte(';')
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("sha256:%x", hash)
}
