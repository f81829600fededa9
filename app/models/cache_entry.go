package models

import (
	"time"
)

// CacheEntry cached normalization result with access bookkeeping
type CacheEntry struct {
	Key            string                    `json:"key"`              // Deterministic cache key
	Value          *BrazilianStandardAddress `json:"value"`            // Normalized address
	RawPayload     RawAddressPayload         `json:"raw_payload"`      // Provider payload that produced the value
	CreatedAt      time.Time                 `json:"created_at"`       // Insertion time, drives TTL expiry
	LastAccessedAt time.Time                 `json:"last_accessed_at"` // Touched on every hit
	AccessCount    int                       `json:"access_count"`     // Number of hits
}

// NewCacheEntry creates a cache entry stamped at now
func NewCacheEntry(key string, value *BrazilianStandardAddress, raw RawAddressPayload, now time.Time) *CacheEntry {
	return &CacheEntry{
		Key:            key,
		Value:          value,
		RawPayload:     raw,
		CreatedAt:      now,
		LastAccessedAt: now,
		AccessCount:    0,
	}
}

// ExpiredAt reports whether the entry is past its TTL at the given instant
func (e *CacheEntry) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) > ttl
}
