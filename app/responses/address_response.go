package responses

import (
	"github.com/address-cache/app/models"
	"github.com/address-cache/app/services"
)

// ResolveAddressResponse response for a resolved payload
type ResolveAddressResponse struct {
	Address          *models.BrazilianStandardAddress `json:"address"`                // Normalized address
	DisplayName      string                           `json:"display_name,omitempty"` // Provider's display_name, when present
	ChangedLevels    []models.ChangeLevel             `json:"changed_levels"`         // Levels whose notifications fired
	ProcessingTimeMs int64                            `json:"processing_time_ms"`     // Time spent resolving
}

// ChangeDetailsResponse response for a change-details query
type ChangeDetailsResponse struct {
	Details *models.ChangeDetails `json:"details"` // Previous/current pair and change flag
}

// CacheStatsResponse response for a cache stats query
type CacheStatsResponse struct {
	Stats *services.CacheStats `json:"stats"` // Cache counters snapshot
}

// ErrorResponse generic error payload
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable code
	Message string `json:"message"` // Human-readable detail
}
