package controllers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/address-cache/app/models"
	"github.com/address-cache/app/requests"
	"github.com/address-cache/app/responses"
	"github.com/address-cache/app/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AddressController HTTP surface over the address cache engine
type AddressController struct {
	cacheService services.IAddressCacheService
	logger       *zap.Logger

	// Serializes resolution so concurrent HTTP clients queue instead of
	// tripping the engine's reentrancy guard, and guards lastChanged:
	// the levels fired by the resolution it covers, recorded through the
	// hub's generic observer path.
	resolveMu   sync.Mutex
	lastChanged []models.ChangeLevel
}

// NewAddressController creates the controller and subscribes it to
// every engine update so responses can report which levels fired
func NewAddressController(cacheService services.IAddressCacheService, logger *zap.Logger) *AddressController {
	ac := &AddressController{
		cacheService: cacheService,
		logger:       logger,
	}
	cacheService.Subscribe(ac)
	return ac
}

// OnAddressUpdate implements models.AddressObserver. The engine calls
// it synchronously inside GetOrCompute, so it always runs with
// resolveMu held by the request being resolved.
func (ac *AddressController) OnAddressUpdate(_ *models.BrazilianStandardAddress, changedLevels []models.ChangeLevel) {
	ac.lastChanged = changedLevels
}

// ResolveAddress resolves one raw provider payload
func (ac *AddressController) ResolveAddress(c *gin.Context) {
	var req requests.ResolveAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	startTime := time.Now()

	ac.resolveMu.Lock()
	address, err := ac.cacheService.GetOrCompute(req.Payload)
	changed := ac.lastChanged
	ac.resolveMu.Unlock()

	if err != nil {
		if errors.Is(err, services.ErrReentrantCall) {
			c.JSON(http.StatusConflict, responses.ErrorResponse{
				Error:   "RESOLUTION_IN_PROGRESS",
				Message: err.Error(),
			})
			return
		}
		ac.logger.Error("failed to resolve payload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "RESOLUTION_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.ResolveAddressResponse{
		Address:          address,
		DisplayName:      req.Payload.DisplayName(),
		ChangedLevels:    changed,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// GetChangeDetails returns the previous/current pair for one level
func (ac *AddressController) GetChangeDetails(c *gin.Context) {
	level := models.ChangeLevel(c.Param("level"))
	if !level.IsValid() {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_LEVEL",
			Message: "unknown change-detection level: " + string(level),
		})
		return
	}

	c.JSON(http.StatusOK, responses.ChangeDetailsResponse{
		Details: ac.cacheService.GetChangeDetails(level),
	})
}

// GetCacheStats returns the cache counters snapshot
func (ac *AddressController) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, responses.CacheStatsResponse{
		Stats: ac.cacheService.Stats(),
	})
}

// ClearCache resets cache and change-tracking state
func (ac *AddressController) ClearCache(c *gin.Context) {
	ac.cacheService.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// CleanupCache sweeps expired entries on demand
func (ac *AddressController) CleanupCache(c *gin.Context) {
	removed := ac.cacheService.CleanExpired()
	c.JSON(http.StatusOK, gin.H{"status": "cleaned", "removed": removed})
}

// HealthCheck liveness endpoint
func (ac *AddressController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
