package main

import (
	"log"
	"os"
	"time"

	"github.com/address-cache/app/config"
	"github.com/address-cache/app/controllers"
	"github.com/address-cache/app/services"
	"github.com/address-cache/internal/normalizer"
	"github.com/address-cache/internal/tracker"
	"github.com/address-cache/routes"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	loadConfig()

	// 2. Init logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Address Cache Service")

	// 3. Load engine config (cache knobs)
	if err := config.Load(viper.GetString("engine.config_path")); err != nil {
		logger.Warn("Cannot read engine config, using defaults", zap.Error(err))
		config.Defaults()
	}

	// 4. Build engine components
	cacheStore, err := services.NewCacheStore(config.C.Cache.MaxSize, config.TTL(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache store", zap.Error(err))
	}

	addressNormalizer := normalizer.NewAddressNormalizer(logger)
	signatureTracker := tracker.NewSignatureTracker(logger)
	notificationHub := services.NewNotificationHub(logger)

	cacheService := services.NewAddressCacheService(
		cacheStore,
		addressNormalizer,
		signatureTracker,
		notificationHub,
		logger,
	)

	// 5. Periodic TTL sweep. Lazy expiry on reads is always correct on
	// its own; the ticker just keeps occupancy honest between reads.
	startCleanupWorker(cacheService, config.CleanupInterval(), logger)

	// 6. Controllers
	addressController := controllers.NewAddressController(cacheService, logger)

	// 7. Gin router
	router := gin.Default()

	// 8. Routes
	routes.SetupAllRoutes(router, addressController)

	// 9. Start server
	port := getEnv("APP_PORT", "8080")
	logger.Info("Address Cache Service starting", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// loadConfig loads host configuration from file and env vars
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("engine.config_path", "./config/engine.yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

// initLogger creates the structured logger
func initLogger() *zap.Logger {
	env := getEnv("APP_ENV", "development")

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}

	return logger
}

// startCleanupWorker drives the proactive TTL sweep on a fixed interval
func startCleanupWorker(cacheService services.IAddressCacheService, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			if removed := cacheService.CleanExpired(); removed > 0 {
				logger.Debug("cache cleanup sweep", zap.Int("removed", removed))
			}
		}
	}()
}

// getEnv reads an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
