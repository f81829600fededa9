package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheCfg cache store knobs
type CacheCfg struct {
	MaxSize            int `yaml:"max_size" json:"max_size"`
	TTLMs              int `yaml:"ttl_ms" json:"ttl_ms"`
	CleanupIntervalSec int `yaml:"cleanup_interval_sec" json:"cleanup_interval_sec"`
}

// EngineCfg engine configuration
type EngineCfg struct {
	Cache CacheCfg `yaml:"cache" json:"cache"`
}

var C EngineCfg

// Defaults installs the documented default knobs
func Defaults() {
	C = EngineCfg{
		Cache: CacheCfg{
			MaxSize:            50,
			TTLMs:              300000,
			CleanupIntervalSec: 60,
		},
	}
}

// Load reads the engine config file over the defaults, then applies
// ENV overrides
func Load(path string) error {
	Defaults()

	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return err
	}

	// ENV overrides
	if v, ok := envInt("CACHE_MAX_SIZE"); ok {
		C.Cache.MaxSize = v
	}
	if v, ok := envInt("CACHE_TTL_MS"); ok {
		C.Cache.TTLMs = v
	}
	if v, ok := envInt("CACHE_CLEANUP_INTERVAL_SEC"); ok {
		C.Cache.CleanupIntervalSec = v
	}
	return nil
}

// envInt reads an integer environment variable
func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// TTL cache entry lifetime as a duration
func TTL() time.Duration {
	return time.Duration(C.Cache.TTLMs) * time.Millisecond
}

// CleanupInterval proactive sweep period as a duration
func CleanupInterval() time.Duration {
	return time.Duration(C.Cache.CleanupIntervalSec) * time.Second
}
