package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// CatalogCacheConfig controls caching of template lists in Redis.  Entries
// are keyed by catalog version, so TTL only bounds memory use; writes never
// leave a stale list behind.
type CatalogCacheConfig struct {
	Enabled bool          `env:"CATALOG_CACHE_ENABLED" envDefault:"true"`
	TTL     time.Duration `env:"CATALOG_CACHE_TTL"     envDefault:"10m"`
	Prefix  string        `env:"CATALOG_CACHE_PREFIX"  envDefault:"catalog"`
}

// LoadCatalogCacheConfig parses CATALOG_CACHE_*.
func LoadCatalogCacheConfig() CatalogCacheConfig {
	var c CatalogCacheConfig
	if err := env.Parse(&c); err != nil {
		return CatalogCacheConfig{Enabled: false}
	}
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	if c.Prefix == "" {
		c.Prefix = "catalog"
	}
	return c
}
