// Package config holds the process-wide configuration resolved from the
// config file, environment and CLI flags via viper.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// GoogleBooksAPIKey is the optional API key for the primary provider.
	GoogleBooksAPIKey string
	// EnrichmentEnabled toggles the secondary enrichment pass.
	EnrichmentEnabled bool
	// EnrichmentBatchLimit bounds enrichment attempts per aggregated result.
	EnrichmentBatchLimit int
	// EnrichmentPace is the delay between successive enrichment calls.
	EnrichmentPace time.Duration
	// CacheSweepInterval is how often the background sweep runs.
	CacheSweepInterval time.Duration
)

// InitConfig initializes the global configuration from viper.
func InitConfig() {
	viper.SetDefault("enrichment.enabled", true)
	viper.SetDefault("enrichment.batchlimit", 12)
	viper.SetDefault("enrichment.pace", "150ms")
	viper.SetDefault("cache.sweepinterval", "1m")

	GoogleBooksAPIKey = viper.GetString("googlebooks.apikey")
	EnrichmentEnabled = viper.GetBool("enrichment.enabled")
	EnrichmentBatchLimit = viper.GetInt("enrichment.batchlimit")
	EnrichmentPace = parseDuration(viper.GetString("enrichment.pace"), 150*time.Millisecond)
	CacheSweepInterval = parseDuration(viper.GetString("cache.sweepinterval"), time.Minute)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
