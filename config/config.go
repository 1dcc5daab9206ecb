package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration
	RedisAddr             string
	RedisDB               int
	ReviewStream          string
	ReviewStreamMaxLength int
	ReviewEnabled         bool

	// Memcache configuration
	MemcacheAddr string

	// Scraper configuration
	ScrapeTimeout time.Duration
	RenderTimeout time.Duration
	RenderEnabled bool
	BlockTime     time.Duration

	// Orchestrator configuration
	RefreshBatchSize     int
	MaxConcurrentScrapes int
	MaxResultsPerQuery   int

	// Worker intervals
	RefreshInterval time.Duration
	SweepInterval   time.Duration
	IngestInterval  time.Duration

	// Stores enabled for new-listing ingestion
	StoreKeys []string

	// Marketplace search API configuration
	EbaySearchURL string
	EbayAPIToken  string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	reviewMaxLen, _ := strconv.Atoi(getEnv("REVIEW_STREAM_MAX_LENGTH", "500"))
	scrapeTimeout, _ := strconv.Atoi(getEnv("SCRAPE_TIMEOUT_SECONDS", "10"))
	renderTimeout, _ := strconv.Atoi(getEnv("RENDER_TIMEOUT_SECONDS", "30"))
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_TIME_SECONDS", "300"))
	batchSize, _ := strconv.Atoi(getEnv("REFRESH_BATCH_SIZE", "50"))
	maxConcurrent, _ := strconv.Atoi(getEnv("MAX_CONCURRENT_SCRAPES", "1"))
	maxResults, _ := strconv.Atoi(getEnv("MAX_RESULTS_PER_QUERY", "5"))
	refreshInterval, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_SECONDS", "900"))
	sweepInterval, _ := strconv.Atoi(getEnv("SWEEP_INTERVAL_SECONDS", "3600"))
	ingestInterval, _ := strconv.Atoi(getEnv("INGEST_INTERVAL_SECONDS", "3600"))

	return Config{
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:               redisDB,
		ReviewStream:          getEnv("REVIEW_STREAM", "review"),
		ReviewStreamMaxLength: reviewMaxLen,
		ReviewEnabled:         getEnv("REVIEW_ENABLED", "false") == "true",
		MemcacheAddr:          getEnv("MEMCACHE_ADDR", "localhost:11211"),
		ScrapeTimeout:         time.Duration(scrapeTimeout) * time.Second,
		RenderTimeout:         time.Duration(renderTimeout) * time.Second,
		RenderEnabled:         getEnv("RENDER_ENABLED", "false") == "true",
		BlockTime:             time.Duration(blockTime) * time.Second,
		RefreshBatchSize:      batchSize,
		MaxConcurrentScrapes:  maxConcurrent,
		MaxResultsPerQuery:    maxResults,
		RefreshInterval:       time.Duration(refreshInterval) * time.Second,
		SweepInterval:         time.Duration(sweepInterval) * time.Second,
		IngestInterval:        time.Duration(ingestInterval) * time.Second,
		StoreKeys:             splitKeys(getEnv("STORE_KEYS", "ebay")),
		EbaySearchURL:         getEnv("EBAY_SEARCH_URL", "https://api.ebay.com/buy/browse/v1/item_summary/search"),
		EbayAPIToken:          getEnv("EBAY_API_TOKEN", ""),
		Environment:           getEnv("DEALWATCHER_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.RefreshBatchSize <= 0 {
		return fmt.Errorf("refresh batch size must be positive, got %d", c.RefreshBatchSize)
	}
	if c.MaxConcurrentScrapes <= 0 {
		return fmt.Errorf("max concurrent scrapes must be positive, got %d", c.MaxConcurrentScrapes)
	}
	if c.MaxResultsPerQuery <= 0 {
		return fmt.Errorf("max results per query must be positive, got %d", c.MaxResultsPerQuery)
	}
	if c.ScrapeTimeout <= 0 {
		return fmt.Errorf("scrape timeout must be positive, got %v", c.ScrapeTimeout)
	}
	if len(c.StoreKeys) == 0 {
		return fmt.Errorf("at least one store key is required")
	}
	return nil
}

// splitKeys splits a comma-separated list, dropping blank entries
func splitKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
