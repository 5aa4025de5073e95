// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Genre data
	GenresDataPath  string // empty means the embedded taxonomy and seed corpus
	SummaryMinWords int
	SummaryMaxWords int

	// RSS settings
	FeedsConfigPath string
	MaxNewsLimit    int
	NewsMaxAge      time.Duration

	// Scraper settings
	ScrapeConcurrency int // parallel fetches for full article extraction
	ScrapeMaxArticles int // cap of articles to extract per run
	ScrapeMaxPerHost  int
	BodyCacheTTL      time.Duration

	// App settings
	Debug          bool
	LogFormat      string // "text" or "json"
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	IngestSchedule string // cron expression, empty runs once
	OutputFormat   string // digest on stdout: "json" lines or "text"

	// HTTP settings
	EnableHTTP bool
	HTTPAddr   string

	// Storage settings
	ResultsFilePath string
	DatabaseURL     string // Postgres DSN; when set it replaces the file store
	ResultTTLHours  int
}

func Load() (*Config, error) {
	cfg := &Config{
		FeedsConfigPath:   getEnvOrDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml"),
		GenresDataPath:    os.Getenv("GENRES_DATA_PATH"),
		SummaryMinWords:   getEnvIntOrDefault("SUMMARY_MIN_WORDS", 40),
		SummaryMaxWords:   getEnvIntOrDefault("SUMMARY_MAX_WORDS", 50),
		MaxNewsLimit:      getEnvIntOrDefault("MAX_NEWS_LIMIT", 20),
		NewsMaxAge:        time.Duration(getEnvIntOrDefault("NEWS_MAX_AGE_HOURS", 24)) * time.Hour,
		ScrapeConcurrency: getEnvIntOrDefault("SCRAPE_CONCURRENCY", 4),
		ScrapeMaxArticles: getEnvIntOrDefault("SCRAPE_MAX_ARTICLES", 10),
		ScrapeMaxPerHost:  getEnvIntOrDefault("SCRAPE_MAX_PER_HOST", 5),
		BodyCacheTTL:      getEnvDurationOrDefault("BODY_CACHE_TTL", 6*time.Hour),
		RequestTimeout:    getEnvDurationOrDefault("REQUEST_TIMEOUT", 15*time.Second),
		RetryAttempts:     getEnvIntOrDefault("RETRY_ATTEMPTS", 3),
		RetryDelay:        getEnvDurationOrDefault("RETRY_DELAY", 2*time.Second),
		IngestSchedule:    strings.TrimSpace(os.Getenv("INGEST_SCHEDULE")),
		HTTPAddr:          getEnvOrDefault("HTTP_ADDR", ":8080"),
		ResultsFilePath:   getEnvOrDefault("RESULTS_FILE_PATH", "processed_news.json"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ResultTTLHours:    getEnvIntOrDefault("RESULT_TTL_HOURS", 72),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "text"),
		OutputFormat:      getEnvOrDefault("OUTPUT_FORMAT", "json"),
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}
	if v := os.Getenv("ENABLE_HTTP"); v == "true" || v == "1" {
		cfg.EnableHTTP = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SummaryMinWords <= 0 {
		return fmt.Errorf("SUMMARY_MIN_WORDS must be positive")
	}
	if c.SummaryMaxWords < c.SummaryMinWords {
		return fmt.Errorf("SUMMARY_MAX_WORDS must be >= SUMMARY_MIN_WORDS")
	}
	if c.MaxNewsLimit <= 0 {
		return fmt.Errorf("MAX_NEWS_LIMIT must be positive")
	}
	if c.ScrapeConcurrency <= 0 {
		return fmt.Errorf("SCRAPE_CONCURRENCY must be positive")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json'")
	}
	if c.OutputFormat != "json" && c.OutputFormat != "text" {
		return fmt.Errorf("OUTPUT_FORMAT must be 'json' or 'text'")
	}
	if c.EnableHTTP && c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required when ENABLE_HTTP is set")
	}
	return nil
}
