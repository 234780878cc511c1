package api

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	RedisAddr         string
	OrderAPIBaseURL   string
	CatalogAPIBaseURL string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	DraftIdleTTL      time.Duration
	LookupDebounce    time.Duration
	LookupMinChars    int
	LookupLimit       int
	SubmitTimeout     time.Duration
	SnapshotCacheTTL  time.Duration
	StockFeedChannel  string
}

// LoadConfig reads environment variables (seeded from a .env file when present),
// applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		OrderAPIBaseURL:   strings.TrimSpace(os.Getenv("ORDER_API_BASE_URL")),
		CatalogAPIBaseURL: strings.TrimSpace(os.Getenv("CATALOG_API_BASE_URL")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		StockFeedChannel:  envDefault("STOCK_FEED_CHANNEL", "stock_changed"),
	}
	if cfg.CatalogAPIBaseURL == "" {
		cfg.CatalogAPIBaseURL = cfg.OrderAPIBaseURL
	}
	for key, raw := range map[string]string{"ORDER_API_BASE_URL": cfg.OrderAPIBaseURL, "CATALOG_API_BASE_URL": cfg.CatalogAPIBaseURL} {
		if raw == "" {
			continue
		}
		if u, err := url.ParseRequestURI(raw); err != nil || u.Host == "" {
			return Config{}, fmt.Errorf("%s must be an absolute URL", key)
		}
	}

	idleMinutes, err := intFromEnv("DRAFT_IDLE_TTL_MINUTES", 30, 1)
	if err != nil {
		return Config{}, err
	}
	debounceMillis, err := intFromEnv("LOOKUP_DEBOUNCE_MS", 300, 0)
	if err != nil {
		return Config{}, err
	}
	if cfg.LookupMinChars, err = intFromEnv("LOOKUP_MIN_CHARS", 2, 0); err != nil {
		return Config{}, err
	}
	if cfg.LookupLimit, err = intFromEnv("LOOKUP_LIMIT", 10, 1); err != nil {
		return Config{}, err
	}
	submitSeconds, err := intFromEnv("SUBMIT_TIMEOUT_SECONDS", 30, 1)
	if err != nil {
		return Config{}, err
	}
	cacheSeconds, err := intFromEnv("SNAPSHOT_CACHE_TTL_SECONDS", 30, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.DraftIdleTTL = time.Duration(idleMinutes) * time.Minute
	cfg.LookupDebounce = time.Duration(debounceMillis) * time.Millisecond
	cfg.SubmitTimeout = time.Duration(submitSeconds) * time.Second
	cfg.SnapshotCacheTTL = time.Duration(cacheSeconds) * time.Second
	return cfg, nil
}

// intFromEnv parses key as an integer of at least min, or returns fallback when unset.
func intFromEnv(key string, fallback, min int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min {
		return 0, fmt.Errorf("%s must be an integer >= %d", key, min)
	}
	return value, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
