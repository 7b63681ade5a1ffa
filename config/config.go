package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	Environment       string
	DBUrl             string
	SupabaseUrl       string
	SupabaseJWTSecret string
	// External skill platforms
	LeetCodeGraphQLURL    string
	HackerRankBaseURL     string
	PlatformHTTPTimeout   time.Duration
	CertificationSyncMode string // append | replace
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration (sync endpoint, per user)
	SyncRateLimit         int
	SyncRateWindowSeconds int
	// Observability
	MetricsEnabled bool
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production reads the real environment
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		// Strip trailing slash so the JWKS path never becomes .co//auth
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		// External skill platforms
		LeetCodeGraphQLURL:    getEnv("LEETCODE_GRAPHQL_URL", "https://leetcode.com/graphql"),
		HackerRankBaseURL:     strings.TrimRight(getEnv("HACKERRANK_BASE_URL", "https://www.hackerrank.com"), "/"),
		PlatformHTTPTimeout:   getEnvDuration("PLATFORM_HTTP_TIMEOUT", 10*time.Second),
		CertificationSyncMode: strings.ToLower(getEnv("CERTIFICATION_SYNC_MODE", "append")),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		SyncRateLimit:         getEnvInt("SYNC_RATE_LIMIT", 10),
		SyncRateWindowSeconds: getEnvInt("SYNC_RATE_WINDOW_SECONDS", 60),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
	}

	if cfg.CertificationSyncMode != "append" && cfg.CertificationSyncMode != "replace" {
		log.Printf("WARNING: unknown CERTIFICATION_SYNC_MODE %q, using append", cfg.CertificationSyncMode)
		cfg.CertificationSyncMode = "append"
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Using in-memory storage.")
	}

	if cfg.SupabaseJWTSecret == "" && cfg.SupabaseUrl == "" {
		log.Println("WARNING: neither SUPABASE_JWT_SECRET nor SUPABASE_URL set. Every request will be rejected.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// JWKSURL is the Supabase endpoint serving RS256 signing keys
func (c *Config) JWKSURL() string {
	if c.SupabaseUrl == "" {
		return ""
	}
	return c.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("15s") or a plain number of seconds
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
