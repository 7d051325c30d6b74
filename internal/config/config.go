package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxBodyBytes caps request bodies when MAX_BODY_BYTES is unset.
const DefaultMaxBodyBytes = 64 << 20

// Event store backends.
const (
	EventStorePostgres   = "postgres"
	EventStoreClickHouse = "clickhouse"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	HTTPPort          string
	DatabaseURL       string
	AppMode           string
	FiberPrefork      bool
	MaxBodyBytes      int
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnLifetime time.Duration
	DBMaxConnIdleTime time.Duration

	// UpstreamURL is the analysis service base address. It may be empty;
	// the audit endpoints report the gap per request.
	UpstreamURL string

	JWTSecret      string
	JWTAudience    string
	AuthCookieName string

	FreeTrialTerms    int64
	MonthlyTermsQuota int64

	EventStore         string
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string

	WorkerBufferSize int
	WorkerBatchSize  int
	WorkerFlushEvery time.Duration
}

// Load reads configuration from the environment. DATABASE_URL and
// SUPABASE_JWT_SECRET are required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", ":8080"),
		AppMode:           strings.ToLower(getEnv("APP_MODE", "dev")),
		FiberPrefork:      envOr("FIBER_PREFORK", false, strconv.ParseBool),
		MaxBodyBytes:      envOr("MAX_BODY_BYTES", DefaultMaxBodyBytes, strconv.Atoi),
		DBMaxConns:        envOr("DB_MAX_CONNS", int32(20), parseInt32),
		DBMinConns:        envOr("DB_MIN_CONNS", int32(2), parseInt32),
		DBMaxConnLifetime: envOr("DB_MAX_CONN_LIFETIME", 30*time.Minute, time.ParseDuration),
		DBMaxConnIdleTime: envOr("DB_MAX_CONN_IDLE_TIME", 5*time.Minute, time.ParseDuration),

		UpstreamURL: strings.TrimRight(strings.TrimSpace(os.Getenv("TERMTIDY_API_URL")), "/"),

		JWTSecret:      os.Getenv("SUPABASE_JWT_SECRET"),
		JWTAudience:    getEnv("SUPABASE_JWT_AUDIENCE", "authenticated"),
		AuthCookieName: getEnv("AUTH_COOKIE_NAME", "sb-access-token"),

		FreeTrialTerms:    envOr("FREE_TRIAL_TERMS", int64(20000), parseTerms),
		MonthlyTermsQuota: envOr("MONTHLY_TERMS_QUOTA", int64(20000), parseTerms),

		EventStore:         strings.ToLower(getEnv("EVENT_STORE", EventStorePostgres)),
		ClickHouseAddr:     os.Getenv("CLICKHOUSE_ADDR"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "default"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: os.Getenv("CLICKHOUSE_PASSWORD"),

		WorkerBufferSize: envOr("EVENT_WORKER_BUFFER", 256, strconv.Atoi),
		WorkerBatchSize:  envOr("EVENT_WORKER_BATCH", 50, strconv.Atoi),
		WorkerFlushEvery: envOr("EVENT_WORKER_FLUSH_EVERY", 2*time.Second, time.ParseDuration),
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}

	switch cfg.EventStore {
	case EventStorePostgres:
	case EventStoreClickHouse:
		if cfg.ClickHouseAddr == "" {
			return nil, fmt.Errorf("CLICKHOUSE_ADDR is required when EVENT_STORE=clickhouse")
		}
	default:
		return nil, fmt.Errorf("unsupported EVENT_STORE: %s", cfg.EventStore)
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.WorkerBatchSize <= 0 {
		cfg.WorkerBatchSize = 1
	}
	if cfg.WorkerFlushEvery <= 0 {
		cfg.WorkerFlushEvery = 2 * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// envOr parses key with parse and falls back on absence or a parse error.
func envOr[T any](key string, fallback T, parse func(string) (T, error)) T {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := parse(val)
	if err != nil {
		return fallback
	}
	return parsed
}

var errNegative = errors.New("negative value")

func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	return int32(n), err
}

// parseTerms reads a non-negative term count.
func parseTerms(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil && n < 0 {
		return 0, errNegative
	}
	return n, err
}
