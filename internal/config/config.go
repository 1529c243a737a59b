package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Notification NotificationConfig
	Lookup       LookupConfig
	Tickets      TicketsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Format      string
	Development bool
}

// NotificationConfig holds stub notification endpoints and the toast feed size.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
	FeedSize   int
}

// Lookup sources.
const (
	LookupSourceMemory   = "memory"
	LookupSourcePostgres = "postgres"
)

// LookupConfig configures the order lookup collaborator.
type LookupConfig struct {
	Source          string
	SeedFile        string
	TimeoutMillis   int
	CacheTTLSeconds int
}

// TicketsConfig tunes the ticket dialogs.
type TicketsConfig struct {
	SubmitLatencyMillis int
	MaxAttachmentBytes  int64
	DefaultCreatedBy    string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "shipment-support"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "json"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			FeedSize:   getEnvAsInt("NOTIFY_FEED_SIZE", 50),
		},
		Lookup: LookupConfig{
			Source:          getEnv("LOOKUP_SOURCE", LookupSourceMemory),
			SeedFile:        getEnv("LOOKUP_SEED_FILE", "testdata/orders.yaml"),
			TimeoutMillis:   getEnvAsInt("LOOKUP_TIMEOUT_MS", 5000),
			CacheTTLSeconds: getEnvAsInt("LOOKUP_CACHE_TTL_SECONDS", 300),
		},
		Tickets: TicketsConfig{
			SubmitLatencyMillis: getEnvAsInt("TICKETS_SUBMIT_LATENCY_MS", 500),
			MaxAttachmentBytes:  int64(getEnvAsInt("TICKETS_MAX_ATTACHMENT_BYTES", 5*1024*1024)),
			DefaultCreatedBy:    getEnv("TICKETS_DEFAULT_CREATED_BY", "Support Agent"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BindFlags registers command-line overrides on fs. Flag defaults are the
// values already loaded, so unset flags change nothing.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.App.Host, "host", c.App.Host, "HTTP bind host")
	fs.StringVar(&c.App.Port, "port", c.App.Port, "HTTP bind port")
	fs.StringVar(&c.Lookup.Source, "lookup-source", c.Lookup.Source, "order lookup source: memory or postgres")
	fs.StringVar(&c.Lookup.SeedFile, "orders-seed", c.Lookup.SeedFile, "YAML order fixture for the memory lookup source")
	fs.StringVar(&c.Postgres.MigrationsDir, "migrations-dir", c.Postgres.MigrationsDir, "directory of SQL migrations")
	fs.StringVar(&c.Logger.Level, "log-level", c.Logger.Level, "log level")
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	if c.Lookup.Source != LookupSourceMemory && c.Lookup.Source != LookupSourcePostgres {
		return fmt.Errorf("invalid LOOKUP_SOURCE: %q", c.Lookup.Source)
	}
	if c.Lookup.Source == LookupSourcePostgres && c.Postgres.DSN == "" {
		return fmt.Errorf("LOOKUP_SOURCE %q requires POSTGRES_DSN", c.Lookup.Source)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds a single order lookup. Zero means no bound.
func (l LookupConfig) Timeout() time.Duration {
	if l.TimeoutMillis <= 0 {
		return 0
	}
	return time.Duration(l.TimeoutMillis) * time.Millisecond
}

// CacheTTL returns how long cached orders stay valid.
func (l LookupConfig) CacheTTL() time.Duration {
	if l.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(l.CacheTTLSeconds) * time.Second
}

// SubmitLatency returns the simulated ticket submission delay.
func (t TicketsConfig) SubmitLatency() time.Duration {
	if t.SubmitLatencyMillis <= 0 {
		return 0
	}
	return time.Duration(t.SubmitLatencyMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
