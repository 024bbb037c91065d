package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	ReferenceSource   string        `mapstructure:"REFERENCE_SOURCE"`
	CitiesURL         string        `mapstructure:"CITIES_URL"`
	SpecialtiesURL    string        `mapstructure:"SPECIALTIES_URL"`
	DoctorsURL        string        `mapstructure:"DOCTORS_URL"`
	FetchTimeout      time.Duration `mapstructure:"FETCH_TIMEOUT"`
	ReferenceCacheTTL time.Duration `mapstructure:"REFERENCE_CACHE_TTL"`
	SnapshotTTL       time.Duration `mapstructure:"REFERENCE_SNAPSHOT_TTL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	KafkaBrokers    []string `mapstructure:"KAFKA_BROKERS"`
	SubmissionTopic string   `mapstructure:"SUBMISSION_TOPIC"`

	SentryDSN        string  `mapstructure:"SENTRY_DSN"`
	SentrySampleRate float64 `mapstructure:"SENTRY_SAMPLE_RATE"`

	CORSOrigins            []string      `mapstructure:"CORS_ORIGINS"`
	SessionTTL             time.Duration `mapstructure:"SESSION_TTL"`
	SessionCleanupInterval time.Duration `mapstructure:"SESSION_CLEANUP_INTERVAL"`
	RequestTimeout         time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"REFERENCE_SOURCE", "CITIES_URL", "SPECIALTIES_URL", "DOCTORS_URL",
	"FETCH_TIMEOUT", "REFERENCE_CACHE_TTL", "REFERENCE_SNAPSHOT_TTL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_URL",
	"KAFKA_BROKERS", "SUBMISSION_TOPIC",
	"SENTRY_DSN", "SENTRY_SAMPLE_RATE",
	"CORS_ORIGINS", "SESSION_TTL", "SESSION_CLEANUP_INTERVAL", "REQUEST_TIMEOUT",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REFERENCE_SOURCE", SourceHTTP)
	v.SetDefault("CITIES_URL", "https://run.mocky.io/v3/9fcb58ca-d3dd-424b-873b-dd3c76f000f4")
	v.SetDefault("SPECIALTIES_URL", "https://run.mocky.io/v3/e8897b19-46a0-4124-8454-0938225ee9ca")
	v.SetDefault("DOCTORS_URL", "https://run.mocky.io/v3/3d1c993c-cd8e-44c3-b1cb-585222859c21")
	v.SetDefault("FETCH_TIMEOUT", "10s")
	v.SetDefault("REFERENCE_CACHE_TTL", "5m")
	v.SetDefault("REFERENCE_SNAPSHOT_TTL", "15s")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("SUBMISSION_TOPIC", "appointment-requests")
	v.SetDefault("SENTRY_SAMPLE_RATE", 1.0)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("SESSION_CLEANUP_INTERVAL", "1m")
	v.SetDefault("REQUEST_TIMEOUT", "30s")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(cfg.CORSOrigins, v.GetString("CORS_ORIGINS"))
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers, v.GetString("KAFKA_BROKERS"))

	return cfg, nil
}

// splitList trims a decoded list, falling back to splitting raw on commas
// when the decoder produced nothing.
func splitList(decoded []string, raw string) []string {
	if len(decoded) == 0 && raw != "" {
		decoded = strings.Split(raw, ",")
	}
	out := make([]string, 0, len(decoded))
	for _, s := range decoded {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the selected reference source has what it needs and
// that the timing knobs are usable.
func (c *Config) Validate() error {
	switch c.ReferenceSource {
	case SourceHTTP:
		if c.CitiesURL == "" || c.SpecialtiesURL == "" || c.DoctorsURL == "" {
			return fmt.Errorf("CITIES_URL, SPECIALTIES_URL and DOCTORS_URL are required when REFERENCE_SOURCE is %q", SourceHTTP)
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when REFERENCE_SOURCE is %q", SourcePostgres)
		}
	default:
		return fmt.Errorf("REFERENCE_SOURCE must be %q or %q, got %q", SourceHTTP, SourcePostgres, c.ReferenceSource)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if c.SnapshotTTL < 0 {
		return fmt.Errorf("REFERENCE_SNAPSHOT_TTL must not be negative, got %s", c.SnapshotTTL)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionCleanupInterval <= 0 {
		return fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive, got %s", c.SessionCleanupInterval)
	}
	if len(c.KafkaBrokers) > 0 && c.SubmissionTopic == "" {
		return fmt.Errorf("SUBMISSION_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		return fmt.Errorf("SENTRY_SAMPLE_RATE must be between 0 and 1, got %v", c.SentrySampleRate)
	}
	return nil
}
