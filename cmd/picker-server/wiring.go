package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ehr/picker/internal/config"
	"github.com/ehr/picker/internal/domain/form"
	"github.com/ehr/picker/internal/domain/reference"
	"github.com/ehr/picker/internal/platform/broker"
	"github.com/ehr/picker/internal/platform/cache"
	"github.com/ehr/picker/internal/platform/db"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return db.NewPool(ctx, poolConfig(cfg))
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ApplicationName: "picker-server",
	}
}

func httpSource(cfg *config.Config) *reference.HTTPSource {
	return reference.NewHTTPSource(reference.Endpoints{
		Cities:      cfg.CitiesURL,
		Specialties: cfg.SpecialtiesURL,
		Doctors:     cfg.DoctorsURL,
	}, cfg.FetchTimeout)
}

// keyDeleter is satisfied by *cache.Redis.
type keyDeleter interface {
	Delete(ctx context.Context, keys ...string) error
}

// invalidateReferenceCache drops every cached collection so readers see the
// snapshot just written to Postgres.
func invalidateReferenceCache(ctx context.Context, d keyDeleter) error {
	keys := make([]string, 0, len(reference.Collections))
	for _, c := range reference.Collections {
		keys = append(keys, reference.CacheKey(c))
	}
	if err := d.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete reference cache keys: %w", err)
	}
	return nil
}

// dependencies holds the external resources the server runs on. Optional
// ones (pool, cache, publisher) stay nil when not configured.
type dependencies struct {
	source    reference.Source
	submitter form.Submitter
	checks    []db.Check

	pool      *pgxpool.Pool
	cache     *cache.Redis
	publisher *broker.KafkaPublisher
}

func buildDependencies(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		deps.pool = pool
		deps.checks = append(deps.checks, db.PoolCheck(pool))
		logger.Info().Msg("connected to database")
	}

	switch cfg.ReferenceSource {
	case config.SourcePostgres:
		if deps.pool == nil {
			deps.Close()
			return nil, fmt.Errorf("postgres reference source needs DATABASE_URL")
		}
		deps.source = reference.NewPGSource(deps.pool)
	default:
		deps.source = httpSource(cfg)
	}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		deps.cache = rc
		deps.checks = append(deps.checks, db.Check{Name: "redis", Ping: rc.Health})
		deps.source = reference.NewCachedSource(deps.source, rc, cfg.ReferenceCacheTTL, logger)
		logger.Info().Dur("ttl", cfg.ReferenceCacheTTL).Msg("reference cache enabled")
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := broker.NewKafkaPublisher(cfg.KafkaBrokers, cfg.SubmissionTopic)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		deps.publisher = pub
		deps.submitter = form.NewPublishSubmitter(pub)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", pub.Topic()).Msg("publishing submissions")
	} else {
		deps.submitter = form.NewLogSubmitter(logger)
	}

	return deps, nil
}

func (d *dependencies) Close() {
	if d.publisher != nil {
		_ = d.publisher.Close()
	}
	if d.cache != nil {
		_ = d.cache.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}
