package reference

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/picker/internal/platform/cache"
)

// Cache is the byte cache CachedSource reads through. Get must return
// cache.ErrMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const cacheKeyPrefix = "picker:reference:"

// CachedSource decorates a Source with a read-through cache. Only successful
// fetches are cached; cache outages fall back to the inner source.
type CachedSource struct {
	inner  Source
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedSource(inner Source, c Cache, ttl time.Duration, logger zerolog.Logger) *CachedSource {
	return &CachedSource{inner: inner, cache: c, ttl: ttl, logger: logger}
}

func (s *CachedSource) Cities(ctx context.Context) ([]City, error) {
	return readThrough(ctx, s, CollectionCities, s.inner.Cities)
}

func (s *CachedSource) Specialties(ctx context.Context) ([]Specialty, error) {
	return readThrough(ctx, s, CollectionSpecialties, s.inner.Specialties)
}

func (s *CachedSource) Doctors(ctx context.Context) ([]Doctor, error) {
	return readThrough(ctx, s, CollectionDoctors, s.inner.Doctors)
}

// CacheKey is the key a collection is stored under.
func CacheKey(c Collection) string {
	return cacheKeyPrefix + string(c)
}

func readThrough[T any](ctx context.Context, s *CachedSource, c Collection, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key := CacheKey(c)
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var items []T
		uerr := json.Unmarshal(raw, &items)
		if uerr == nil {
			return items, nil
		}
		s.logger.Warn().Err(uerr).Str("key", key).Msg("discarding undecodable cache entry")
	case errors.Is(err, cache.ErrMiss):
	default:
		s.logger.Warn().Err(err).Str("key", key).Msg("reference cache unavailable")
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("encode reference cache entry")
		return items, nil
	}
	if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("write reference cache entry")
	}
	return items, nil
}
