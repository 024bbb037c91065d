package reference

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Source fetches the three reference collections. Each call is independent.
type Source interface {
	Cities(ctx context.Context) ([]City, error)
	Specialties(ctx context.Context) ([]Specialty, error)
	Doctors(ctx context.Context) ([]Doctor, error)
}

// FetchObserver is notified once per collection fetch with its outcome.
type FetchObserver interface {
	ObserveFetch(collection string, took time.Duration, err error)
}

// Loader builds a Store by fetching all three collections concurrently.
type Loader struct {
	src       Source
	logger    zerolog.Logger
	observers []FetchObserver
	nowFn     func() time.Time
}

type LoaderOption func(*Loader)

// WithObservers registers fetch observers (metrics, error reporting).
// Nil observers are skipped.
func WithObservers(obs ...FetchObserver) LoaderOption {
	return func(l *Loader) {
		for _, o := range obs {
			if o != nil {
				l.observers = append(l.observers, o)
			}
		}
	}
}

// WithLoaderClock overrides the clock used to stamp Store.LoadedAt.
func WithLoaderClock(fn func() time.Time) LoaderOption {
	return func(l *Loader) { l.nowFn = fn }
}

func NewLoader(src Source, logger zerolog.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		src:    src,
		logger: logger,
		nowFn:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches cities, specialties and doctors in parallel. A failing
// collection is recorded as a FetchFailure in its own slot; the others are
// unaffected and no shared cancellation is used between the fetches.
func (l *Loader) Load(ctx context.Context) *Store {
	var (
		g           errgroup.Group
		cities      []City
		specialties []Specialty
		doctors     []Doctor
		errs        [3]error
	)

	g.Go(func() error {
		cities, errs[0] = fetch(ctx, l, CollectionCities, l.src.Cities)
		return nil
	})
	g.Go(func() error {
		specialties, errs[1] = fetch(ctx, l, CollectionSpecialties, l.src.Specialties)
		return nil
	})
	g.Go(func() error {
		doctors, errs[2] = fetch(ctx, l, CollectionDoctors, l.src.Doctors)
		return nil
	})
	_ = g.Wait()

	store := &Store{
		Cities:      cities,
		Specialties: specialties,
		Doctors:     doctors,
		LoadedAt:    l.nowFn(),
	}
	for i, c := range Collections {
		if errs[i] == nil {
			continue
		}
		if store.Failures == nil {
			store.Failures = make(map[Collection]*FetchFailure)
		}
		store.Failures[c] = &FetchFailure{Collection: c, Detail: errs[i].Error()}
		switch c {
		case CollectionCities:
			store.Cities = nil
		case CollectionSpecialties:
			store.Specialties = nil
		case CollectionDoctors:
			store.Doctors = nil
		}
	}
	return store
}

func fetch[T any](ctx context.Context, l *Loader, c Collection, fn func(context.Context) ([]T, error)) ([]T, error) {
	start := time.Now()
	items, err := fn(ctx)
	took := time.Since(start)
	for _, o := range l.observers {
		o.ObserveFetch(string(c), took, err)
	}
	if err != nil {
		l.logger.Warn().Err(err).Str("collection", string(c)).Dur("took", took).Msg("reference fetch failed")
		return nil, err
	}
	l.logger.Debug().Str("collection", string(c)).Int("count", len(items)).Dur("took", took).Msg("reference fetched")
	return items, nil
}
