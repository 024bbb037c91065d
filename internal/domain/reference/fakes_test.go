package reference

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ---------- Helper ----------

type fakeSource struct {
	mu sync.Mutex

	cities      []City
	specialties []Specialty
	doctors     []Doctor

	citiesErr      error
	specialtiesErr error
	doctorsErr     error

	calls map[Collection]int
}

func newFakeSource() *fakeSource {
	s := testStore()
	return &fakeSource{
		cities:      s.Cities,
		specialties: s.Specialties,
		doctors:     s.Doctors,
		calls:       make(map[Collection]int),
	}
}

func (f *fakeSource) record(c Collection) {
	f.mu.Lock()
	f.calls[c]++
	f.mu.Unlock()
}

func (f *fakeSource) callCount(c Collection) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[c]
}

func (f *fakeSource) Cities(ctx context.Context) ([]City, error) {
	f.record(CollectionCities)
	if f.citiesErr != nil {
		return nil, f.citiesErr
	}
	return f.cities, nil
}

func (f *fakeSource) Specialties(ctx context.Context) ([]Specialty, error) {
	f.record(CollectionSpecialties)
	if f.specialtiesErr != nil {
		return nil, f.specialtiesErr
	}
	return f.specialties, nil
}

func (f *fakeSource) Doctors(ctx context.Context) ([]Doctor, error) {
	f.record(CollectionDoctors)
	if f.doctorsErr != nil {
		return nil, f.doctorsErr
	}
	return f.doctors, nil
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string]error
}

func (o *recordingObserver) ObserveFetch(collection string, took time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = make(map[string]error)
	}
	o.outcomes[collection] = err
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }
