package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/picker/internal/domain/eligibility"
	"github.com/ehr/picker/internal/domain/reference"
)

// ---------- Helper ----------

var testNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func testStore() *reference.Store {
	return &reference.Store{
		Cities:      []reference.City{{ID: 10, Name: "Springfield"}, {ID: 20, Name: "Shelbyville"}},
		Specialties: []reference.Specialty{{ID: 100, Name: "Cardiology"}, {ID: 200, Name: "Gynecology", GenderRestriction: reference.GenderFemale}},
		Doctors: []reference.Doctor{
			{ID: 1, Name: "Alice", Surname: "Kid", CityID: 10, SpecialtyID: 100, IsPediatrician: true},
			{ID: 2, Name: "Bob", Surname: "Grown", CityID: 10, SpecialtyID: 100},
			{ID: 3, Name: "Carol", Surname: "Away", CityID: 20, SpecialtyID: 200},
			{ID: 4, Name: "Carol", Surname: "Twin", CityID: 10, SpecialtyID: 100},
		},
		LoadedAt: testNow,
	}
}

type fakeLoader struct {
	mu    sync.Mutex
	store *reference.Store
	loads int
}

func (l *fakeLoader) Load(ctx context.Context) *reference.Store {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	return l.store
}

func (l *fakeLoader) set(store *reference.Store) {
	l.mu.Lock()
	l.store = store
	l.mu.Unlock()
}

type fakeSubmitter struct {
	mu   sync.Mutex
	subs []Submission
	err  error
}

func (s *fakeSubmitter) Submit(ctx context.Context, sub Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// blockingSubmitter parks every Submit call until release is closed.
type blockingSubmitter struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingSubmitter() *blockingSubmitter {
	return &blockingSubmitter{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (s *blockingSubmitter) Submit(ctx context.Context, sub Submission) error {
	s.entered <- struct{}{}
	<-s.release
	return nil
}

type fakeObserver struct {
	mu       sync.Mutex
	open     int
	outcomes []string
}

func (o *fakeObserver) SessionOpened() {
	o.mu.Lock()
	o.open++
	o.mu.Unlock()
}

func (o *fakeObserver) SessionsClosed(n int) {
	o.mu.Lock()
	o.open -= n
	o.mu.Unlock()
}

func (o *fakeObserver) ObserveSubmission(outcome string) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

type fakeReporter struct{ errs []error }

func (r *fakeReporter) CaptureError(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
}

type fixture struct {
	ctrl      *Controller
	loader    *fakeLoader
	submitter *fakeSubmitter
	observer  *fakeObserver
	reporter  *fakeReporter
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		loader:    &fakeLoader{store: testStore()},
		submitter: &fakeSubmitter{},
		observer:  &fakeObserver{},
		reporter:  &fakeReporter{},
		now:       testNow,
	}
	engine := eligibility.New(eligibility.WithClock(func() time.Time { return testNow }))
	f.ctrl = NewController(f.loader, engine, zerolog.Nop(),
		WithSubmitter(f.submitter),
		WithObserver(f.observer),
		WithErrorReporter(f.reporter),
		WithSessionTTL(time.Minute),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *fixture) mustChange(id, field, value string) *View {
	v, err := f.ctrl.Change(id, field, value)
	if err != nil {
		panic(err)
	}
	return v
}

var errUpstream = errors.New("broker unavailable")
