// Package form manages mounted appointment forms: field edits, derived
// option lists, validation and submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/picker/internal/domain/birthday"
	"github.com/ehr/picker/internal/domain/eligibility"
	"github.com/ehr/picker/internal/domain/reference"
	"github.com/ehr/picker/internal/domain/selection"
)

// Common errors returned by the form controller.
var (
	ErrSessionNotFound = errors.New("form session not found")
	ErrUnknownField    = errors.New("unknown form field")
	ErrInvalidValue    = errors.New("invalid field value")
	ErrSubmitFailed    = errors.New("submission failed")
)

// Submission outcomes reported to the Observer.
const (
	OutcomeAccepted = "accepted"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// StoreLoader fetches a reference snapshot; *reference.Loader satisfies it.
type StoreLoader interface {
	Load(ctx context.Context) *reference.Store
}

// Observer receives session lifecycle and submission events.
type Observer interface {
	SessionOpened()
	SessionsClosed(n int)
	ObserveSubmission(outcome string)
}

// ErrorReporter forwards unexpected errors to an external tracker.
type ErrorReporter interface {
	CaptureError(err error, tags map[string]string)
}

const defaultSessionTTL = 30 * time.Minute

// Controller is an in-memory registry of form sessions.
type Controller struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	loader    StoreLoader
	engine    *eligibility.Engine
	submitter Submitter
	logger    zerolog.Logger
	observer  Observer
	reporter  ErrorReporter
	ttl       time.Duration
	nowFn     func() time.Time
}

type Option func(*Controller)

func WithSubmitter(s Submitter) Option {
	return func(c *Controller) { c.submitter = s }
}

// WithSessionTTL sets how long an untouched session survives cleanup.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Controller) { c.ttl = ttl }
}

func WithClock(fn func() time.Time) Option {
	return func(c *Controller) { c.nowFn = fn }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

func WithErrorReporter(r ErrorReporter) Option {
	return func(c *Controller) { c.reporter = r }
}

func NewController(loader StoreLoader, engine *eligibility.Engine, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		sessions: make(map[string]*Session),
		loader:   loader,
		engine:   engine,
		logger:   logger,
		ttl:      defaultSessionTTL,
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.submitter == nil {
		c.submitter = NewLogSubmitter(logger)
	}
	return c
}

// Open mounts a new form and fetches its reference data once.
func (c *Controller) Open(ctx context.Context) (*View, error) {
	store := c.loader.Load(ctx)
	now := c.nowFn()
	s := newSession(uuid.New().String(), store, now)

	c.mu.Lock()
	c.sessions[s.id] = s
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.SessionOpened()
	}
	c.logger.Debug().Str("form_id", s.id).Int("fetch_failures", len(store.Failures)).Msg("form opened")

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(c.engine, now), nil
}

func (c *Controller) session(id string) (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (c *Controller) Get(id string) (*View, error) {
	s, err := c.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(c.engine, c.nowFn()), nil
}

// Change sets one field. Birthday input is normalized; a new doctor choice
// pulls the doctor's city and specialty into the selection in the same
// update.
func (c *Controller) Change(id, fieldName, value string) (*View, error) {
	field, ok := selection.ParseField(fieldName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, fieldName)
	}
	if field == selection.FieldSex {
		if _, ok := reference.ParseGender(value); !ok {
			return nil, fmt.Errorf("%w: sex must be Male or Female", ErrInvalidValue)
		}
	}

	s, err := c.session(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := c.nowFn()
	if field == selection.FieldBirthday {
		value = birthday.Normalize(value, now)
	}

	prev := s.sel
	next := prev.With(field, value)
	if field == selection.FieldDoctor && next.Doctor != prev.Doctor {
		next = selection.Synchronize(next, s.store)
	}

	s.sel = next
	s.touched[field] = true
	s.filterChanged = eligibility.FilterInputChanged(prev, next)
	s.updatedAt = now
	return s.render(c.engine, now), nil
}

// Touch marks a field as visited so its validation error is shown.
func (c *Controller) Touch(id, fieldName string) (*View, error) {
	field, ok := selection.ParseField(fieldName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, fieldName)
	}
	s, err := c.session(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := c.nowFn()
	s.touched[field] = true
	s.filterChanged = false
	s.updatedAt = now
	return s.render(c.engine, now), nil
}

// Reset clears the selection and the touched set. Reference data is kept.
func (c *Controller) Reset(id string) (*View, error) {
	s, err := c.session(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := c.nowFn()
	s.reset()
	s.updatedAt = now
	return s.render(c.engine, now), nil
}

// reset empties the form. Caller must hold s.mu.
func (s *Session) reset() {
	prev := s.sel
	s.sel = selection.Selection{}
	s.touched = make(map[selection.Field]bool)
	s.filterChanged = eligibility.FilterInputChanged(prev, s.sel)
}

// Reload fetches the reference collections again and re-applies doctor
// synchronization against the new doctor collection.
func (c *Controller) Reload(ctx context.Context, id string) (*View, error) {
	if _, err := c.session(id); err != nil {
		return nil, err
	}
	store := c.loader.Load(ctx)

	s, err := c.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := c.nowFn()
	prev := s.sel
	s.store = store
	s.sel = selection.Synchronize(prev, store)
	s.filterChanged = eligibility.FilterInputChanged(prev, s.sel)
	s.updatedAt = now
	return s.render(c.engine, now), nil
}

// Submit validates the form, marking every field touched. A valid form is
// handed to the Submitter and then reset. The session lock is not held
// while the Submitter runs.
func (c *Controller) Submit(ctx context.Context, id string) (*Submission, error) {
	s, err := c.session(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	now := c.nowFn()
	s.updatedAt = now
	for _, f := range selection.Fields {
		s.touched[f] = true
	}
	if errs := Validate(s.sel); len(errs) > 0 {
		s.mu.Unlock()
		c.observe(OutcomeInvalid)
		return nil, &ValidationError{Fields: errs}
	}
	sub := Submission{
		ID:          uuid.New().String(),
		FormID:      s.id,
		Selection:   s.sel,
		SubmittedAt: now,
	}
	s.mu.Unlock()

	if err := c.submitter.Submit(ctx, sub); err != nil {
		c.observe(OutcomeFailed)
		c.logger.Error().Err(err).Str("form_id", sub.FormID).Str("submission_id", sub.ID).Msg("submission failed")
		if c.reporter != nil {
			c.reporter.CaptureError(err, map[string]string{"component": "form.submit", "form_id": sub.FormID})
		}
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	c.observe(OutcomeAccepted)
	s.mu.Lock()
	s.reset()
	s.updatedAt = c.nowFn()
	s.mu.Unlock()
	return &sub, nil
}

func (c *Controller) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveSubmission(outcome)
	}
}

// Close unmounts a form.
func (c *Controller) Close(id string) error {
	c.mu.Lock()
	_, ok := c.sessions[id]
	delete(c.sessions, id)
	c.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if c.observer != nil {
		c.observer.SessionsClosed(1)
	}
	return nil
}

// Len returns the number of open sessions.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// EvictIdle removes sessions untouched for longer than the TTL and returns
// how many were removed. Idleness is checked without holding the registry
// lock; a session replaced or closed in the meantime is left alone.
func (c *Controller) EvictIdle(now time.Time) int {
	c.mu.RLock()
	snapshot := make(map[string]*Session, len(c.sessions))
	for id, s := range c.sessions {
		snapshot[id] = s
	}
	c.mu.RUnlock()

	var idle []string
	for id, s := range snapshot {
		if s.idleSince(now) > c.ttl {
			idle = append(idle, id)
		}
	}
	if len(idle) == 0 {
		return 0
	}

	removed := 0
	c.mu.Lock()
	for _, id := range idle {
		if cur, ok := c.sessions[id]; ok && cur == snapshot[id] {
			delete(c.sessions, id)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		if c.observer != nil {
			c.observer.SessionsClosed(removed)
		}
		c.logger.Debug().Int("evicted", removed).Msg("idle forms evicted")
	}
	return removed
}

// StartCleanup evicts idle sessions on every tick. It blocks until ctx is
// cancelled, so call it in a goroutine.
func (c *Controller) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.EvictIdle(c.nowFn())
		}
	}
}
