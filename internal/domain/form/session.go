package form

import (
	"sync"
	"time"

	"github.com/ehr/picker/internal/domain/birthday"
	"github.com/ehr/picker/internal/domain/eligibility"
	"github.com/ehr/picker/internal/domain/reference"
	"github.com/ehr/picker/internal/domain/selection"
)

// Session is one mounted form. All fields are guarded by mu; the selection
// is only ever replaced as a whole.
type Session struct {
	mu            sync.Mutex
	id            string
	sel           selection.Selection
	touched       map[selection.Field]bool
	store         *reference.Store
	filterChanged bool
	createdAt     time.Time
	updatedAt     time.Time
}

func newSession(id string, store *reference.Store, now time.Time) *Session {
	return &Session{
		id:        id,
		touched:   make(map[selection.Field]bool),
		store:     store,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.updatedAt)
}

// View is the rendered state of a session: the selection, the option lists
// derived from it and the errors to display.
type View struct {
	ID              string                       `json:"id"`
	Selection       selection.Selection          `json:"selection"`
	Age             *int                         `json:"age,omitempty"`
	Errors          map[string]string            `json:"errors"`
	Valid           bool                         `json:"valid"`
	Cities          eligibility.CityOptions      `json:"cities"`
	Specialties     eligibility.SpecialtyOptions `json:"specialties"`
	Doctors         eligibility.DoctorOptions    `json:"doctors"`
	FetchErrors     map[string]string            `json:"fetch_errors,omitempty"`
	AmbiguousDoctor bool                         `json:"ambiguous_doctor"`
	FilterChanged   bool                         `json:"filter_changed"`
	LoadedAt        time.Time                    `json:"reference_loaded_at"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

// render builds the view. Caller must hold s.mu.
func (s *Session) render(engine *eligibility.Engine, now time.Time) *View {
	sel := s.sel
	all := Validate(sel)

	v := &View{
		ID:              s.id,
		Selection:       sel,
		Errors:          make(map[string]string),
		Valid:           len(all) == 0,
		Cities:          engine.Cities(s.store),
		Specialties:     engine.Specialties(sel, s.store),
		Doctors:         engine.Doctors(sel, s.store),
		AmbiguousDoctor: len(s.store.DoctorsNamed(sel.Doctor)) > 1,
		FilterChanged:   s.filterChanged,
		CreatedAt:       s.createdAt,
		UpdatedAt:       s.updatedAt,
	}
	if s.store != nil {
		v.LoadedAt = s.store.LoadedAt
	}
	for field, msg := range all {
		if f, ok := selection.ParseField(field); ok && s.touched[f] {
			v.Errors[field] = msg
		}
	}
	if age, err := birthday.AgeInYears(sel.Birthday, now); err == nil {
		v.Age = &age
	}
	if texts := s.store.FailureTexts(); len(texts) > 0 {
		v.FetchErrors = make(map[string]string, len(texts))
		for c, text := range texts {
			v.FetchErrors[string(c)] = text
		}
	}
	return v
}
