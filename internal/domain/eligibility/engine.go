// Package eligibility narrows the reference collections to the options a
// patient may pick given the current selection.
package eligibility

import (
	"time"

	"github.com/ehr/picker/internal/domain/birthday"
	"github.com/ehr/picker/internal/domain/reference"
	"github.com/ehr/picker/internal/domain/selection"
)

const adultAge = 18

// Engine evaluates eligibility predicates. It is stateless apart from its
// clock and safe for concurrent use.
type Engine struct {
	nowFn func() time.Time
}

type Option func(*Engine)

// WithClock overrides the clock used to compute the patient's age.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.nowFn = fn }
}

func New(opts ...Option) *Engine {
	e := &Engine{nowFn: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BySex reports whether the specialty is open to the selected sex. An
// unrestricted specialty or an unset sex always passes.
func BySex(sp reference.Specialty, sel selection.Selection) bool {
	return sp.GenderRestriction == reference.GenderUnset ||
		sel.Sex == reference.GenderUnset ||
		sp.GenderRestriction == sel.Sex
}

// ByPediatricEligibility passes pediatricians for minors and everyone else
// for adults. An empty birthday applies no constraint; so does one that is
// not yet a complete date.
func (e *Engine) ByPediatricEligibility(d reference.Doctor, sel selection.Selection) bool {
	if sel.Birthday == "" {
		return true
	}
	age, err := birthday.AgeInYears(sel.Birthday, e.nowFn())
	if err != nil {
		return true
	}
	isAdult := age >= adultAge
	return d.IsPediatrician != isAdult
}

// ByCity passes every doctor when no city is selected. Otherwise the
// selected name must resolve to a city whose id is the doctor's.
func ByCity(d reference.Doctor, sel selection.Selection, store *reference.Store) bool {
	if sel.City == "" {
		return true
	}
	city, ok := store.CityByName(sel.City)
	return ok && city.ID == d.CityID
}

// BySpecialty is ByCity for the specialty field.
func BySpecialty(d reference.Doctor, sel selection.Selection, store *reference.Store) bool {
	if sel.Specialty == "" {
		return true
	}
	sp, ok := store.SpecialtyByName(sel.Specialty)
	return ok && sp.ID == d.SpecialtyID
}

// Eligible is the conjunction of the three doctor predicates.
func (e *Engine) Eligible(d reference.Doctor, sel selection.Selection, store *reference.Store) bool {
	return e.ByPediatricEligibility(d, sel) && ByCity(d, sel, store) && BySpecialty(d, sel, store)
}

// EligibleDoctors returns the doctors passing Eligible, in collection order.
func (e *Engine) EligibleDoctors(sel selection.Selection, store *reference.Store) []reference.Doctor {
	if store == nil {
		return nil
	}
	var out []reference.Doctor
	for _, d := range store.Doctors {
		if e.Eligible(d, sel, store) {
			out = append(out, d)
		}
	}
	return out
}

// EligibleSpecialties returns the specialties passing BySex, in collection order.
func EligibleSpecialties(sel selection.Selection, store *reference.Store) []reference.Specialty {
	if store == nil {
		return nil
	}
	var out []reference.Specialty
	for _, sp := range store.Specialties {
		if BySex(sp, sel) {
			out = append(out, sp)
		}
	}
	return out
}

// FilterInputChanged reports whether any input of the doctor filter differs
// between two selections.
func FilterInputChanged(prev, next selection.Selection) bool {
	return prev.Sex != next.Sex ||
		prev.Birthday != next.Birthday ||
		prev.City != next.City ||
		prev.Specialty != next.Specialty
}
