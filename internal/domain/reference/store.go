package reference

import (
	"fmt"
	"time"
)

// FetchFailure records why one collection could not be loaded. It is kept
// per collection in the Store and never aborts loading of the others.
type FetchFailure struct {
	Collection Collection
	Detail     string
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("%s error: %s", f.Collection.Label(), f.Detail)
}

// Store is one immutable snapshot of the three reference collections. Each
// collection is either loaded (possibly empty) or failed. A nil *Store
// behaves as an empty store with no failures.
type Store struct {
	Cities      []City
	Specialties []Specialty
	Doctors     []Doctor
	Failures    map[Collection]*FetchFailure
	LoadedAt    time.Time
}

// Failure returns the recorded failure for c, or nil.
func (s *Store) Failure(c Collection) *FetchFailure {
	if s == nil {
		return nil
	}
	return s.Failures[c]
}

// Failed reports whether collection c failed to load.
func (s *Store) Failed(c Collection) bool {
	return s.Failure(c) != nil
}

// FailureTexts returns the user-facing failure text keyed by collection.
func (s *Store) FailureTexts() map[Collection]string {
	if s == nil || len(s.Failures) == 0 {
		return nil
	}
	out := make(map[Collection]string, len(s.Failures))
	for c, f := range s.Failures {
		out[c] = f.Error()
	}
	return out
}

func (s *Store) CityByName(name string) (City, bool) {
	if s == nil || name == "" {
		return City{}, false
	}
	for _, c := range s.Cities {
		if c.Name == name {
			return c, true
		}
	}
	return City{}, false
}

func (s *Store) CityByID(id int) (City, bool) {
	if s == nil {
		return City{}, false
	}
	for _, c := range s.Cities {
		if c.ID == id {
			return c, true
		}
	}
	return City{}, false
}

func (s *Store) SpecialtyByName(name string) (Specialty, bool) {
	if s == nil || name == "" {
		return Specialty{}, false
	}
	for _, sp := range s.Specialties {
		if sp.Name == name {
			return sp, true
		}
	}
	return Specialty{}, false
}

func (s *Store) SpecialtyByID(id int) (Specialty, bool) {
	if s == nil {
		return Specialty{}, false
	}
	for _, sp := range s.Specialties {
		if sp.ID == id {
			return sp, true
		}
	}
	return Specialty{}, false
}

// DoctorByName returns the first doctor, in collection order, whose Name
// equals name. Doctors are matched by first name only.
func (s *Store) DoctorByName(name string) (Doctor, bool) {
	if s == nil || name == "" {
		return Doctor{}, false
	}
	for _, d := range s.Doctors {
		if d.Name == name {
			return d, true
		}
	}
	return Doctor{}, false
}

// DoctorsNamed returns every doctor sharing the given first name, so callers
// can detect an ambiguous selection.
func (s *Store) DoctorsNamed(name string) []Doctor {
	if s == nil || name == "" {
		return nil
	}
	var out []Doctor
	for _, d := range s.Doctors {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out
}
