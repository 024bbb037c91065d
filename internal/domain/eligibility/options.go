package eligibility

import (
	"github.com/ehr/picker/internal/domain/reference"
	"github.com/ehr/picker/internal/domain/selection"
)

// State distinguishes an empty but valid option list from unavailable data.
type State string

const (
	StateReady       State = "ready"
	StateEmpty       State = "empty"
	StateFetchFailed State = "fetch_failed"
)

const (
	CitiesNotFound      = "Cities not found"
	SpecialtiesNotFound = "Specialties not found"
	DoctorsNotFound     = "Doctors not found"
)

type CityOptions struct {
	State       State            `json:"state"`
	Placeholder string           `json:"placeholder,omitempty"`
	Items       []reference.City `json:"items"`
}

type SpecialtyOptions struct {
	State       State                 `json:"state"`
	Placeholder string                `json:"placeholder,omitempty"`
	Items       []reference.Specialty `json:"items"`
}

// DoctorOption is one dropdown entry: the value is the doctor's first name,
// the label the full name.
type DoctorOption struct {
	ID             int    `json:"id"`
	Value          string `json:"value"`
	Label          string `json:"label"`
	CityID         int    `json:"cityId"`
	SpecialtyID    int    `json:"specialtyId"`
	IsPediatrician bool   `json:"isPediatrician"`
}

type DoctorOptions struct {
	State       State          `json:"state"`
	Placeholder string         `json:"placeholder,omitempty"`
	Items       []DoctorOption `json:"items"`
}

// Cities lists every city; there is no filter on cities.
func (e *Engine) Cities(store *reference.Store) CityOptions {
	if f := store.Failure(reference.CollectionCities); f != nil {
		return CityOptions{State: StateFetchFailed, Placeholder: f.Error(), Items: []reference.City{}}
	}
	if store == nil || len(store.Cities) == 0 {
		return CityOptions{State: StateEmpty, Placeholder: CitiesNotFound, Items: []reference.City{}}
	}
	return CityOptions{State: StateReady, Items: store.Cities}
}

func (e *Engine) Specialties(sel selection.Selection, store *reference.Store) SpecialtyOptions {
	if f := store.Failure(reference.CollectionSpecialties); f != nil {
		return SpecialtyOptions{State: StateFetchFailed, Placeholder: f.Error(), Items: []reference.Specialty{}}
	}
	items := EligibleSpecialties(sel, store)
	if len(items) == 0 {
		return SpecialtyOptions{State: StateEmpty, Placeholder: SpecialtiesNotFound, Items: []reference.Specialty{}}
	}
	return SpecialtyOptions{State: StateReady, Items: items}
}

// Doctors lists eligible doctors. A non-empty list always wins; otherwise a
// doctor fetch failure is reported ahead of the not-found placeholder.
func (e *Engine) Doctors(sel selection.Selection, store *reference.Store) DoctorOptions {
	doctors := e.EligibleDoctors(sel, store)
	if len(doctors) > 0 {
		items := make([]DoctorOption, 0, len(doctors))
		for _, d := range doctors {
			items = append(items, DoctorOption{
				ID:             d.ID,
				Value:          d.Name,
				Label:          d.DisplayName(),
				CityID:         d.CityID,
				SpecialtyID:    d.SpecialtyID,
				IsPediatrician: d.IsPediatrician,
			})
		}
		return DoctorOptions{State: StateReady, Items: items}
	}
	if f := store.Failure(reference.CollectionDoctors); f != nil {
		return DoctorOptions{State: StateFetchFailed, Placeholder: f.Error(), Items: []DoctorOption{}}
	}
	return DoctorOptions{State: StateEmpty, Placeholder: DoctorsNotFound, Items: []DoctorOption{}}
}
