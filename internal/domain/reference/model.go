package reference

import (
	"encoding/json"
	"strings"
)

// Gender is the patient sex as used both by the form and by specialty
// restrictions. The empty value means unset (or unrestricted).
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ParseGender accepts the two known values and the empty string.
func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case GenderUnset, GenderMale, GenderFemale:
		return Gender(s), true
	}
	return GenderUnset, false
}

// Collection names one of the three independently fetched datasets.
type Collection string

const (
	CollectionCities      Collection = "cities"
	CollectionSpecialties Collection = "specialties"
	CollectionDoctors     Collection = "doctors"
)

// Collections lists every collection in display order.
var Collections = []Collection{CollectionCities, CollectionSpecialties, CollectionDoctors}

// ParseCollection maps a path segment to a Collection.
func ParseCollection(s string) (Collection, bool) {
	for _, c := range Collections {
		if string(c) == strings.ToLower(s) {
			return c, true
		}
	}
	return "", false
}

// Label is the capitalised collection name used in user-facing messages.
func (c Collection) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

type City struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Specialty is a medical specialty. An empty GenderRestriction means the
// specialty is open to every patient.
type Specialty struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	GenderRestriction Gender `json:"-"`
}

type specialtyParams struct {
	Gender Gender `json:"gender,omitempty"`
}

type specialtyWire struct {
	ID     int              `json:"id"`
	Name   string           `json:"name"`
	Params *specialtyParams `json:"params,omitempty"`
}

// MarshalJSON writes the upstream feed shape: the restriction lives under
// params.gender and params is omitted for unrestricted specialties.
func (s Specialty) MarshalJSON() ([]byte, error) {
	w := specialtyWire{ID: s.ID, Name: s.Name}
	if s.GenderRestriction != GenderUnset {
		w.Params = &specialtyParams{Gender: s.GenderRestriction}
	}
	return json.Marshal(w)
}

func (s *Specialty) UnmarshalJSON(data []byte) error {
	var w specialtyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.ID = w.ID
	s.Name = w.Name
	s.GenderRestriction = GenderUnset
	if w.Params != nil {
		s.GenderRestriction = w.Params.Gender
	}
	return nil
}

type Doctor struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	CityID         int    `json:"cityId"`
	SpecialtyID    int    `json:"specialtyId"`
	IsPediatrician bool   `json:"isPediatrician"`
}

// DisplayName is what the doctor dropdown shows; the selected value is Name.
func (d Doctor) DisplayName() string {
	return strings.TrimSpace(d.Name + " " + d.Surname)
}

// UnmarshalJSON accepts the upstream spelling "specialityId" as well as
// "specialtyId".
func (d *Doctor) UnmarshalJSON(data []byte) error {
	var w struct {
		ID             int    `json:"id"`
		Name           string `json:"name"`
		Surname        string `json:"surname"`
		CityID         int    `json:"cityId"`
		SpecialtyID    *int   `json:"specialtyId"`
		SpecialityID   *int   `json:"specialityId"`
		IsPediatrician bool   `json:"isPediatrician"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = Doctor{
		ID:             w.ID,
		Name:           w.Name,
		Surname:        w.Surname,
		CityID:         w.CityID,
		IsPediatrician: w.IsPediatrician,
	}
	switch {
	case w.SpecialtyID != nil:
		d.SpecialtyID = *w.SpecialtyID
	case w.SpecialityID != nil:
		d.SpecialtyID = *w.SpecialityID
	}
	return nil
}
