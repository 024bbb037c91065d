// Package selection holds the patient's in-progress form values and the
// doctor-driven synchronization of city and specialty.
package selection

import (
	"github.com/ehr/picker/internal/domain/reference"
)

// Field names one form input.
type Field string

const (
	FieldName      Field = "name"
	FieldBirthday  Field = "birthday"
	FieldSex       Field = "sex"
	FieldCity      Field = "city"
	FieldSpecialty Field = "specialty"
	FieldDoctor    Field = "doctor"
	FieldEmail     Field = "email"
	FieldMobile    Field = "mobile"
)

// Fields lists every form input in display order.
var Fields = []Field{
	FieldName, FieldBirthday, FieldSex, FieldCity,
	FieldSpecialty, FieldDoctor, FieldEmail, FieldMobile,
}

func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Selection is a snapshot of the form. It is a value type: every update
// produces a new Selection. The empty string means unset; City, Specialty
// and Doctor hold display names, not ids.
type Selection struct {
	Name      string           `json:"name"`
	Birthday  string           `json:"birthday"`
	Sex       reference.Gender `json:"sex"`
	City      string           `json:"city"`
	Specialty string           `json:"specialty"`
	Doctor    string           `json:"doctor"`
	Email     string           `json:"email"`
	Mobile    string           `json:"mobile"`
}

// Value returns the raw value of f.
func (s Selection) Value(f Field) string {
	switch f {
	case FieldName:
		return s.Name
	case FieldBirthday:
		return s.Birthday
	case FieldSex:
		return string(s.Sex)
	case FieldCity:
		return s.City
	case FieldSpecialty:
		return s.Specialty
	case FieldDoctor:
		return s.Doctor
	case FieldEmail:
		return s.Email
	case FieldMobile:
		return s.Mobile
	}
	return ""
}

// With returns a copy of s with f set to value. Unknown fields leave s
// unchanged.
func (s Selection) With(f Field, value string) Selection {
	switch f {
	case FieldName:
		s.Name = value
	case FieldBirthday:
		s.Birthday = value
	case FieldSex:
		s.Sex = reference.Gender(value)
	case FieldCity:
		s.City = value
	case FieldSpecialty:
		s.Specialty = value
	case FieldDoctor:
		s.Doctor = value
	case FieldEmail:
		s.Email = value
	case FieldMobile:
		s.Mobile = value
	}
	return s
}

// IsZero reports whether no field is set.
func (s Selection) IsZero() bool {
	return s == Selection{}
}
