package selection

import "github.com/ehr/picker/internal/domain/reference"

// Synchronize aligns City and Specialty with the chosen doctor. The doctor
// is found by first name; the first match in collection order wins. When a
// doctor is found both fields are replaced together, each with the name its
// id resolves to or "" when the id is unknown. Without a match prior is
// returned unchanged. Doctor itself is never modified.
func Synchronize(prior Selection, store *reference.Store) Selection {
	doc, ok := store.DoctorByName(prior.Doctor)
	if !ok {
		return prior
	}

	next := prior
	next.City = ""
	next.Specialty = ""
	if city, ok := store.CityByID(doc.CityID); ok {
		next.City = city.Name
	}
	if sp, ok := store.SpecialtyByID(doc.SpecialtyID); ok {
		next.Specialty = sp.Name
	}
	return next
}
