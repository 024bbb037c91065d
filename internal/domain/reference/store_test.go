package reference

import "testing"

func testStore() *Store {
	return &Store{
		Cities:      []City{{ID: 1, Name: "Kyiv"}, {ID: 2, Name: "Lviv"}},
		Specialties: []Specialty{{ID: 1, Name: "Therapist"}, {ID: 2, Name: "Urologist", GenderRestriction: GenderMale}},
		Doctors: []Doctor{
			{ID: 1, Name: "John", Surname: "Smith", CityID: 1, SpecialtyID: 1},
			{ID: 2, Name: "John", Surname: "Doe", CityID: 2, SpecialtyID: 2},
			{ID: 3, Name: "Anna", Surname: "Lee", CityID: 2, SpecialtyID: 1, IsPediatrician: true},
		},
	}
}

func TestStore_Lookups(t *testing.T) {
	s := testStore()

	if c, ok := s.CityByName("Lviv"); !ok || c.ID != 2 {
		t.Errorf("expected Lviv with id 2, got %+v %v", c, ok)
	}
	if _, ok := s.CityByName("Odesa"); ok {
		t.Error("expected miss for unknown city")
	}
	if sp, ok := s.SpecialtyByID(2); !ok || sp.Name != "Urologist" {
		t.Errorf("expected Urologist, got %+v %v", sp, ok)
	}
	if _, ok := s.SpecialtyByName(""); ok {
		t.Error("expected miss for empty name")
	}
	if d, ok := s.DoctorByName("John"); !ok || d.ID != 1 {
		t.Errorf("expected first John (id 1), got %+v", d)
	}
	if got := len(s.DoctorsNamed("John")); got != 2 {
		t.Errorf("expected 2 doctors named John, got %d", got)
	}
}

func TestStore_NilIsEmpty(t *testing.T) {
	var s *Store
	if _, ok := s.CityByID(1); ok {
		t.Error("expected miss on nil store")
	}
	if s.Failed(CollectionDoctors) {
		t.Error("expected no failure on nil store")
	}
	if s.FailureTexts() != nil {
		t.Error("expected nil failure texts")
	}
	if s.DoctorsNamed("John") != nil {
		t.Error("expected no doctors")
	}
}

func TestFetchFailure_Error(t *testing.T) {
	f := &FetchFailure{Collection: CollectionSpecialties, Detail: "timeout"}
	if f.Error() != "Specialties error: timeout" {
		t.Errorf("unexpected message: %q", f.Error())
	}

	s := &Store{Failures: map[Collection]*FetchFailure{CollectionCities: {Collection: CollectionCities, Detail: "boom"}}}
	texts := s.FailureTexts()
	if texts[CollectionCities] != "Cities error: boom" {
		t.Errorf("unexpected failure text: %q", texts[CollectionCities])
	}
}
