package form

import (
	"strings"
	"testing"

	"github.com/ehr/picker/internal/domain/reference"
	"github.com/ehr/picker/internal/domain/selection"
)

func validSelection() selection.Selection {
	return selection.Selection{
		Name:     "Pat",
		Birthday: "15/06/2010",
		Sex:      reference.GenderFemale,
		City:     "Springfield",
		Email:    "pat@example.com",
	}
}

func TestValidate_Valid(t *testing.T) {
	if errs := Validate(validSelection()); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidate_EmptySelection(t *testing.T) {
	errs := Validate(selection.Selection{})
	want := map[string]string{
		"name":     MsgRequired,
		"birthday": MsgRequired,
		"sex":      MsgRequired,
		"city":     MsgRequired,
		"email":    MsgContactRequired,
		"mobile":   MsgContactRequired,
	}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), errs)
	}
	for field, msg := range want {
		if errs[field] != msg {
			t.Errorf("%s: expected %q, got %q", field, msg, errs[field])
		}
	}
	if _, ok := errs["specialty"]; ok {
		t.Error("expected specialty to be optional")
	}
}

func TestValidate_NameWithDigits(t *testing.T) {
	sel := validSelection()
	sel.Name = "Pat2"
	if got := Validate(sel)["name"]; got != MsgNameDigits {
		t.Errorf("expected %q, got %q", MsgNameDigits, got)
	}
}

func TestValidate_BirthdayLetters(t *testing.T) {
	sel := validSelection()
	sel.Birthday = "15/ju/2010"
	if got := Validate(sel)["birthday"]; got != MsgBirthdayLetters {
		t.Errorf("expected %q, got %q", MsgBirthdayLetters, got)
	}
}

func TestValidate_EitherContactSuffices(t *testing.T) {
	sel := validSelection()
	sel.Email = ""
	sel.Mobile = "+380001112233"
	if errs := Validate(sel); len(errs) != 0 {
		t.Errorf("expected mobile alone to satisfy contact, got %v", errs)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"city": MsgRequired, "name": MsgRequired}}
	if !strings.Contains(err.Error(), "name, city") {
		t.Errorf("expected fields in form order, got %q", err.Error())
	}
}
