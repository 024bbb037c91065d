package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ehr/picker/internal/domain/selection"
)

// User-facing validation messages.
const (
	MsgRequired         = "Required"
	MsgNameDigits       = "Name should not contain numbers"
	MsgBirthdayLetters  = "Birthday should not contain letters"
	MsgContactRequired  = "At least one field is required"
	msgInvalidFieldText = "Invalid value"
)

// submissionFields mirrors the validated subset of a Selection. Specialty
// and doctor are optional.
type submissionFields struct {
	Name     string `form:"name" validate:"required,nodigits"`
	Birthday string `form:"birthday" validate:"required,birthdaychars"`
	Sex      string `form:"sex" validate:"required"`
	City     string `form:"city" validate:"required"`
	Email    string `form:"email" validate:"required_without=Mobile"`
	Mobile   string `form:"mobile" validate:"required_without=Email"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	_ = v.RegisterValidation("nodigits", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "0123456789")
	})
	_ = v.RegisterValidation("birthdaychars", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if (r < '0' || r > '9') && r != '/' {
				return false
			}
		}
		return true
	})
	return v
}

// Validate checks a selection and returns one message per failing field,
// keyed by field name. An empty map means the selection can be submitted.
func Validate(sel selection.Selection) map[string]string {
	in := submissionFields{
		Name:     sel.Name,
		Birthday: sel.Birthday,
		Sex:      string(sel.Sex),
		City:     sel.City,
		Email:    sel.Email,
		Mobile:   sel.Mobile,
	}

	out := make(map[string]string)
	err := validate.Struct(in)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "required_without":
		return MsgContactRequired
	case "nodigits":
		return MsgNameDigits
	case "birthdaychars":
		return MsgBirthdayLetters
	}
	return msgInvalidFieldText
}

// ValidationError is returned by Submit when the selection is incomplete.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range selection.Fields {
		if _, ok := e.Fields[string(f)]; ok {
			names = append(names, string(f))
		}
	}
	return "invalid fields: " + strings.Join(names, ", ")
}
