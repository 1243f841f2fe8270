// Package validator wraps go-playground/validator for request input
// validation. Field names in validation results use the JSON tag of the
// struct field, so they can be echoed back to API clients verbatim.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around the go-playground/validator package.
type Validator struct {
	validator *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New()

	// Report fields by their JSON name, not the Go field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validator: v,
	}
}

// Validate validates a struct using the validator package.
func (v *Validator) Validate(s any) error {
	return v.validator.Struct(s)
}

// FirstMissingField returns the JSON name of the first field that failed a
// "required" validation, if any.
func FirstMissingField(err error) (string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "", false
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return fe.Field(), true
		}
	}
	return "", false
}
