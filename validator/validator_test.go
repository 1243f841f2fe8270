package validator

import (
	"testing"
)

func TestFirstMissingField(t *testing.T) {
	type request struct {
		Email string `json:"email" validate:"required"`
		Name  string `json:"name" validate:"required"`
		Plan  string `json:"plan" validate:"omitempty,oneof=starter professional"`
	}

	v := New()

	// All required fields present
	err := v.Validate(&request{Email: "john@example.com", Name: "John Doe"})
	if err != nil {
		t.Fatalf("expected valid struct, got error: %v", err)
	}

	// First missing field is reported by JSON name, in declaration order
	err = v.Validate(&request{Name: "John Doe"})
	if err == nil {
		t.Fatal("expected validation error for missing email")
	}
	field, ok := FirstMissingField(err)
	if !ok || field != "email" {
		t.Errorf("expected missing field %q, got %q (ok=%t)", "email", field, ok)
	}

	// A non-required failure is not reported as a missing field
	err = v.Validate(&request{Email: "john@example.com", Name: "John Doe", Plan: "enterprise"})
	if err == nil {
		t.Fatal("expected validation error for invalid plan")
	}
	if _, ok := FirstMissingField(err); ok {
		t.Error("oneof failure should not be reported as a missing field")
	}

	// Arbitrary errors are ignored
	if _, ok := FirstMissingField(errNotValidation); ok {
		t.Error("non-validation error should not be reported as a missing field")
	}
}

type notValidationError struct{}

func (notValidationError) Error() string { return "boom" }

var errNotValidation = notValidationError{}
