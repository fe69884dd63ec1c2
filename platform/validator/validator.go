// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import "github.com/go-playground/validator/v10"

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the domain enum rules
// registered.
func New() *Validator {
	v := validator.New()

	// Enum rules used by request DTO tags across modules.
	_ = v.RegisterValidation("outcome_type", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "contacted", "appointment_set", "listing_signed", "buyer_agreement",
			"closed_won", "closed_lost", "invalid":
			return true
		}
		return false
	})
	_ = v.RegisterValidation("lead_tier", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "A", "B", "C", "D":
			return true
		}
		return false
	})

	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field any, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
