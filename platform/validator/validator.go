// Package validator wraps go-playground/validator behind a small injectable
// type so handlers validate request DTOs without constructing their own
// validator instances.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates structs against their validation tags.
type Validator struct {
	v *validator.Validate
}

// New creates the shared Validator instance for the composition root.
func New() *Validator {
	return &Validator{
		v: validator.New(),
	}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}
