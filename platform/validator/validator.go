// Package validator wraps go-playground struct validation for injection
// into handlers.
package validator

import "github.com/go-playground/validator/v10"

// Validator holds a configured validate instance. Handlers receive one
// instead of reaching for a package global, which keeps tests isolated.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator. Custom rules can be added with
// RegisterValidation.
func New() *Validator {
	return &Validator{
		v: validator.New(),
	}
}

// Struct validates a struct against its validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single value against a tag expression.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation adds a custom validation function under the tag.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
