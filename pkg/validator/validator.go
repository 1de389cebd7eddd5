// Package validator derives form validation markers from form data.
package validator

import (
	"github.com/aretw0/roster/pkg/domain"
	playground "github.com/go-playground/validator/v10"
)

// Field rules. "min=1" counts runes; "email" follows the RFC 5322 based grammar
// of go-playground/validator.
const (
	nameRule  = "min=1"
	emailRule = "email"
)

// engine is safe for concurrent use and caches parsed rules.
var engine = playground.New(playground.WithRequiredStructEnabled())

// Validate returns the per-field markers and the overall flag for data.
// It is pure and deterministic.
func Validate(data domain.UserFormData) domain.UserFormValidation {
	v := domain.UserFormValidation{
		Name:  check(data.Name, nameRule),
		Email: check(data.Email, emailRule),
	}
	v.IsValid = v.Name == domain.FieldValid && v.Email == domain.FieldValid
	return v
}

func check(value, rule string) domain.FieldValidation {
	if err := engine.Var(value, rule); err != nil {
		return domain.FieldInvalid
	}
	return domain.FieldValid
}
