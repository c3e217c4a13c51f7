package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var callIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// ValidateCallID validates call ID format: 3-64 characters, alphanumeric with hyphens and underscores
func ValidateCallID(fl validator.FieldLevel) bool {
	return callIDRegex.MatchString(fl.Field().String())
}
