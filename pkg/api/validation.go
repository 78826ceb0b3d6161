package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// formatValidationError turns the first go-playground/validator failure
// into a message safe to send a client, instead of the library's default
// Go-struct-shaped error string.
func formatValidationError(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return err.Error()
	}

	e := validationErrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: field is required", e.Field())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", e.Field(), e.Param())
	case "len":
		return fmt.Sprintf("%s: must be exactly %s characters", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s: validation failed (%s)", e.Field(), e.Tag())
	}
}
