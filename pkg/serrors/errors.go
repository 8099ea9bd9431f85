package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Base is a coded error suitable for surfacing over the API boundary.
type Base struct {
	Code    string
	Message string
}

func (e *Base) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message string) *Base {
	return &Base{Code: code, Message: message}
}

// ValidationErrors maps DTO field names to human-readable messages.
type ValidationErrors map[string]string

// ProcessValidatorErrors flattens go-playground validator errors into
// per-field messages.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, err := range errs {
		switch err.Tag() {
		case "required":
			out[err.Field()] = fmt.Sprintf("%s is required", err.Field())
		case "email":
			out[err.Field()] = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "min":
			out[err.Field()] = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			out[err.Field()] = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		default:
			out[err.Field()] = fmt.Sprintf("%s is invalid", err.Field())
		}
	}
	return out
}
