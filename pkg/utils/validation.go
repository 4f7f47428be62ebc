package utils

import (
	"fmt"
	"strings"

	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct validates a struct against its validation tags and
// returns a validation error carrying one message per failed field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.NewValidationError(err.Error())
	}

	details := make(map[string]interface{}, len(fieldErrors))
	msgs := make([]string, 0, len(fieldErrors))
	for _, e := range fieldErrors {
		field := strings.ToLower(e.Field())
		msg := fieldMessage(field, e)
		details[field] = msg
		msgs = append(msgs, msg)
	}

	return pkgerrors.NewValidationError(strings.Join(msgs, "; ")).WithDetails(details)
}

// fieldMessage renders one failed tag as a client-facing message.
// Lengths are rune counts, which matters for Korean input.
func fieldMessage(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
