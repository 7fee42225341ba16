// Package validation turns binding failures into per-field error messages
// suitable for API responses.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// messages maps validation tags to message templates. Templates with two
// placeholders receive the field name and the tag parameter.
var messages = map[string]string{
	"required": "The field '%s' is required.",
	"min":      "The field '%s' must be at least %s.",
	"max":      "The field '%s' must be at most %s.",
	"gte":      "The field '%s' must be greater than or equal to %s.",
	"lte":      "The field '%s' must be less than or equal to %s.",
	"oneof":    "The field '%s' must be one of: %s.",
}

func message(field string, e validator.FieldError) string {
	if msg, ok := messages[e.Tag()]; ok {
		if strings.Count(msg, "%s") == 2 {
			return fmt.Sprintf(msg, field, e.Param())
		}
		return fmt.Sprintf(msg, field)
	}
	return fmt.Sprintf("The field '%s' is invalid: %s.", field, e.Tag())
}

// FieldErrors maps each failed field of a bound struct to a friendly
// message, keyed by the field's json or form tag. It returns nil when err
// holds no field-level validation errors.
func FieldErrors(s any, err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	structType := reflect.TypeOf(s)
	for structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	out := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		name := e.Field()
		if field, ok := structType.FieldByName(e.StructField()); ok {
			name = wireName(field)
		}
		out[name] = message(name, e)
	}
	return out
}

func wireName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		if value := field.Tag.Get(tag); value != "" && value != "-" {
			return strings.Split(value, ",")[0]
		}
	}
	return field.Name
}
