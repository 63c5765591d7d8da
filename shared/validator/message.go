package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required": "{field} is required",
		"gte":      "{field} must be greater than or equal to {param}",
		"lte":      "{field} must be less than or equal to {param}",
		"oneof":    "{field} must be one of {param}",
		"max":      "{field} must be less than or equal to {param}",
		"min":      "{field} must be greater than or equal to {param}",
		"email":    "{field} must be a valid email address",
		"mobile":   "{field} must be a valid mobile number",
		"date":     "{field} must be a date formatted as YYYY-MM-DD",
		"gt":       "{field} must be greater than {param}",
		"unique":   "{field} must not contain duplicates",
		"dive":     "{field} contains an invalid item",
		"nefield":  "{field} must differ from {param}",

		"required_without": "{field} is required when {param} is not provided",
	}
)

// message renders the first validation error with a known tag, falling back to the library text.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		template, ok := messages[valErr.Tag()]
		if !ok {
			continue
		}

		field := valErr.Field()
		if field == "" {
			field = "value"
		}

		return strings.NewReplacer("{field}", field, "{param}", valErr.Param()).Replace(template)
	}

	return valErrors.Error()
}
