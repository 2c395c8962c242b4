package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// fieldMessages holds user-facing texts per "field.tag". Anything missing
// falls back to defaultMessage.
var fieldMessages = map[string]string{
	"symptoms.required": "Please describe your symptoms.",
	"symptoms.min":      "Please describe your symptoms in more detail.",
	"symptoms.max":      "Please keep your description under %s characters.",
	"language.required": "Please choose a language.",
	"language.oneof":    "Invalid language. Expected one of: en, hi, bn.",
	"text.required":     "Text to speak is required.",
	"text.max":          "Text must be at most %s characters.",
	"audio.required":    "An audio recording is required.",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateInput runs struct validation and converts failures into a
// ValidationError.
func validateInput(v *validator.Validate, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	fields := make(map[string][]string)
	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = append(fields[name], messageFor(name, fe.Tag(), fe.Param()))
	}
	return &ValidationError{Fields: fields}
}

func messageFor(field, tag, param string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		if strings.Contains(msg, "%s") {
			return fmt.Sprintf(msg, param)
		}
		return msg
	}
	return defaultMessage(field, tag, param)
}

func defaultMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, param)
	default:
		return field + " is invalid."
	}
}
