package httpx

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the request fields that failed struct-tag checks.
type ValidationError struct {
	Missing []string // fields that failed `required`
	Invalid []string // fields that failed any other rule
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required field(s): "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid field(s): "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// HasMissing reports whether any field failed the `required` rule.
func (e *ValidationError) HasMissing() bool { return len(e.Missing) > 0 }

// Validate runs `validate` struct tags on v. Field names are reported by their
// `json` tag so messages match what the client sent.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			out.Missing = append(out.Missing, fe.Field())
		} else {
			out.Invalid = append(out.Invalid, fe.Field())
		}
	}
	return out
}

func init() {
	validate.RegisterTagNameFunc(jsonFieldName)
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}
