// Package validator validates request payloads with struct tags
// (go-playground/validator) and small hand-written rules, and reports
// failures as ValidationErrors that handlers render field by field.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field             string         `json:"field"`
	Message           string         `json:"message"`
	TranslationKey    string         `json:"-"`
	TranslationValues map[string]any `json:"-"`
}

// ValidationErrors collects every invalid field of a payload.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Translate rewrites messages in place using fn. Entries without a
// translation key keep their message. A nil fn is a no-op.
func (e ValidationErrors) Translate(fn func(key string, values map[string]any) string) {
	if fn == nil {
		return
	}
	for i := range e {
		if e[i].TranslationKey == "" {
			continue
		}
		e[i].Message = fn(e[i].TranslationKey, e[i].TranslationValues)
	}
}

// IsValidationError reports whether err wraps ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors wrapped in err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

var (
	engine     *playground.Validate
	engineOnce sync.Once

	indianMobile = regexp.MustCompile(`^(\+91)?[6-9][0-9]{9}$`)
)

func validate() *playground.Validate {
	engineOnce.Do(func() {
		engine = playground.New(playground.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = engine.RegisterValidation("in_mobile", func(fl playground.FieldLevel) bool {
			return indianMobile.MatchString(fl.Field().String())
		})
	})
	return engine
}

// Struct validates v using its `validate` tags. Field names in the result
// follow the `json` tags.
func Struct(v any) error {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fromFieldError(fe))
	}
	return out
}

func fromFieldError(fe playground.FieldError) ValidationError {
	field := fe.Field()
	values := map[string]any{"field": field}
	if fe.Param() != "" {
		values["param"] = fe.Param()
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "email":
		msg = "must be a valid email address"
	case "min":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		msg = "must be one of: " + fe.Param()
	case "in_mobile":
		msg = "must be a valid Indian mobile number"
	case "url":
		msg = "must be a valid URL"
	default:
		msg = "is invalid"
	}

	return ValidationError{
		Field:             field,
		Message:           msg,
		TranslationKey:    "validation." + fe.Tag(),
		TranslationValues: values,
	}
}

// Rule is a single hand-written check. It returns nil when the value is valid.
type Rule func() *ValidationError

// Apply runs rules in order and returns ValidationErrors with every failure.
func Apply(rules ...Rule) error {
	var out ValidationErrors
	for _, r := range rules {
		if fe := r(); fe != nil {
			out = append(out, *fe)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// RequiredString fails when value is blank after trimming.
func RequiredString(field, value string) Rule {
	return func() *ValidationError {
		if strings.TrimSpace(value) != "" {
			return nil
		}
		return &ValidationError{
			Field:             field,
			Message:           "is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		}
	}
}

// MinLenString fails when value has fewer than n runes.
func MinLenString(field, value string, n int) Rule {
	return func() *ValidationError {
		if utf8.RuneCountInString(value) >= n {
			return nil
		}
		return &ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %d characters long", n),
			TranslationKey:    "validation.min_length",
			TranslationValues: map[string]any{"field": field, "min": n},
		}
	}
}

// MaxLenString fails when value has more than n runes.
func MaxLenString(field, value string, n int) Rule {
	return func() *ValidationError {
		if utf8.RuneCountInString(value) <= n {
			return nil
		}
		return &ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %d characters long", n),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": n},
		}
	}
}

// MinNum fails when value is below minimum.
func MinNum[T ~int | ~int32 | ~int64 | ~float64](field string, value, minimum T) Rule {
	return func() *ValidationError {
		if value >= minimum {
			return nil
		}
		return &ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %v", minimum),
			TranslationKey:    "validation.min",
			TranslationValues: map[string]any{"field": field, "min": minimum},
		}
	}
}
