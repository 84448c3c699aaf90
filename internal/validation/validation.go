// Package validation wraps go-playground/validator with the rules and the
// error formatting shared by the domain services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
)

// Messages overrides the default message for a field ("price") or for a
// field/tag pair ("image.imageuri"). Keys use the JSON field name.
type Messages map[string]string

// New returns a validator that reports JSON field names and knows the
// imageuri rule.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("imageuri", func(fl validator.FieldLevel) bool {
		return IsImageURI(fl.Field().String())
	})
	return v
}

// IsImageURI accepts http(s) URLs and base64 data URIs by prefix only.
// Base64 payloads can be megabytes long, so nothing past the prefix is parsed.
func IsImageURI(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http") || strings.HasPrefix(lower, "data:image")
}

// Struct validates s and converts any failure into an *apperror.ValidationError
// listing every violated field.
func Struct(v *validator.Validate, s any, msgs Messages) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validation: %w", err)
	}

	ve := apperror.NewValidationError()
	seen := make(map[string]bool)
	for _, fe := range validationErrors {
		field := fieldPath(fe)
		if seen[field] {
			continue
		}
		seen[field] = true
		ve.Add(field, message(fe, field, msgs))
	}
	return ve
}

// fieldPath strips the root struct name and element indexes:
// "Input.sizes[0]" becomes "sizes", "PlaceInput.shippingAddress.city" becomes "shippingAddress.city".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	var b strings.Builder
	depth := 0
	for _, r := range ns {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func message(fe validator.FieldError, field string, msgs Messages) string {
	if m, ok := msgs[field+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[field]; ok {
		return m
	}
	return defaultMessage(fe, field)
}

func defaultMessage(fe validator.FieldError, field string) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Field '%s' must be at least %s characters long", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Field '%s' must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("Field '%s' must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Field '%s' cannot exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("Field '%s' must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("Field '%s' must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("Field '%s' must be less than or equal to %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of: %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("Field '%s' must match '%s'", field, fe.Param())
	case "imageuri":
		return fmt.Sprintf("Field '%s' must be a URL (http/https) or base64 data (data:image...)", field)
	default:
		return fmt.Sprintf("Field '%s' is invalid", field)
	}
}
