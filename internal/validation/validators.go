package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/yashmitb/CleanPlate/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Report JSON field names instead of Go field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := Validate.RegisterValidation("waste_value", validateWasteValue); err != nil {
		panic(fmt.Sprintf("failed to register waste_value validator: %v", err))
	}
}

// validateWasteValue accepts low, medium or high in any case.
func validateWasteValue(fl validator.FieldLevel) bool {
	switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
	case models.WasteValueLow, models.WasteValueMedium, models.WasteValueHigh:
		return true
	default:
		return false
	}
}

// ValidateWasteAnalysis checks a waste analysis payload against its schema.
// The returned error is a *models.ValidationError naming the first bad field.
func ValidateWasteAnalysis(a *models.WasteAnalysis) error {
	if a == nil {
		return models.NewValidationError("waste_analysis", "is required")
	}
	return structError(Validate.Struct(a))
}

// Struct validates any request struct and converts the result into a
// *models.ValidationError.
func Struct(v any) error {
	return structError(Validate.Struct(v))
}

func structError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.TrimPrefix(fe.Namespace(), rootNamespace(fe))
		return models.NewValidationError(field, reasonFor(fe))
	}
	return models.NewValidationError("", err.Error())
}

// rootNamespace returns the struct name prefix of a field namespace.
func rootNamespace(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[:i+1]
	}
	return ""
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "waste_value":
		return "must be one of low, medium, high"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
