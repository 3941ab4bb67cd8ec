package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
)

var validate = newValidator()

// fieldMessages renders one failed rule. The first %s is the json field name,
// the second the rule parameter.
var fieldMessages = map[string]string{
	"required": "%s is required",
	"notblank": "%s is required",
	"gt":       "%s must be greater than %s",
	"oneof":    "%s must be one of [%s]",
	"iso4217":  "%s must be an ISO 4217 currency code",
	"max":      "%s must be at most %s",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// ValidateStruct checks the validate tags of s. All failures are reported
// together in the details of one validation error.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.NewValidationError("Validation failed", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	tmpl, ok := fieldMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed validation for '%s'", fe.Field(), fe.Tag())
	}
	if fe.Tag() == "max" && fe.Kind() == reflect.String {
		tmpl += " characters long"
	}
	if strings.Count(tmpl, "%s") == 1 {
		return fmt.Sprintf(tmpl, fe.Field())
	}
	return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
}
