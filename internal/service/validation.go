package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

var deptCodePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// NewValidator returns a validator that reports json field names and knows the campus rules.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("deptcode", func(fl validator.FieldLevel) bool {
		return deptCodePattern.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})
	return v
}

// validationError converts validator output into a client-facing message for the first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return "Please enter a valid email address."
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s items.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s can have at most %s items.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range.", field)
	case "http_url":
		return fmt.Sprintf("%s must be a valid http or https link.", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "deptcode":
		return "Department code may contain only letters and digits."
	}
	return fmt.Sprintf("%s is invalid.", field)
}
