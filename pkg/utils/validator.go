package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator instance.
type Validator struct {
	validator *validator.Validate
}

// NewValidator returns a Validator with the custom rules registered.
func NewValidator() *Validator {
	v := validator.New()

	// Passwords need at least one uppercase letter and one digit.
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		return regexp.MustCompile(`[A-Z]`).MatchString(pw) && regexp.MustCompile(`[0-9]`).MatchString(pw)
	})

	// Report field names from json tags so errors match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validator: v}
}

// Validate checks the input struct and returns a CustomError carrying
// `{field, message}` entries, or nil when the struct is valid.
func (v *Validator) Validate(str interface{}) *CustomError {
	err := v.validator.Struct(str)
	if err == nil {
		return nil
	}

	out := NewError(400, "Validation error")
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range validationErrors {
			out.Errors = append(out.Errors, FieldError{
				Field:   verr.Field(),
				Message: getErrorMessage(verr.Field(), verr.Tag(), verr.Param()),
			})
		}
	}
	return out
}

func getErrorMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "email":
		return "Invalid email format"
	case "password":
		return fmt.Sprintf("%s must contain at least one uppercase letter and one number", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, param)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, tag)
	}
}
