// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("shopify_gid", validateShopifyGID)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateShopifyGID(fl validator.FieldLevel) bool {
	return strings.HasPrefix(fl.Field().String(), "gid://shopify/")
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

// FieldErrorsFromValidation converts validator output into the structured
// {field, message} list the action endpoints return.
func FieldErrorsFromValidation(err error) []FieldError {
	var fieldErrors []FieldError
	for _, e := range GetValidationErrors(err) {
		fieldErrors = append(fieldErrors, FieldError{Field: e.Field, Message: e.Message})
	}
	return fieldErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "shopify_gid":
		return e.Field() + " must be a Shopify global id"
	case "dive":
		return e.Field() + " contains invalid entries"
	default:
		return e.Field() + " is invalid"
	}
}
