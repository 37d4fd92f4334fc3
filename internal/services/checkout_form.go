package services

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// CheckoutForm is the contact and shipping input submitted on the checkout page.
type CheckoutForm struct {
	FirstName           string `form:"first_name" validate:"required,max=50"`
	LastName            string `form:"last_name" validate:"required,max=50"`
	Email               string `form:"email" validate:"required,email,max=254"`
	Company             string `form:"company" validate:"max=100"`
	Address1            string `form:"address1" validate:"max=255"`
	Address2            string `form:"address2" validate:"max=255"`
	City                string `form:"city" validate:"max=100"`
	Country             string `form:"country" validate:"max=100"`
	Province            string `form:"province" validate:"max=100"`
	PostalCode          string `form:"postal_code" validate:"max=20"`
	Phone               string `form:"phone" validate:"max=15"`
	SpecialInstructions string `form:"special_instructions" validate:"max=1000"`
}

var (
	formValidator = newFormValidator()
	formPolicy    = bluemonday.StrictPolicy()
)

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize strips markup and surrounding whitespace from every field and
// falls back to fallbackEmail when no email was entered.
func (f CheckoutForm) Normalize(fallbackEmail string) CheckoutForm {
	clean := CheckoutForm{
		FirstName:           sanitizeField(f.FirstName),
		LastName:            sanitizeField(f.LastName),
		Email:               sanitizeField(f.Email),
		Company:             sanitizeField(f.Company),
		Address1:            sanitizeField(f.Address1),
		Address2:            sanitizeField(f.Address2),
		City:                sanitizeField(f.City),
		Country:             sanitizeField(f.Country),
		Province:            sanitizeField(f.Province),
		PostalCode:          sanitizeField(f.PostalCode),
		Phone:               sanitizeField(f.Phone),
		SpecialInstructions: sanitizeField(f.SpecialInstructions),
	}
	if clean.Email == "" {
		clean.Email = strings.TrimSpace(fallbackEmail)
	}
	return clean
}

// Validate returns a *ValidationError describing every rejected field.
func (f CheckoutForm) Validate() error {
	err := formValidator.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate checkout form: %w", err)
	}

	validationErr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fieldErr := range fieldErrs {
		validationErr.Fields[fieldErr.Field()] = fieldMessage(fieldErr)
	}
	return validationErr
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fieldErr.Param())
	default:
		return "Invalid value."
	}
}

const maxSanitizePasses = 4

// sanitizeField strips markup, including markup hidden behind HTML entities,
// and stores the plain text unescaped. It repeats until a pass changes
// nothing so that nested encodings cannot survive.
func sanitizeField(value string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(formPolicy.Sanitize(html.UnescapeString(value)))
		if next == value {
			return strings.TrimSpace(value)
		}
		value = next
	}
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(value))
}
