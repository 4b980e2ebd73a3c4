package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

// Error names every failing field so log lines and error chains stay
// useful without the structured slice.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, fmt.Sprintf("%s %s", e.Field, e.Message))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validator wraps go-playground/validator with the portal's custom rules.
type Validator struct {
	validate *validator.Validate
}

var courseCodeRe = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

// New creates a validator with all custom rules registered.
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

// Validate validates a struct and returns every failing field.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errors ValidationErrors
	for _, fe := range err.(validator.ValidationErrors) {
		errors = append(errors, ValidationError{
			Field:   jsonFieldName(fe),
			Message: getErrorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errors
}

func (v *Validator) registerRules() {
	// Course codes are uppercase alphanumeric, 2-10 chars
	v.validate.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		return courseCodeRe.MatchString(fl.Field().String())
	})

	// 10-digit phone numbers
	v.validate.RegisterValidation("phone_number", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})

	// Passwords need at least 6 chars with one upper, one lower and one digit
	v.validate.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		if len(password) < 6 {
			return false
		}
		var hasUpper, hasLower, hasDigit bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		return hasUpper && hasLower && hasDigit
	})

	// Course credits between 1 and 6
	v.validate.RegisterValidation("course_credits", func(fl validator.FieldLevel) bool {
		credits := fl.Field().Int()
		return credits >= 1 && credits <= 6
	})

	// Ratings are integers 1..5
	v.validate.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		rating := fl.Field().Int()
		return rating >= 1 && rating <= 5
	})
}

func jsonFieldName(fe validator.FieldError) string {
	// Field() returns the Go field name; the API speaks camelCase
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "course_code":
		return "must be 2-10 uppercase letters or digits"
	case "phone_number":
		return "must be a 10-digit phone number"
	case "strong_password":
		return "must be at least 6 characters with uppercase, lowercase and a number"
	case "course_credits":
		return "must be between 1 and 6"
	case "rating":
		return "must be between 1 and 5"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("validation failed for rule '%s'", fe.Tag())
	}
}
