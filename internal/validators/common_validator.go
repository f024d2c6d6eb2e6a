package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"loyaltycard/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

// now is swapped in tests.
var now = time.Now

func init() {
	validate = validator.New()

	// Report fields by their JSON name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validation functions
	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("calendar_date", validateCalendarDate)
	validate.RegisterValidation("not_future_date", validateNotFutureDate)
	validate.RegisterValidation("scan_mode", validateScanMode)
}

// Common validation errors
var (
	ErrInvalidObjectID    = errors.New("invalid object ID format")
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")
	ErrInvalidDate        = errors.New("invalid date")
)

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Details flattens the errors for the API error envelope.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		if _, seen := details[err.Field]; !seen {
			details[err.Field] = err.Message
		}
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return ValidationErrors{{Field: "request", Tag: "invalid", Message: err.Error()}}
		}
		for _, err := range fieldErrors {
			validationError := ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "phone_number":
		return "Invalid phone number format"
	case "calendar_date":
		return "Date must be formatted as YYYY-MM-DD"
	case "not_future_date":
		return "Date cannot be in the future"
	case "scan_mode":
		return "Mode must be visit or redemption"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

// Custom validation functions
func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	return utils.IsValidPhone(phone)
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := utils.ParseDate(value)
	return err == nil
}

// validateNotFutureDate accepts any date up to the end of the current day.
// Unparseable values pass here and are reported by calendar_date.
func validateNotFutureDate(fl validator.FieldLevel) bool {
	var date time.Time
	switch v := fl.Field().Interface().(type) {
	case time.Time:
		date = v
	case string:
		if v == "" {
			return true
		}
		parsed, err := utils.ParseDate(v)
		if err != nil {
			return true
		}
		date = parsed
	default:
		return false
	}

	current := now()
	// Calendar dates parse as UTC midnight; compare in the same zone.
	if date.Location() == time.UTC {
		current = current.UTC()
	}
	return !date.After(utils.EndOfDay(current))
}

func validateScanMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "visit", "redemption":
		return true
	default:
		return false
	}
}

// Helper functions for common validations
func IsValidObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func SanitizeInput(input string) string {
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(input))
}
