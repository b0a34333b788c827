package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/turtacn/riskscore360/pkg/errors"
)

// Validator holds the singleton instance of the validator.
var defaultValidator *validator.Validate

func init() {
	defaultValidator = validator.New()
	// Register custom validation functions
	_ = defaultValidator.RegisterValidation("report_id", validateReportID)
}

// ValidateStruct validates a struct using the default validator.
// It returns an invalid_request AppError listing every failing field.
func ValidateStruct(s interface{}) errors.AppError {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidRequest(err.Error())
	}

	problems := make([]string, 0, len(validationErrors))
	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		field := toSnakeCase(fe.Field())
		details[field] = formatValidationError(fe)
		problems = append(problems, field+" "+details[field])
	}

	appErr := errors.ErrInvalidRequest("validation failed: " + strings.Join(problems, "; "))
	for field, msg := range details {
		appErr.WithMetadata(field, msg)
	}
	return appErr
}

// ValidateReportID reports whether id is a well-formed report identifier.
func ValidateReportID(id string) bool {
	return defaultValidator.Var(id, "report_id") == nil
}

// validateReportID accepts canonical UUID strings only.
func validateReportID(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}

// formatValidationError creates a user-friendly error message for a validation error.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "report_id":
		return "must be a valid report ID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "hostname_port":
		return "must be a host:port address"
	default:
		return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
	}
}

var (
	matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// toSnakeCase converts a string from CamelCase to snake_case.
// This is used to format field names in the validation error response.
func toSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}
