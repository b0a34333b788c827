// Package errors defines custom error types and error handling utilities for the RiskScore-360 service.
// This package provides structured error types that carry a machine-readable code and an HTTP status.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/turtacn/riskscore360/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the machine-readable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() constants.ErrorCode { return e.code }

func (e *baseError) HTTPStatus() int { return e.httpStatus }

func (e *baseError) Description() string { return e.description }

func (e *baseError) Unwrap() error { return e.cause }

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new AppError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrMissingInput creates a missing_input error. It is the only fatal
// condition of the scoring engine: a nil raw signal document.
func ErrMissingInput(message string) AppError {
	return NewError(
		constants.ErrCodeMissingInput,
		http.StatusBadRequest,
		"No raw signal document was supplied.",
		message,
	)
}

// ErrMissingInputFile creates a missing_input error naming the expected file
// and how to produce it.
func ErrMissingInputFile(path string) AppError {
	msg := fmt.Sprintf("missing input file: %s\ngenerate it with the signal collector, e.g.\n  collect_real_inputs > %s", path, path)
	return ErrMissingInput(msg).WithMetadata("path", path)
}

// ErrInvalidDocument creates an invalid_document error
func ErrInvalidDocument(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidDocument,
		http.StatusBadRequest,
		"The raw signal document is not a decodable JSON object.",
		message,
	)
}

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter, includes an invalid parameter value, or is otherwise malformed.",
		message,
	)
}

// ErrReportNotFound creates a report_not_found error
func ErrReportNotFound(reportID string) AppError {
	return NewError(
		constants.ErrCodeReportNotFound,
		http.StatusNotFound,
		"The requested report does not exist or has expired.",
		fmt.Sprintf("report not found: %s", reportID),
	).WithMetadata("report_id", reportID)
}

// ErrEmitFailed creates an emit_failed error
func ErrEmitFailed(emitter string, cause error) AppError {
	return NewError(
		constants.ErrCodeEmitFailed,
		http.StatusBadGateway,
		"The report could not be delivered to a downstream consumer.",
		fmt.Sprintf("emitter %s failed", emitter),
	).WithCause(cause).WithMetadata("emitter", emitter)
}

// ErrInvalidConfig creates an invalid_config error
func ErrInvalidConfig(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidConfig,
		http.StatusInternalServerError,
		"The service configuration is invalid.",
		message,
	)
}

// ErrInternal creates a server_error error
func ErrInternal(message string) AppError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition that prevented it from fulfilling the request.",
		message,
	)
}

// ================================================================================
// Error Utilities
// ================================================================================

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// WrapError wraps a generic error into an AppError
func WrapError(err error, code constants.ErrorCode, message string) AppError {
	var httpStatus int

	switch code {
	case constants.ErrCodeMissingInput, constants.ErrCodeInvalidDocument,
		constants.ErrCodeInvalidRequest:
		httpStatus = http.StatusBadRequest
	case constants.ErrCodeReportNotFound:
		httpStatus = http.StatusNotFound
	case constants.ErrCodeEmitFailed:
		httpStatus = http.StatusBadGateway
	default:
		httpStatus = http.StatusInternalServerError
	}

	return NewError(code, httpStatus, err.Error(), message).WithCause(err)
}

// IsMissingInput reports whether err is a missing_input error
func IsMissingInput(err error) bool {
	return hasCode(err, constants.ErrCodeMissingInput)
}

// IsClientError reports whether err should be attributed to the caller (4xx)
func IsClientError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		status := appErr.HTTPStatus()
		return status >= 400 && status < 500
	}
	return false
}

func hasCode(err error, code constants.ErrorCode) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == code
	}
	return false
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Message          string                 `json:"message,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error to an ErrorResponse
func ToErrorResponse(err error) *ErrorResponse {
	if appErr, ok := AsAppError(err); ok {
		return &ErrorResponse{
			Error:            string(appErr.Code()),
			ErrorDescription: appErr.Description(),
			Message:          appErr.Error(),
			Metadata:         appErr.Metadata(),
		}
	}

	// Fallback to generic server error
	return &ErrorResponse{
		Error:            string(constants.ErrCodeServerError),
		ErrorDescription: "An unexpected error occurred",
	}
}

// HTTPStatusOf returns the HTTP status carried by err, or 500
func HTTPStatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
