package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden     ErrorType = "FORBIDDEN"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal      ErrorType = "EXTERNAL_ERROR"
	ErrorTypeConfiguration ErrorType = "CONFIGURATION_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeFieldTooLong     ErrorCode = "FIELD_TOO_LONG"
	ErrCodeRequired         ErrorCode = "REQUIRED"
	ErrCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"

	ErrCodeInvalidCredential         ErrorCode = "INVALID_CREDENTIAL"
	ErrCodeMissingIdentityAttribute  ErrorCode = "MISSING_IDENTITY_ATTRIBUTE"
	ErrCodeAccountInactive           ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeInvalidToken              ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired              ErrorCode = "TOKEN_EXPIRED"
	ErrCodeUnauthorized              ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden                 ErrorCode = "FORBIDDEN"
	ErrCodeAccountNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeConflict                  ErrorCode = "CONFLICT"
	ErrCodeConfiguration             ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeInternal                  ErrorCode = "INTERNAL_ERROR"
	ErrCodeGatewayRejected           ErrorCode = "GATEWAY_REJECTED"
	ErrCodeGatewayUnavailable        ErrorCode = "GATEWAY_UNAVAILABLE"
	ErrCodeInvalidWebhookSignature   ErrorCode = "INVALID_WEBHOOK_SIGNATURE"
	ErrCodeUnsupportedWebhookPayload ErrorCode = "UNSUPPORTED_WEBHOOK_PAYLOAD"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins field messages of a validation failure into one line.
func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewConfigurationError reports a server-side setting that is missing when a request needs it.
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConfiguration,
		Code:       ErrCodeConfiguration,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewInvalidCredentialError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       ErrCodeInvalidCredential,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Cause:      cause,
	}
}

func NewGatewayRejectedError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeGatewayRejected,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

func NewGatewayUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeGatewayUnavailable,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Shared sentinels are compared with errors.Is and must never be mutated.
var (
	ErrMissingCredential = &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeInvalidCredential,
		Message:    "Missing Google credential",
		StatusCode: http.StatusBadRequest,
	}
	ErrMissingEmail          = NewUnauthorizedError("Google account is missing an email address", ErrCodeMissingIdentityAttribute)
	ErrIdentityNotConfigured = NewConfigurationError("Google client ID is not configured")
	ErrGatewayNotConfigured  = NewConfigurationError("Razorpay credentials are not configured")
	ErrWebhookNotConfigured  = NewConfigurationError("Razorpay webhook secret is not configured")

	ErrAccountInactive      = NewForbiddenError("Account is inactive", ErrCodeAccountInactive)
	ErrAccountNotFound      = NewNotFoundError("Account not found", ErrCodeAccountNotFound)
	ErrAccountConflict      = NewConflictError("Account was modified concurrently, please retry", ErrCodeConflict)
	ErrInvalidToken         = NewUnauthorizedError("Token is invalid or expired", ErrCodeInvalidToken)
	ErrTokenExpired         = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrAuthenticationNeeded = NewUnauthorizedError("Authentication credentials were not provided", ErrCodeUnauthorized)

	ErrInvalidWebhookSignature = NewUnauthorizedError("Invalid webhook signature", ErrCodeInvalidWebhookSignature)
)

// IsAppError unwraps err until it finds an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
