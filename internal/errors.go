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
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount       ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidPaymentKind  ErrorCode = "INVALID_PAYMENT_KIND"
	ErrCodeInvalidContribution ErrorCode = "INVALID_CONTRIBUTION"
	ErrCodeInvalidID           ErrorCode = "INVALID_ID"
	ErrCodeInvalidStatus       ErrorCode = "INVALID_PROJECT_STATUS"

	ErrCodeProjectNotFound           ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeProjectNotComplete        ErrorCode = "PROJECT_NOT_COMPLETE"
	ErrCodePaymentNotFound           ErrorCode = "PAYMENT_NOT_FOUND"
	ErrCodeAdminRepaymentNotFound    ErrorCode = "ADMIN_REPAYMENT_NOT_FOUND"
	ErrCodeAdminReinvestmentNotFound ErrorCode = "ADMIN_REINVESTMENT_NOT_FOUND"
	ErrCodeCannotDeleteDerived       ErrorCode = "CANNOT_DELETE_DERIVED"
	ErrCodeInsufficientPool          ErrorCode = "INSUFFICIENT_POOL"

	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"

	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInsufficientAccess ErrorCode = "INSUFFICIENT_PERMISSIONS"
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

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so sentinels survive WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy carrying cause; sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
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
		Message:    "Validation failed",
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

// NewInvariantViolation flags a broken ledger post-condition. It is a
// defect, never a user error, and must abort the enclosing transaction.
func NewInvariantViolation(format string, args ...any) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInvariantViolation,
		Message:    fmt.Sprintf("ledger invariant violated: "+format, args...),
		StatusCode: http.StatusInternalServerError,
	}
}

var (
	ErrProjectNotFound           = NewNotFoundError("Project not found", ErrCodeProjectNotFound)
	ErrProjectNotComplete        = NewConflictError("Project must be completed before it can be repaid", ErrCodeProjectNotComplete)
	ErrInvalidProjectStatus      = NewConflictError("Project status does not allow this transition", ErrCodeInvalidStatus)
	ErrPaymentNotFound           = NewNotFoundError("Payment not found", ErrCodePaymentNotFound)
	ErrAdminRepaymentNotFound    = NewNotFoundError("Admin repayment not found", ErrCodeAdminRepaymentNotFound)
	ErrAdminReinvestmentNotFound = NewNotFoundError("Admin reinvestment not found", ErrCodeAdminReinvestmentNotFound)
	ErrCannotDeleteDerived       = NewConflictError("Payment is owned by an admin reinvestment; delete the reinvestment instead", ErrCodeCannotDeleteDerived)
	ErrInsufficientPool          = NewConflictError("Reinvestment amount exceeds the available reinvestment pool", ErrCodeInsufficientPool)
	ErrInvalidContribution       = NewValidationError("Contributions and totals must not be negative", ErrCodeInvalidContribution)
	ErrInvariantViolation        = NewInvariantViolation("post-condition failed")

	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInsufficientAccess = NewForbiddenError("Insufficient permissions", ErrCodeInsufficientAccess)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
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
