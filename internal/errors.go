package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive     ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeUnauthenticated     ErrorCode = "UNAUTHENTICATED"
	ErrCodeRoleForbidden       ErrorCode = "ROLE_FORBIDDEN"
	ErrCodeDepartmentForbidden ErrorCode = "DEPARTMENT_FORBIDDEN"
	ErrCodeNoDepartment        ErrorCode = "NO_DEPARTMENT_ASSIGNED"
	ErrCodeIdentityMismatch    ErrorCode = "IDENTITY_MISMATCH"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeCourseNotFound     ErrorCode = "COURSE_NOT_FOUND"
	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"

	ErrCodeDuplicateTitle ErrorCode = "DUPLICATE_TITLE"
	ErrCodeDuplicateEmail ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeDuplicateCode  ErrorCode = "DUPLICATE_CODE"
)

// AppError is the error shape every layer funnels into. Handlers convert it to a
// JSON body of the form {message, errors?} where errors is a field -> messages map.
type AppError struct {
	Type       ErrorType
	Code       ErrorCode
	Message    string
	Fields     FieldErrors
	Extra      map[string]any
	StatusCode int
	Cause      error
}

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

func (e *AppError) Error() string {
	if len(e.Fields) > 0 {
		var parts []string
		for field, msgs := range e.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithExtra attaches additional response fields (e.g. required_roles) to a copy
// of the error, so shared sentinels are never mutated.
func (e *AppError) WithExtra(extra map[string]any) *AppError {
	clone := *e
	clone.Extra = extra
	return &clone
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	body := map[string]any{"message": e.Message}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	}
	for k, v := range e.Extra {
		body[k] = v
	}
	return json.Marshal(body)
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewValidationFieldError(field, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    message,
		Fields:     FieldErrors{field: []string{message}},
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewFieldErrors(message string, fields FieldErrors) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    message,
		Fields:     fields,
		StatusCode: http.StatusUnprocessableEntity,
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

func NewUnauthenticatedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials = NewUnauthenticatedError("Invalid credentials", ErrCodeInvalidCredentials)
	ErrAccountInactive    = NewForbiddenError("Your account is inactive. Please contact administrator.", ErrCodeAccountInactive)
	ErrUnauthenticated    = NewUnauthenticatedError("Unauthenticated", ErrCodeUnauthenticated)
	ErrInvalidToken       = NewUnauthenticatedError("Invalid token", ErrCodeInvalidToken)
	ErrNoDepartment       = NewForbiddenError("No department assigned to your account. Please contact administrator.", ErrCodeNoDepartment)
	ErrIdentityMismatch   = NewConflictError("Google account email does not match your account email.", ErrCodeIdentityMismatch)

	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrCourseNotFound     = NewNotFoundError("Course not found or not accessible.", ErrCodeCourseNotFound)
	ErrDepartmentNotFound = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)

	ErrDuplicateTitle = NewConflictError("Course title already exists. Please use a different title.", ErrCodeDuplicateTitle)
	ErrDuplicateEmail = NewConflictError("Email is already registered.", ErrCodeDuplicateEmail)
	ErrDuplicateCode  = NewConflictError("Department code already exists.", ErrCodeDuplicateCode)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}
