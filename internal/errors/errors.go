package errors

import (
	"errors"
	"fmt"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeDuplicateContact = "DUPLICATE_CONTACT"
	CodeEmptyCart        = "EMPTY_CART"
	CodeInvalidStatus    = "INVALID_STATUS"
)

// ErrInvalidToken is wrapped by every token verification failure.
var ErrInvalidToken = errors.New("invalid token")

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Code    string
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return NewCodedValidationError(CodeValidation, message, details...)
}

func NewCodedValidationError(code, message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// HasCode reports whether err is a ValidationError carrying code.
func HasCode(err error, code string) bool {
	ve, ok := IsValidationError(err)
	return ok && ve.Code == code
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// UnauthenticatedError means the caller has no usable identity and should log in again.
type UnauthenticatedError struct {
	Message string
	Cause   error
}

func (e *UnauthenticatedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UnauthenticatedError) Unwrap() error {
	return e.Cause
}

func NewUnauthenticatedError(message string, cause error) *UnauthenticatedError {
	return &UnauthenticatedError{
		Message: message,
		Cause:   cause,
	}
}

func IsUnauthenticatedError(err error) (*UnauthenticatedError, bool) {
	var ue *UnauthenticatedError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// ForbiddenError means the caller is known but lacks the required role.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// InternalError wraps infrastructure failures. Callers may retry.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
