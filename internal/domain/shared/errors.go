package shared

import "errors"

// Error code constants, format ERR_<CATEGORY>[_<DESCRIPTION>].
const (
	// ErrCodeValidation marks local input violations that never reach the network.
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeAuthRequired marks actions attempted without a session.
	ErrCodeAuthRequired = "ERR_AUTH_REQUIRED"
	// ErrCodeCredential marks registration failures (email taken, weak password).
	ErrCodeCredential = "ERR_CREDENTIAL"
	// ErrCodeAuth marks sign-in failures (bad credentials, disabled account).
	ErrCodeAuth = "ERR_AUTH"
	// ErrCodeNetwork marks transport failures; local state stays unchanged.
	ErrCodeNetwork = "ERR_NETWORK"
	// ErrCodeRejected marks business rejections; the message is server-authored
	// and shown verbatim.
	ErrCodeRejected = "ERR_REJECTED"
	// ErrCodeNotFound marks missing resources.
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeInvalidState marks operations not allowed in the current state.
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// DomainError carries a stable code alongside a human-readable message.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewValidationError creates a validation error naming the violated rule.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: ErrCodeValidation, Message: message}
}

// NewRejection wraps a server-authored rejection message verbatim.
func NewRejection(message string) *DomainError {
	return &DomainError{Code: ErrCodeRejected, Message: message}
}

// WrapNetworkError classifies a transport failure, keeping the cause for logs.
func WrapNetworkError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeNetwork,
		Message: "request failed, please try again",
		cause:   err,
	}
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool { return HasCode(err, ErrCodeValidation) }

// IsAuthRequired reports whether err means the user must sign in first.
func IsAuthRequired(err error) bool { return HasCode(err, ErrCodeAuthRequired) }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return HasCode(err, ErrCodeNetwork) }

// IsRejection reports whether err is a server-side business rejection.
func IsRejection(err error) bool { return HasCode(err, ErrCodeRejected) }

// Common domain errors.
var (
	ErrNotFound     = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrAuthRequired = NewDomainError(ErrCodeAuthRequired, "Please log in to continue")
	ErrInvalidState = NewDomainError(ErrCodeInvalidState, "Operation not allowed in current state")
)
