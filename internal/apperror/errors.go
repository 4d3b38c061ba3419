package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error
type Kind int

const (
	KindInternal Kind = iota
	KindAuthenticationRequired
	KindInvalidCredential
	KindTenantContextMissing
	KindInsufficientPermissions
	KindNotFound
	KindValidationFailure
	KindDuplicateKey
	KindTenantNotFound
	KindTenantInactive
	KindTenantRequired
	KindTooManyAttempts
)

// Status classes reported to callers in the "code" field
const (
	ClassAuthenticationRequired = "authentication_required"
	ClassForbidden              = "forbidden"
	ClassNotFound               = "not_found"
	ClassValidationFailure      = "validation_failure"
	ClassConflict               = "conflict"
	ClassTooManyRequests        = "too_many_requests"
	ClassInternal               = "internal"
)

var kindNames = map[Kind]string{
	KindInternal:                "internal",
	KindAuthenticationRequired:  "authentication_required",
	KindInvalidCredential:       "invalid_credential",
	KindTenantContextMissing:    "tenant_context_missing",
	KindInsufficientPermissions: "insufficient_permissions",
	KindNotFound:                "not_found",
	KindValidationFailure:       "validation_failure",
	KindDuplicateKey:            "duplicate_key",
	KindTenantNotFound:          "tenant_not_found",
	KindTenantInactive:          "tenant_inactive",
	KindTenantRequired:          "tenant_required",
	KindTooManyAttempts:         "too_many_attempts",
}

// String returns the snake_case name of the kind, used as a metrics label
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status returns the HTTP status code for the kind
func (k Kind) Status() int {
	switch k {
	case KindAuthenticationRequired, KindInvalidCredential:
		return http.StatusUnauthorized
	case KindTenantContextMissing, KindInsufficientPermissions, KindTenantInactive:
		return http.StatusForbidden
	case KindNotFound, KindTenantNotFound:
		return http.StatusNotFound
	case KindValidationFailure, KindTenantRequired:
		return http.StatusBadRequest
	case KindDuplicateKey:
		return http.StatusConflict
	case KindTooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Class returns the machine-checkable status class for the kind
func (k Kind) Class() string {
	return ClassForStatus(k.Status())
}

// ClassForStatus maps an HTTP status code to its status class. Client
// errors without a dedicated class count as validation failures.
func ClassForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return ClassAuthenticationRequired
	case status == http.StatusForbidden:
		return ClassForbidden
	case status == http.StatusNotFound:
		return ClassNotFound
	case status == http.StatusConflict:
		return ClassConflict
	case status == http.StatusTooManyRequests:
		return ClassTooManyRequests
	case status >= 400 && status < 500:
		return ClassValidationFailure
	default:
		return ClassInternal
	}
}

// Error is a user-facing error with a defined kind.
// Message is safe to return to callers; Err holds the internal cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind with an internal cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Common errors. Callers compare with Is, never by identity.
var (
	ErrAuthenticationRequired  = New(KindAuthenticationRequired, "authentication required")
	ErrInvalidCredential       = New(KindInvalidCredential, "invalid or expired token")
	ErrInvalidLogin            = New(KindInvalidCredential, "invalid email or password")
	ErrTenantContextMissing    = New(KindTenantContextMissing, "tenant context required")
	ErrInsufficientPermissions = New(KindInsufficientPermissions, "insufficient permissions")
	ErrTenantNotFound          = New(KindTenantNotFound, "tenant not found")
	ErrTenantInactive          = New(KindTenantInactive, "tenant is inactive")
	ErrTenantRequired          = New(KindTenantRequired, "tenantId is required for this account")
	ErrTooManyAttempts         = New(KindTooManyAttempts, "too many login attempts, try again later")
)

// NotFound builds a not-found error naming the resource
func NotFound(resource string) *Error {
	return New(KindNotFound, resource+" not found")
}

// Validation builds a validation error with the given message
func Validation(message string) *Error {
	return New(KindValidationFailure, message)
}

// Duplicate builds a per-tenant uniqueness violation error
func Duplicate(message string) *Error {
	return New(KindDuplicateKey, message)
}
