package shared

import "errors"

// DomainError is a failure reported to the caller. Code picks the HTTP status;
// Message is safe to show. A wrapped cause is kept for logs only.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches on Code, so a copy made by Wrap still equals its sentinel
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// Wrap returns a copy of e that carries cause
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, cause: cause}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// AlreadyExists reports a uniqueness clash on what, e.g. "A category with this name"
func AlreadyExists(what string) *DomainError {
	return NewDomainError(ErrAlreadyExists.Code, what+" already exists")
}

// CodeOf returns the code of the first DomainError in err's chain, or ""
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientCredits = NewDomainError("INSUFFICIENT_CREDITS", "Not enough credits for this operation")
	ErrUnsupportedMedia    = NewDomainError("UNSUPPORTED_MEDIA", "Unsupported media type")
	ErrPayloadTooLarge     = NewDomainError("PAYLOAD_TOO_LARGE", "Payload exceeds the allowed size")
	ErrExternalService     = NewDomainError("EXTERNAL_SERVICE", "Upstream service failed")
)
