package util

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConsent      ErrorKind = "consent"
	KindRateLimit    ErrorKind = "rate_limit"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindUpstream     ErrorKind = "upstream"
)

// AppError carries a client-safe message plus the kind that decides the HTTP status.
// Err holds the underlying cause and is only exposed outside production.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindConsent:
		return fiber.StatusBadRequest
	case KindRateLimit:
		return fiber.StatusTooManyRequests
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

var ErrRateLimited = &AppError{Kind: KindRateLimit, Message: "rate limit exceeded"}

func NewValidationError(message string, details any) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Details: details}
}

func NewConsentError(missing []string) *AppError {
	return &AppError{
		Kind:    KindConsent,
		Message: "missing required consents: " + strings.Join(missing, ", "),
		Details: fiber.Map{"missing_consents": missing},
	}
}

func NewNotFoundError(message string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Err: err}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

// IsKind reports whether err is (or wraps) an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// ValidationErrorFrom turns ozzo validation errors into a FormError-shaped AppError.
// Any other error is returned unchanged.
func ValidationErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		fields[field] = ferr.Error()
	}
	formErr := NewFormError("invalid request", fields)
	return &AppError{Kind: KindValidation, Message: formErr.Message, Details: formErr.Errors, Err: formErr}
}
