package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so cloned sentinels still match.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid email or password. Please try again.")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "Access denied. Admin privileges required.")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "Access denied. Please log in to continue.")
	ErrTokenInvalid       = New("TOKEN_INVALID", http.StatusUnauthorized, "Invalid token. Please log in again.")
	ErrTokenExpired       = New("TOKEN_EXPIRED", http.StatusUnauthorized, "Your session has expired. Please log in again.")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "Some required data is missing. Please check and resend.")
	ErrInvalidID          = New("INVALID_ID", http.StatusBadRequest, "Invalid ID format. Please check the request and try again.")
	ErrRateLimited        = New("RATE_LIMITED", http.StatusTooManyRequests, "Too many requests. Please try again later.")
	ErrAIUpstream         = New("AI_UPSTREAM", http.StatusBadGateway, "I couldn't get a valid AI response right now. Please try again.")
	ErrRoutingUpstream    = New("ROUTING_UPSTREAM", http.StatusBadGateway, "Walking directions are unavailable right now.")
	ErrVoiceUpstream      = New("VOICE_UPSTREAM", http.StatusServiceUnavailable, "Voice generation is unavailable right now. Please try the text answer.")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "Something went wrong. Please try again.")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
