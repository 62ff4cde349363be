package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Code identifies an error kind on the wire
type Code string

const (
	CodeValidation      Code = "VALIDATION_FAILED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeForbidden       Code = "FORBIDDEN"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeLinkInactive    Code = "LINK_INACTIVE"
	CodePaymentDeclined Code = "PAYMENT_DECLINED"
	CodeDenied          Code = "ACCESS_DENIED"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Sentinel kinds. Match with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrLinkInactive    = errors.New("link is inactive")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrDenied          = errors.New("access denied")
	ErrConflict        = errors.New("conflict")
)

var kinds = []struct {
	err    error
	code   Code
	status int
}{
	{ErrValidation, CodeValidation, http.StatusBadRequest},
	{ErrNotFound, CodeNotFound, http.StatusNotFound},
	{ErrForbidden, CodeForbidden, http.StatusForbidden},
	{ErrUnauthorized, CodeUnauthorized, http.StatusUnauthorized},
	{ErrLinkInactive, CodeLinkInactive, http.StatusGone},
	{ErrPaymentDeclined, CodePaymentDeclined, http.StatusPaymentRequired},
	{ErrDenied, CodeDenied, http.StatusForbidden},
	{ErrConflict, CodeConflict, http.StatusConflict},
}

// AppError carries a kind plus a user facing message
type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// New creates an AppError of the given kind
func New(kind error, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap attaches a cause to a new AppError
func Wrap(kind error, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(resource string) *AppError {
	return New(ErrNotFound, resource+" not found")
}

func Forbidden(message string) *AppError {
	return New(ErrForbidden, message)
}

func Conflict(message string) *AppError {
	return New(ErrConflict, message)
}

// ValidationError lists invalid fields with a message each
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError for a single field
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Classify returns the wire code and HTTP status for err
func Classify(err error) (Code, int) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code, k.status
		}
	}
	return CodeInternal, http.StatusInternalServerError
}

// PublicMessage returns the message safe to show to a client
func PublicMessage(err error) string {
	if errors.Is(err, ErrDenied) {
		return "access denied"
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}

	return "internal server error"
}
