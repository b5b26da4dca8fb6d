// Package apperr defines the error taxonomy shared by the API server and the
// client core: validation, not-found, conflict, network and integrity
// failures, plus the JSON envelope they travel in.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindNetwork
	KindIntegrity
	KindUnauthorized
)

// Wire codes, matching the backend envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeNetwork      = "NETWORK_ERROR"
	CodeIntegrity    = "INTEGRITY_ERROR"
)

// FieldError reports a problem with a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an application error with a kind, a user-facing message and
// optional per-field details.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the wire code for the error kind.
func (e *Error) Code() string {
	switch e.Kind {
	case KindValidation:
		return CodeValidation
	case KindNotFound:
		return CodeNotFound
	case KindConflict:
		return CodeConflict
	case KindUnauthorized:
		return CodeUnauthorized
	case KindNetwork:
		return CodeNetwork
	case KindIntegrity:
		return CodeIntegrity
	default:
		return CodeInternal
	}
}

// Validation builds a validation error. With no fields the message is the
// only detail.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Required builds a validation error for missing required fields.
func Required(fields ...string) *Error {
	fe := make([]FieldError, len(fields))
	for i, f := range fields {
		fe[i] = FieldError{Field: f, Message: "is required"}
	}
	return Validation("missing required fields", fe...)
}

// NotFound builds a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds an illegal-state error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Network wraps a transport failure.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "network error", Err: err}
}

// Integrity reports data that violates a domain invariant.
func Integrity(format string, args ...any) *Error {
	return &Error{Kind: KindIntegrity, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a missing or rejected credential.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldsOf returns the field errors attached to err, if any.
func FieldsOf(err error) []FieldError {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage renders err as a message fit for a toast or banner.
// Unexpected errors collapse to a generic text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if !errors.As(err, &ae) {
		return "Something went wrong. Please try again."
	}
	switch ae.Kind {
	case KindValidation:
		if len(ae.Fields) > 0 {
			parts := make([]string, len(ae.Fields))
			for i, f := range ae.Fields {
				parts[i] = f.Field + " " + f.Message
			}
			return "Please fix: " + strings.Join(parts, ", ")
		}
		return ae.Message
	case KindNotFound:
		return ae.Message + ". The list was refreshed."
	case KindConflict:
		return ae.Message + ". The board was reloaded."
	case KindNetwork:
		return "Could not reach the server. Please retry."
	case KindUnauthorized:
		return "Your session is not authorized."
	case KindIntegrity:
		return ae.Message
	default:
		return "Something went wrong. Please try again."
	}
}

// Envelope is the JSON error body exchanged over HTTP.
type Envelope struct {
	Error   bool         `json:"error"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// ToEnvelope converts err into its wire representation. Internal errors do
// not leak their cause.
func ToEnvelope(err error) Envelope {
	var ae *Error
	if !errors.As(err, &ae) {
		return Envelope{Error: true, Code: CodeInternal, Message: "internal error"}
	}
	return Envelope{Error: true, Code: ae.Code(), Message: ae.Message, Errors: ae.Fields}
}

// FromEnvelope rebuilds an error from a decoded envelope and HTTP status.
func FromEnvelope(status int, env Envelope) *Error {
	kind := KindInternal
	switch env.Code {
	case CodeValidation:
		kind = KindValidation
	case CodeNotFound:
		kind = KindNotFound
	case CodeConflict:
		kind = KindConflict
	case CodeUnauthorized:
		kind = KindUnauthorized
	case CodeIntegrity:
		kind = KindIntegrity
	default:
		switch status {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			kind = KindValidation
		case http.StatusNotFound:
			kind = KindNotFound
		case http.StatusConflict:
			kind = KindConflict
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = KindUnauthorized
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			kind = KindNetwork
		}
	}
	msg := env.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Kind: kind, Message: msg, Fields: env.Errors}
}
