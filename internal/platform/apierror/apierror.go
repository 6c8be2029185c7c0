// Package apierror defines the closed set of business failures returned by the
// update protocol and their mapping to HTTP responses.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a business failure. The set is closed: every value below is
// handled by Status and Code.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindAlreadyExists
	KindInterferingNames
	KindInterferingAddress
	KindImmutableNames
	KindImmutableAddress
	KindPersonNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindInterferingNames:
		return "InterferingNames"
	case KindInterferingAddress:
		return "InterferingAddress"
	case KindImmutableNames:
		return "ImmutableNames"
	case KindImmutableAddress:
		return "ImmutableAddress"
	case KindPersonNotFound:
		return "PersonNotFound"
	case KindValidation:
		return "Validation"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error codes rendered in response bodies.
const (
	CodeServerException    = "SERVER_EXCEPTION"
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeNotFound           = "NOT_FOUND"
	CodeInterferingNames   = "INTERFERING_NAMES"
	CodeInterferingAddress = "INTERFERING_ADDRESS"
)

// Error is a typed business failure.
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]any
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Is matches any *Error of the same kind, so sentinels like ErrNotFound work
// with errors.Is regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrAlreadyExists      = &Error{Kind: KindAlreadyExists, Message: "already exists"}
	ErrInterferingNames   = &Error{Kind: KindInterferingNames, Message: "interfering names"}
	ErrInterferingAddress = &Error{Kind: KindInterferingAddress, Message: "interfering address"}
	ErrImmutableNames     = &Error{Kind: KindImmutableNames, Message: "immutable names"}
	ErrImmutableAddress   = &Error{Kind: KindImmutableAddress, Message: "immutable address"}
	ErrPersonNotFound     = &Error{Kind: KindPersonNotFound, Message: "person not found"}
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation failed"}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error           { return New(KindNotFound, message) }
func AlreadyExists(message string) *Error      { return New(KindAlreadyExists, message) }
func InterferingNames(message string) *Error   { return New(KindInterferingNames, message) }
func InterferingAddress(message string) *Error { return New(KindInterferingAddress, message) }
func ImmutableNames(message string) *Error     { return New(KindImmutableNames, message) }
func ImmutableAddress(message string) *Error   { return New(KindImmutableAddress, message) }
func PersonNotFound(message string) *Error     { return New(KindPersonNotFound, message) }

// Validation reports an invalid request field. The parameter name is kept in
// the metadata and prefixed to the message.
func Validation(parameter, message string) *Error {
	e := &Error{Kind: KindValidation, Message: "Validation failed: " + message}
	if parameter != "" {
		e.Message = "Validation failed: " + parameter + " " + message
		e.Metadata = map[string]any{"parameter": parameter}
	}
	return e
}

// KindOf returns the kind of a business failure, or 0 for any other error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Status maps a kind to its HTTP status code.
func Status(k Kind) int {
	switch k {
	case KindNotFound, KindPersonNotFound:
		return http.StatusNotFound
	case KindAlreadyExists, KindInterferingNames, KindInterferingAddress:
		return http.StatusConflict
	case KindImmutableNames, KindImmutableAddress, KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Code maps a kind to the error code rendered in response bodies.
func Code(k Kind) string {
	switch k {
	case KindNotFound, KindPersonNotFound:
		return CodeNotFound
	case KindAlreadyExists:
		return CodeAlreadyExists
	case KindInterferingNames:
		return CodeInterferingNames
	case KindInterferingAddress:
		return CodeInterferingAddress
	case KindImmutableNames, KindImmutableAddress:
		return CodeBadRequest
	case KindValidation:
		return CodeValidationFailed
	}
	return CodeServerException
}

// errorType mirrors the origin of a failure: the client sent something wrong,
// or the service state refused it.
func errorType(k Kind) string {
	switch k {
	case KindImmutableNames, KindImmutableAddress, KindValidation:
		return "CLIENT"
	case KindNotFound, KindPersonNotFound, KindAlreadyExists, KindInterferingNames, KindInterferingAddress:
		return "SERVICE"
	}
	return "UNKNOWN"
}
