// Package serviceerr defines the error taxonomy shared by the client stack.
// Auth-layer errors (auth_expired, session_invalid) are handled inside the
// gateway and the session store and never reach feature code; resource-layer
// errors (validation, network) propagate to the calling store or command.
package serviceerr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeUnknown        Code = "unknown"
	CodeAuthExpired    Code = "auth_expired"
	CodeSessionInvalid Code = "session_invalid"
	CodeValidation     Code = "validation"
	CodeNotFound       Code = "not_found"
	CodeForbidden      Code = "forbidden"
	CodeNetwork        Code = "network"
	CodeSuperseded     Code = "superseded"
	CodeNoCredential   Code = "no_credential"
)

// Error is a classified failure. Detail carries the backend's verbatim
// message where one was returned (e.g. "SKU already exists").
type Error struct {
	Err    Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Err)
	}
	return string(e.Err) + ": " + e.Detail
}

// Is makes errors.Is match two classified errors by code, so the sentinels
// below can be used as targets regardless of Detail.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Err == other.Err
}

var ErrAuthExpired = &Error{Err: CodeAuthExpired, Detail: "access token expired"}
var ErrSessionInvalid = &Error{Err: CodeSessionInvalid, Detail: "session invalid, sign in again"}
var ErrNotFound = &Error{Err: CodeNotFound, Detail: "not found"}
var ErrNetwork = &Error{Err: CodeNetwork, Detail: "network failure"}
var ErrSuperseded = &Error{Err: CodeSuperseded, Detail: "superseded by a newer request"}
var ErrNoCredential = &Error{Err: CodeNoCredential, Detail: "no stored credential"}

// Validation builds a validation error carrying the backend's message.
func Validation(detail string) *Error {
	return &Error{Err: CodeValidation, Detail: detail}
}

// FromStatus classifies a non-2xx backend response. The detail is the
// backend's message and is preserved verbatim for user-visible output.
func FromStatus(status int, detail string) *Error {
	switch {
	case status == http.StatusUnauthorized:
		return &Error{Err: CodeAuthExpired, Detail: detail}
	case status == http.StatusForbidden:
		return &Error{Err: CodeForbidden, Detail: detail}
	case status == http.StatusNotFound:
		return &Error{Err: CodeNotFound, Detail: detail}
	case status >= 400 && status < 500:
		return &Error{Err: CodeValidation, Detail: detail}
	default:
		return &Error{Err: CodeUnknown, Detail: detail}
	}
}

// CodeOf extracts the classification of err, or CodeUnknown for plain errors.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Err
	}
	return CodeUnknown
}
