// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the application error taxonomy. Every error raised
// by the post and category services carries an HTTP status and a message
// that is safe to show to the client. Anything that is not an *Error is
// treated as an internal failure by the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindConflict         Kind = "conflict"
	KindUnauthorized     Kind = "unauthorized"
	KindUnsupportedMedia Kind = "unsupported_media"
	KindPayloadTooLarge  Kind = "payload_too_large"
)

// Error is a client-facing failure with a status code.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error // optional cause, never shown to the client
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, status int, format string, args ...any) *Error {
	return &Error{Kind: kind, Status: status, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input (400).
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, http.StatusBadRequest, format, args...)
}

// NotFound reports a resolver or lookup miss (404).
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, http.StatusNotFound, format, args...)
}

// Forbidden reports an authorization guard denial (403).
func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, http.StatusForbidden, format, args...)
}

// Conflict reports a uniqueness violation. The API surfaces it as 400.
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, http.StatusBadRequest, format, args...)
}

// Unauthorized reports a missing or invalid principal (401).
func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, http.StatusUnauthorized, format, args...)
}

// UnsupportedMedia reports an attachment outside the allow-list (415).
func UnsupportedMedia(format string, args ...any) *Error {
	return newError(KindUnsupportedMedia, http.StatusUnsupportedMediaType, format, args...)
}

// PayloadTooLarge reports an attachment over the size limit (413).
func PayloadTooLarge(format string, args ...any) *Error {
	return newError(KindPayloadTooLarge, http.StatusRequestEntityTooLarge, format, args...)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 for anything unclassified.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}

func isKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

func IsValidation(err error) bool { return isKind(err, KindValidation) }
func IsNotFound(err error) bool   { return isKind(err, KindNotFound) }
func IsForbidden(err error) bool  { return isKind(err, KindForbidden) }
func IsConflict(err error) bool   { return isKind(err, KindConflict) }
