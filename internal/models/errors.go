package models

import (
	"errors"
	"strings"
)

// ErrorKind classifies failures that reach the API boundary
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindConflict
)

// Error is a user-visible failure with a fixed kind
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "Record not found"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "Unauthorized"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Message: "Invalid email or password."}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "Forbidden"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "Email has already been taken"}
)

// ValidationError carries every violated field rule of a write
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// KindOf returns the kind of err, or 0 for unclassified errors
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
