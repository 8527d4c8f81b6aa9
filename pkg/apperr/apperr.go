// Package apperr carries the error taxonomy shared by the domain and the
// transport layers: the kind decides the user-facing mapping, the message is
// safe to return to clients.
package apperr

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindDomainViolation
	KindNotFound
	KindAccessDenied
)

type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Kind() Kind { return e.kind }

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func InvalidArgument(msg string) *Error { return New(KindInvalidArgument, msg) }
func DomainViolation(msg string) *Error { return New(KindDomainViolation, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func AccessDenied(msg string) *Error    { return New(KindAccessDenied, msg) }

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}
