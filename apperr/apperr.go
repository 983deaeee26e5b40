// Package apperr carries the coordinator's error taxonomy. Callers branch on
// the Kind, not on error identity, so transport layers can map classes of
// failure to status codes.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindConflict
	KindNotFound
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Auth(format string, args ...interface{}) error {
	return &Error{Kind: KindAuth, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Network(err error, format string, args ...interface{}) error {
	return &Error{Kind: KindNetwork, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the taxonomy kind of err, or KindUnknown for errors from
// outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsAuth(err error) bool       { return KindOf(err) == KindAuth }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsNetwork(err error) bool    { return KindOf(err) == KindNetwork }
