package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies request errors so transports can pick a status code.
type ErrorKind int

const (
	KindInvalidFormat ErrorKind = iota + 1
	KindOutOfRange
	KindNotFound
	KindPartialRange
	KindBeforeHebrewEpoch
	KindEngine
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidFormat:
		return "invalid_format"
	case KindOutOfRange:
		return "out_of_range"
	case KindNotFound:
		return "not_found"
	case KindPartialRange:
		return "partial_range"
	case KindBeforeHebrewEpoch:
		return "before_hebrew_epoch"
	case KindEngine:
		return "engine_error"
	default:
		return "unknown"
	}
}

// Error is a user-correctable request error. Param names the query parameter
// at fault when there is one.
type Error struct {
	Kind   ErrorKind
	Param  string
	Msg    string
	Status int // engine-reported status; zero means the default for Kind
	Err    error
}

func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s", e.Param, e.Msg)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindEngine:
		if e.Status != 0 {
			return e.Status
		}
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// IsKind reports whether err is a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// HTTPStatus returns the status for any error: domain errors use their kind,
// everything else is an internal failure.
func HTTPStatus(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func newError(kind ErrorKind, param, format string, args ...any) *Error {
	return &Error{Kind: kind, Param: param, Msg: fmt.Sprintf(format, args...)}
}

// withParam attributes a domain error to the query key that produced it.
func withParam(err error, param string) error {
	var de *Error
	if errors.As(err, &de) {
		cp := *de
		cp.Param = param
		return &cp
	}
	return err
}
