package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "validation_error"
	CodeUpstream     Code = "upstream_error"
	CodeStorage      Code = "storage_error"
	CodeParse        Code = "parse_error"
	CodeNotFound     Code = "not_found"
	CodeAlreadyLiked Code = "already_liked"
	CodeForbidden    Code = "forbidden"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal"
)

func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyLiked:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstream, CodeParse:
		return http.StatusBadGateway
	case CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error type crossing package boundaries. Stage names the
// pipeline step that failed, when there is one.
type Error struct {
	Status  int
	Code    Code
	Stage   string
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Code.HTTPStatus()
}

// WithStage returns a copy tagged with the failing stage.
func (e *Error) WithStage(stage string) *Error {
	cp := *e
	cp.Stage = stage
	return &cp
}

func New(status int, code Code, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var (
	ErrValidation   = &Error{Code: CodeValidation, Message: "invalid request"}
	ErrUpstream     = &Error{Code: CodeUpstream, Message: "upstream failure"}
	ErrStorage      = &Error{Code: CodeStorage, Message: "storage failure"}
	ErrParse        = &Error{Code: CodeParse, Message: "unparseable output"}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyLiked = &Error{Code: CodeAlreadyLiked, Message: "already liked"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrRateLimited  = &Error{Code: CodeRateLimited, Message: "too many requests"}
)

func Validation(msg string, details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

func Upstream(msg string, err error) *Error {
	return &Error{Code: CodeUpstream, Message: msg, Err: err}
}

func Storage(msg string, err error) *Error {
	return &Error{Code: CodeStorage, Message: msg, Err: err}
}

func Parse(msg string) *Error {
	return &Error{Code: CodeParse, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func AlreadyLiked(msg string) *Error {
	return &Error{Code: CodeAlreadyLiked, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func Internal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// As extracts the *Error in err's chain. Errors that are not ours come back
// as internal errors wrapping the original.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal error", err)
}

// IsTimeout reports whether err came from an expired or cancelled context.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
