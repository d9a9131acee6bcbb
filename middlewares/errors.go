package middlewares

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// StatusCoder is an error that knows the HTTP status it renders as.
type StatusCoder interface {
	error
	StatusCode() int
}

// StatusOf returns the status carried by the first StatusCoder in err's
// chain, or 0 when there is none.
func StatusOf(err error) int {
	if sc, ok := as[StatusCoder](err); ok {
		return sc.StatusCode()
	}
	return 0
}

// PanicError is a handler panic caught by Recover.
type PanicError struct {
	Value any
	Route string // "METHOD /path" of the request that panicked
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) StatusCode() int { return http.StatusInternalServerError }

// LogValue groups the panic for structured logs.
func (e *PanicError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("value", fmt.Sprint(e.Value)),
		slog.String("route", e.Route),
	}
	if e.Stack != nil {
		attrs = append(attrs, slog.String("stack", string(e.Stack)))
	}
	return slog.GroupValue(attrs...)
}

// TimeoutError is a handler that outlived its deadline. It matches
// context.DeadlineExceeded.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

func (e *TimeoutError) StatusCode() int { return http.StatusGatewayTimeout }

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

func IsPanicError(err error) bool {
	_, ok := as[*PanicError](err)
	return ok
}

func IsTimeoutError(err error) bool {
	_, ok := as[*TimeoutError](err)
	return ok
}

func AsPanicError(err error) (*PanicError, bool) { return as[*PanicError](err) }

func AsTimeoutError(err error) (*TimeoutError, bool) { return as[*TimeoutError](err) }

func as[T error](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}
