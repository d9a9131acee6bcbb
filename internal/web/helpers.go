package web

import (
	"strconv"

	"github.com/google/uuid"
)

type scalar interface {
	~string | ~int | ~int64 | ~bool
}

// Query returns the query parameter converted to T, or the zero value.
func Query[T scalar](c Context, name string) T {
	v, _ := convert[T](c.Query(name))
	return v
}

// QueryDefault returns def when the parameter is missing or does not parse.
func QueryDefault[T scalar](c Context, name string, def T) T {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, ok := convert[T](raw)
	if !ok {
		return def
	}
	return v
}

// UUIDParam parses a path parameter as a UUID. A malformed id is reported as
// 404 so that probing ids reveals nothing.
func UUIDParam(c Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, ErrNotFound("not found", WithError(err))
	}
	return id, nil
}

func convert[T scalar](raw string) (T, bool) {
	var zero T
	var out any
	switch any(zero).(type) {
	case string:
		out = raw
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		out = v
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		out = v
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		out = v
	default:
		return zero, false
	}
	return out.(T), true
}
