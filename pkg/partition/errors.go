package partition

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned by ParseKind when InputIgnoreUnknown is set
// and the input matched nothing in the catalogue.
var ErrUnknownKind = errors.New("unknown partition type")

// ParseError reports a malformed textual identifier. Input echoes the
// offending string verbatim.
type ParseError struct {
	What   string // "code" or "guid"
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %s", e.What, e.Input, e.Reason)
}

// ConversionError reports a byte sequence that could not be read as text,
// or that was read as text but failed to parse.
type ConversionError struct {
	What   string
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("convert %s: %s: %v", e.What, e.Reason, e.Err)
	}
	return fmt.Sprintf("convert %s: %s", e.What, e.Reason)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ConfigError reports a value that a setter or a builder could not apply.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func outOfBounds(op string, i, n int) string {
	return fmt.Sprintf("partition: %s: index out of bounds: the len is %d but the index is %d", op, n, i)
}
