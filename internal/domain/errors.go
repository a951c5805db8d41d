package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a report is requested for zero records.
var ErrEmptyInput = errors.New("no daily forecasts to report on")

// ParseError reports a date that is not an ISO-8601 timestamp with a UTC offset.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse forecast date %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFieldError reports a required key absent from a DailyForecasts element.
// Field is the dotted JSON path within the record, e.g. "Temperature.Minimum.Unit".
// Index is -1 when the key is missing from the document itself.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("forecast document: missing field %s", e.Field)
	}
	return fmt.Sprintf("daily forecast %d: missing field %s", e.Index, e.Field)
}

// Error kinds used as metric labels.
const (
	KindParse        = "parse"
	KindMissingField = "missing_field"
	KindEmptyInput   = "empty_input"
	KindDecode       = "decode"
	KindUnknown      = "unknown"
)

// errDecode marks malformed JSON documents.
var errDecode = errors.New("decode forecast document")

// ErrorKind classifies a report-generation error for metrics and logs.
func ErrorKind(err error) string {
	var parseErr *ParseError
	var missingErr *MissingFieldError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &missingErr):
		return KindMissingField
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, errDecode):
		return KindDecode
	default:
		return KindUnknown
	}
}
