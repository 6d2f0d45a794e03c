package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
)

// TransportError is returned when the quote source could not be reached or
// answered with a non-success status.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("transport: %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the fetched document has no usable history table.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return "parse: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// RowMappingError describes a single row that could not be mapped or stored.
// It is logged and never escalated past the scrape call.
type RowMappingError struct {
	Row RawRow
	Err error
}

func (e *RowMappingError) Error() string {
	return fmt.Sprintf("row %q: %v", e.Row.Date, e.Err)
}

func (e *RowMappingError) Unwrap() error { return e.Err }
