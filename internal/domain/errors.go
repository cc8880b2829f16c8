package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when a date range cannot be queried.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrNoData is returned when the upstream answered with zero features.
	ErrNoData = errors.New("no earthquake data found for the selected date range")
)

// MissingFieldError reports a feature that lacks a field the USGS contract
// guarantees. It signals an upstream contract break and is never skipped.
type MissingFieldError struct {
	Index int    // position of the feature in the collection
	Field string // dotted JSON path, e.g. "properties.time"
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("feature %d: missing required field %q", e.Index, e.Field)
}

// UpstreamError reports a failed call to the event API: either a transport
// error or a non-200 status.
type UpstreamError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch data, status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch data: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
