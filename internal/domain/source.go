package domain

import "context"

// EventSource returns the raw event collection for a date range.
type EventSource interface {
	// Query fetches every event between the range's start and end instants.
	// Failures are reported as *UpstreamError.
	Query(ctx context.Context, r DateRange) (FeatureCollection, error)
}
