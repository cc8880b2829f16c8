package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the record timestamp format, always UTC.
const TimeLayout = "2006-01-02 15:04:05"

// DecodeFeatureCollection parses a USGS GeoJSON response body.
func DecodeFeatureCollection(data []byte) (FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("parse feature collection: %w", err)
	}
	return fc, nil
}

// Extract flattens every feature of the collection into a Record, preserving
// order. An absent or empty features list yields an empty Table; callers
// treat that as "no data". A feature missing properties, properties.time or
// at least two geometry coordinates fails the whole extraction with a
// *MissingFieldError.
func Extract(fc FeatureCollection) (Table, error) {
	table := make(Table, 0, len(fc.Features))
	for i, f := range fc.Features {
		rec, err := extractFeature(i, f)
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}
	return table, nil
}

func extractFeature(i int, f Feature) (Record, error) {
	if f.Properties == nil {
		return Record{}, &MissingFieldError{Index: i, Field: "properties"}
	}
	if f.Geometry == nil || f.Geometry.Coordinates == nil {
		return Record{}, &MissingFieldError{Index: i, Field: "geometry.coordinates"}
	}
	if len(f.Geometry.Coordinates) < 2 {
		return Record{}, &MissingFieldError{Index: i, Field: "geometry.coordinates[1]"}
	}
	if f.Properties.Time == nil {
		return Record{}, &MissingFieldError{Index: i, Field: "properties.time"}
	}

	// Coordinates are [lon, lat, depth].
	p := f.Geometry.Point()
	return Record{
		Magnitude: f.Properties.Mag,
		Location:  f.Properties.Place,
		Latitude:  p.Lat(),
		Longitude: p.Lon(),
		Time:      FormatEventTime(*f.Properties.Time),
	}, nil
}

// FormatEventTime converts epoch milliseconds to a UTC timestamp with
// whole-second precision.
func FormatEventTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(TimeLayout)
}
