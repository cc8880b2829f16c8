package domain

import (
	"github.com/paulmach/orb"
)

// FeatureCollection is the GeoJSON document returned by the USGS event API.
// Only the fields the viewer reads are modeled.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Features []Feature `json:"features"`
}

// Metadata is the USGS response header block.
type Metadata struct {
	Generated int64  `json:"generated"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Count     int    `json:"count"`
}

// Feature is one seismic event. Pointer fields distinguish an absent key
// from a zero value so that contract violations can be reported.
type Feature struct {
	ID         string      `json:"id"`
	Properties *Properties `json:"properties"`
	Geometry   *Geometry   `json:"geometry"`
}

// Properties holds the event attributes used by the viewer.
type Properties struct {
	Mag   *float64 `json:"mag"`
	Place *string  `json:"place"`
	Time  *int64   `json:"time"` // epoch milliseconds
}

// Geometry is a GeoJSON Point: [lon, lat, depth].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Point returns the horizontal position of the geometry. Callers must check
// that at least two coordinates are present.
func (g *Geometry) Point() orb.Point {
	return orb.Point{g.Coordinates[0], g.Coordinates[1]}
}

// Record is the flattened form of one Feature used throughout the export
// pipeline.
type Record struct {
	Magnitude *float64 `json:"magnitude"`
	Location  *string  `json:"location"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Time      string   `json:"time"` // "2006-01-02 15:04:05" UTC
}

// Point returns the record position in GeoJSON axis order.
func (r Record) Point() orb.Point {
	return orb.Point{r.Longitude, r.Latitude}
}

// Tier returns the severity tier of the record's magnitude.
func (r Record) Tier() Tier {
	return SeverityTier(r.Magnitude)
}

// Table is an ordered sequence of Records.
type Table []Record

// Float64 returns a pointer to v, for building records with a magnitude.
func Float64(v float64) *float64 { return &v }

// String returns a pointer to s, for building records with a location.
func String(s string) *string { return &s }
