// Package domain models USGS earthquake event data and the flat records the
// viewer exports.
//
// # Data Source
//
// Events come from the USGS FDSN event web service,
// https://earthquake.usgs.gov/fdsnws/event/1/query, queried with
// format=geojson and a starttime/endtime pair. The response is a GeoJSON
// FeatureCollection; each Feature is one seismic event.
//
// # USGS Data Conventions
//
// Coordinates:
//
//	geometry.coordinates is [longitude, latitude, depth_km], the GeoJSON
//	axis order. Index 1 is latitude and index 0 is longitude. Records keep
//	the explicit Latitude/Longitude labels, so the mapping is done once in
//	[Extract] through an orb.Point.
//
// Time:
//
//	properties.time is integer milliseconds since the Unix epoch. Records
//	carry it formatted as "2006-01-02 15:04:05" in UTC; sub-second precision
//	is dropped.
//
// Magnitude and place:
//
//	properties.mag and properties.place may be null (unreviewed or automatic
//	solutions). Nulls are carried through as nil pointers and written as
//	empty cells on export.
//
// Severity tiers:
//
//	Derived from magnitude for table and spreadsheet styling:
//
//	  High:    mag >= 5.0
//	  Medium:  3.0 <= mag < 5.0
//	  Neutral: mag < 3.0, or no magnitude
//
// # Date Ranges
//
// A query covers whole UTC calendar days: start at 00:00:00 and end at
// 23:59:59. A range whose start is after its end is rejected before any
// network call.
package domain
