package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
)

// Columns is the header row shared by every tabular export.
var Columns = []string{"Magnitude", "Location", "Latitude", "Longitude", "Time (UTC)"}

// WriteCSV renders the table as comma-separated UTF-8 with a header row.
// Null values become empty cells.
func WriteCSV(table domain.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range table {
		row := []string{
			formatNullableFloat(r.Magnitude),
			formatNullableString(r.Location),
			formatFloat(r.Latitude),
			formatFloat(r.Longitude),
			r.Time,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadCSV parses a buffer produced by WriteCSV back into a table. Empty
// magnitude and location cells decode as nil.
func ReadCSV(r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, name := range Columns {
		if header[i] != name {
			return nil, fmt.Errorf("csv column %d: got %q, want %q", i, header[i], name)
		}
	}

	table := domain.Table{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return table, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		table = append(table, rec)
	}
}

func parseRow(row []string) (domain.Record, error) {
	var rec domain.Record

	if row[0] != "" {
		m, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return rec, fmt.Errorf("magnitude: %w", err)
		}
		rec.Magnitude = &m
	}
	if row[1] != "" {
		rec.Location = domain.String(row[1])
	}

	lat, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return rec, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return rec, fmt.Errorf("longitude: %w", err)
	}
	rec.Latitude = lat
	rec.Longitude = lon
	rec.Time = row[4]
	return rec, nil
}

// formatFloat uses the shortest representation that parses back to the same
// value, keeping a ".0" suffix on integral values so the column reads as
// floating point.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func formatNullableFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatNullableString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
