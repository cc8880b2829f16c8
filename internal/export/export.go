// Package export serializes record tables into downloadable artifacts.
package export

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
)

// Format identifies an export artifact type by its file extension.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatGeoJSON Format = "geojson"
)

// Formats lists every supported export format.
var Formats = []Format{FormatCSV, FormatXLSX, FormatGeoJSON}

// ParseFormat maps a file extension (with or without the leading dot) to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type served with the artifact.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatGeoJSON:
		return "application/geo+json"
	default:
		return "application/octet-stream"
	}
}

// Artifact is one downloadable export.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Build renders the table in the given format, named after the date range.
func Build(r domain.DateRange, table domain.Table, f Format) (Artifact, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatCSV:
		data, err = WriteCSV(table)
	case FormatXLSX:
		data, err = WriteXLSX(table)
	case FormatGeoJSON:
		data, err = WriteGeoJSON(table)
	default:
		return Artifact{}, fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{
		FileName:    r.FileName(string(f)),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}
