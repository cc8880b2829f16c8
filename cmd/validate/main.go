// Command validate checks exported earthquake files for internal integrity
// and cross-format consistency. The CSV export is the reference: every row
// must parse, carry a UTC timestamp and in-range coordinates, and the
// spreadsheet and GeoJSON exports (when given) must hold the same records in
// the same order.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv exports/earthquakes_2024-04-25_2024-04-26.csv \
//	  -xlsx exports/earthquakes_2024-04-25_2024-04-26.xlsx \
//	  -geojson exports/earthquakes_2024-04-25_2024-04-26.geojson
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/couchcryptid/quake-data-viewer/internal/export"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/xuri/excelize/v2"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to a CSV export")
	xlsxPath := flag.String("xlsx", "", "path to the matching XLSX export (optional)")
	geojsonPath := flag.String("geojson", "", "path to the matching GeoJSON export (optional)")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *xlsxPath, *geojsonPath); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, xlsxPath, geojsonPath string) int {
	fmt.Println("=== Earthquake Export Validation ===")
	fmt.Println()

	table, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}

	phases := []*phase{validateRecords(table)}

	if xlsxPath != "" {
		rows, err := loadXLSX(xlsxPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load XLSX: %v\n", err)
			return 1
		}
		phases = append(phases, validateSpreadsheet(rows, table))
	}

	if geojsonPath != "" {
		fc, err := loadGeoJSON(geojsonPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load GeoJSON: %v\n", err)
			return 1
		}
		phases = append(phases, validateGeoJSON(fc, table))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	s := domain.Summarize(table)
	fmt.Println()
	fmt.Printf("Records: %d (high=%d, medium=%d, neutral=%d)\n", s.Total, s.Tiers.High, s.Tiers.Medium, s.Tiers.Neutral)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadCSV(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return export.ReadCSV(f)
}

func loadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only workbook
	return f.GetRows(export.SheetName)
}

func loadGeoJSON(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalFeatureCollection(data)
}

// ── Phase 1: Record integrity ──

func validateRecords(table domain.Table) *phase {
	p := &phase{name: "Phase 1: Record Integrity (CSV)"}

	for i, r := range table {
		line := i + 2
		if _, err := time.Parse(domain.TimeLayout, r.Time); err != nil {
			p.errorf("line %d: time %q is not %s", line, r.Time, domain.TimeLayout)
		}
		if r.Latitude < -90 || r.Latitude > 90 {
			p.errorf("line %d: latitude %v out of range", line, r.Latitude)
		}
		if r.Longitude < -180 || r.Longitude > 180 {
			p.errorf("line %d: longitude %v out of range", line, r.Longitude)
		}
		if r.Magnitude != nil && math.IsNaN(*r.Magnitude) {
			p.errorf("line %d: magnitude is NaN", line)
		}
	}
	return p
}

// ── Phase 2: Spreadsheet parity ──

func validateSpreadsheet(rows [][]string, table domain.Table) *phase {
	p := &phase{name: "Phase 2: Spreadsheet Parity (XLSX vs CSV)"}

	if len(rows) == 0 {
		p.errorf("sheet %q is empty", export.SheetName)
		return p
	}
	for i, col := range export.Columns {
		if i >= len(rows[0]) || rows[0][i] != col {
			p.errorf("header column %d: expected %q", i+1, col)
		}
	}

	data := rows[1:]
	if len(data) != len(table) {
		p.errorf("row count: CSV has %d, XLSX has %d", len(table), len(data))
		return p
	}

	for i, r := range table {
		row := data[i]
		line := i + 2
		cell := func(j int) string {
			if j < len(row) {
				return row[j]
			}
			return ""
		}

		checkNumber(p, line, "Magnitude", cell(0), r.Magnitude)
		if got := cell(1); got != ptrStr(r.Location) {
			p.errorf("line %d: Location: CSV=%q, XLSX=%q", line, ptrStr(r.Location), got)
		}
		checkNumber(p, line, "Latitude", cell(2), &r.Latitude)
		checkNumber(p, line, "Longitude", cell(3), &r.Longitude)
		if got := cell(4); got != r.Time {
			p.errorf("line %d: Time: CSV=%q, XLSX=%q", line, r.Time, got)
		}
	}
	return p
}

func checkNumber(p *phase, line int, col, got string, want *float64) {
	if want == nil {
		if got != "" {
			p.errorf("line %d: %s: CSV is empty, XLSX=%q", line, col, got)
		}
		return
	}
	v, err := strconv.ParseFloat(got, 64)
	if err != nil {
		p.errorf("line %d: %s: XLSX value %q is not a number", line, col, got)
		return
	}
	if !floatEq(v, *want) {
		p.errorf("line %d: %s: CSV=%v, XLSX=%v", line, col, *want, v)
	}
}

// ── Phase 3: GeoJSON parity ──

func validateGeoJSON(fc *geojson.FeatureCollection, table domain.Table) *phase {
	p := &phase{name: "Phase 3: GeoJSON Parity (GeoJSON vs CSV)"}

	if len(fc.Features) != len(table) {
		p.errorf("feature count: CSV has %d, GeoJSON has %d", len(table), len(fc.Features))
		return p
	}

	for i, r := range table {
		f := fc.Features[i]
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			p.errorf("feature %d: geometry is %T, expected Point", i, f.Geometry)
			continue
		}
		if !floatEq(pt.Lon(), r.Longitude) || !floatEq(pt.Lat(), r.Latitude) {
			p.errorf("feature %d: coordinates %v do not match CSV lat=%v lon=%v", i, pt, r.Latitude, r.Longitude)
		}
		if got := f.Properties.MustString("time", ""); got != r.Time {
			p.errorf("feature %d: time: CSV=%q, GeoJSON=%q", i, r.Time, got)
		}
		if got, want := f.Properties.MustString("tier", ""), r.Tier().String(); got != want {
			p.errorf("feature %d: tier: expected %q from magnitude, got %q", i, want, got)
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptrStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
