package export

import (
	"fmt"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/xuri/excelize/v2"
)

// SheetName is the title of the single worksheet in the spreadsheet export.
const SheetName = "Earthquakes"

// ColumnWidths are the fixed widths, in character units, of the five columns.
var ColumnWidths = []float64{12, 50, 12, 12, 20}

// Cell colors, RGB hex.
const (
	headerFill = "EDEDED"
	headerText = "000000"

	highFill    = "FFDBDB"
	highText    = "9B1C1C"
	mediumFill  = "FFF4DB"
	mediumText  = "9B6A1C"
	neutralFill = "F7F7F7"
)

// sheetStyles holds the registered style IDs for one workbook.
type sheetStyles struct {
	header   int
	centered int
	tiers    map[domain.Tier]int
}

// WriteXLSX renders the table as a styled workbook. The header row is bold,
// centered and gray; each Magnitude cell is colored by its severity tier; the
// coordinate and time columns are centered.
func WriteXLSX(table domain.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := registerStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeHeader(f, styles); err != nil {
		return nil, err
	}
	for i, r := range table {
		if err := writeRow(f, styles, i+2, r); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", i, err)
		}
	}

	for i, width := range ColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func registerStyles(f *excelize.File) (sheetStyles, error) {
	s := sheetStyles{tiers: make(map[domain.Tier]int, 3)}

	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: headerText, Size: 12},
			Fill:      solidFill(headerFill),
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&s.centered, &excelize.Style{
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, fmt.Errorf("register style: %w", err)
		}
		*d.dst = id
	}

	tiers := map[domain.Tier]*excelize.Style{
		domain.TierHigh: {
			Font: &excelize.Font{Bold: true, Color: highText},
			Fill: solidFill(highFill),
		},
		domain.TierMedium: {
			Font: &excelize.Font{Color: mediumText},
			Fill: solidFill(mediumFill),
		},
		domain.TierNeutral: {
			Fill: solidFill(neutralFill),
		},
	}
	for tier, style := range tiers {
		id, err := f.NewStyle(style)
		if err != nil {
			return s, fmt.Errorf("register %s style: %w", tier, err)
		}
		s.tiers[tier] = id
	}
	return s, nil
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func writeHeader(f *excelize.File, styles sheetStyles) error {
	for i, name := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(SheetName, cell, name); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, "A1", last, styles.header)
}

func writeRow(f *excelize.File, styles sheetStyles, row int, r domain.Record) error {
	cell := func(col int) string {
		name, _ := excelize.CoordinatesToCellName(col, row) //nolint:errcheck // col and row are always positive
		return name
	}

	if r.Magnitude != nil {
		if err := f.SetCellFloat(SheetName, cell(1), *r.Magnitude, -1, 64); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetName, cell(1), cell(1), styles.tiers[r.Tier()]); err != nil {
		return err
	}

	if r.Location != nil {
		if err := f.SetCellStr(SheetName, cell(2), *r.Location); err != nil {
			return err
		}
	}

	if err := f.SetCellFloat(SheetName, cell(3), r.Latitude, -1, 64); err != nil {
		return err
	}
	if err := f.SetCellFloat(SheetName, cell(4), r.Longitude, -1, 64); err != nil {
		return err
	}
	if err := f.SetCellStr(SheetName, cell(5), r.Time); err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, cell(3), cell(5), styles.centered)
}
