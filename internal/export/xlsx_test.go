package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, table domain.Table) *excelize.File {
	t.Helper()
	data, err := WriteXLSX(table)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cellStyle(t *testing.T, f *excelize.File, cell string) *excelize.Style {
	t.Helper()
	id, err := f.GetCellStyle(SheetName, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	return style
}

func hasColor(colors []string, want string) bool {
	for _, c := range colors {
		if strings.HasSuffix(strings.ToUpper(c), want) {
			return true
		}
	}
	return false
}

func TestWriteXLSX_Contents(t *testing.T) {
	f := openWorkbook(t, sampleTable())

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"6.1", "10km N of X", "35.2", "-120.1", "1970-01-01 00:00:00"}, rows[1])
	assert.Equal(t, "-155.2571716", rows[2][3])

	// Null magnitude and location leave empty cells.
	require.Len(t, rows[4], 5)
	assert.Empty(t, rows[4][0])
	assert.Empty(t, rows[4][1])
	assert.Equal(t, "2024-04-27 00:00:00", rows[4][4])
}

func TestWriteXLSX_HeaderStyle(t *testing.T) {
	f := openWorkbook(t, sampleTable())

	for _, cell := range []string{"A1", "C1", "E1"} {
		style := cellStyle(t, f, cell)
		require.NotNil(t, style.Font, cell)
		assert.True(t, style.Font.Bold, cell)
		assert.Equal(t, 12.0, style.Font.Size, cell)
		require.NotNil(t, style.Alignment, cell)
		assert.Equal(t, "center", style.Alignment.Horizontal, cell)
		assert.True(t, hasColor(style.Fill.Color, headerFill), cell)
	}
}

func TestWriteXLSX_MagnitudeTiers(t *testing.T) {
	table := domain.Table{
		{Magnitude: domain.Float64(5.0), Time: "t"},
		{Magnitude: domain.Float64(7.2), Time: "t"},
		{Magnitude: domain.Float64(3.0), Time: "t"},
		{Magnitude: domain.Float64(4.99), Time: "t"},
		{Magnitude: domain.Float64(2.99), Time: "t"},
		{Magnitude: nil, Time: "t"},
	}
	f := openWorkbook(t, table)

	styleID := func(cell string) int {
		id, err := f.GetCellStyle(SheetName, cell)
		require.NoError(t, err)
		return id
	}

	high, medium, neutral := styleID("A2"), styleID("A4"), styleID("A6")
	assert.Equal(t, high, styleID("A3"))
	assert.Equal(t, medium, styleID("A5"))
	assert.Equal(t, neutral, styleID("A7"), "null magnitude is styled neutral")
	assert.NotEqual(t, high, medium)
	assert.NotEqual(t, medium, neutral)
	assert.NotEqual(t, high, neutral)

	highStyle := cellStyle(t, f, "A2")
	require.NotNil(t, highStyle.Font)
	assert.True(t, highStyle.Font.Bold)
	assert.True(t, strings.HasSuffix(strings.ToUpper(highStyle.Font.Color), highText))
	assert.True(t, hasColor(highStyle.Fill.Color, highFill))

	mediumStyle := cellStyle(t, f, "A4")
	require.NotNil(t, mediumStyle.Font)
	assert.False(t, mediumStyle.Font.Bold)
	assert.True(t, strings.HasSuffix(strings.ToUpper(mediumStyle.Font.Color), mediumText))
	assert.True(t, hasColor(mediumStyle.Fill.Color, mediumFill))

	assert.True(t, hasColor(cellStyle(t, f, "A6").Fill.Color, neutralFill))
}

func TestWriteXLSX_CenteredColumns(t *testing.T) {
	f := openWorkbook(t, sampleTable())

	for _, cell := range []string{"C2", "D2", "E2", "C5", "E5"} {
		style := cellStyle(t, f, cell)
		require.NotNil(t, style.Alignment, cell)
		assert.Equal(t, "center", style.Alignment.Horizontal, cell)
	}

	loc := cellStyle(t, f, "B2")
	if loc.Alignment != nil {
		assert.NotEqual(t, "center", loc.Alignment.Horizontal)
	}
}

func TestWriteXLSX_ColumnWidths(t *testing.T) {
	f := openWorkbook(t, sampleTable())

	for i, col := range []string{"A", "B", "C", "D", "E"} {
		width, err := f.GetColWidth(SheetName, col)
		require.NoError(t, err)
		assert.InDelta(t, ColumnWidths[i], width, 0.01, col)
	}
}

func TestWriteXLSX_EmptyTable(t *testing.T) {
	f := openWorkbook(t, domain.Table{})

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Columns, rows[0])
}
