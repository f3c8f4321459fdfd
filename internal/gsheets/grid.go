package gsheets

import (
	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"google.golang.org/api/sheets/v4"
)

// sheetGrid adapts the grid data of one worksheet to sheetdata.Grid.
// Rows and columns absent from the response are treated as empty cells.
type sheetGrid struct {
	rows, cols int
	data       []*sheets.GridData
}

func newSheetGrid(worksheet sheetdata.Worksheet, sheet *sheets.Sheet) *sheetGrid {
	g := &sheetGrid{
		rows: worksheet.GridProperties.RowCount,
		cols: worksheet.GridProperties.ColumnCount,
	}
	if sheet != nil {
		g.data = sheet.Data
	}
	return g
}

func (g *sheetGrid) RowCount() int    { return g.rows }
func (g *sheetGrid) ColumnCount() int { return g.cols }

func (g *sheetGrid) Cell(row, col int) (sheetdata.Cell, bool) {
	cd := g.cellData(row, col)
	if cd == nil || cd.EffectiveValue == nil {
		return sheetdata.Cell{}, false
	}

	raw, ok := rawValue(cd.EffectiveValue)
	if !ok {
		return sheetdata.Cell{}, false
	}

	return sheetdata.Cell{Raw: raw, Formatted: cd.FormattedValue}, true
}

func (g *sheetGrid) Hyperlink(row, col int) (string, bool) {
	cd := g.cellData(row, col)
	if cd == nil || cd.Hyperlink == "" {
		return "", false
	}
	return cd.Hyperlink, true
}

func (g *sheetGrid) cellData(row, col int) *sheets.CellData {
	for _, block := range g.data {
		if block == nil {
			continue
		}
		r := row - int(block.StartRow)
		c := col - int(block.StartColumn)
		if r < 0 || c < 0 || r >= len(block.RowData) {
			continue
		}
		rd := block.RowData[r]
		if rd == nil || c >= len(rd.Values) {
			continue
		}
		return rd.Values[c]
	}
	return nil
}

// rawValue converts an effective value to a sheetdata.Value.
// Error values and anything without a concrete payload are not readable.
func rawValue(v *sheets.ExtendedValue) (sheetdata.Value, bool) {
	switch {
	case v.ErrorValue != nil:
		return sheetdata.Value{}, false
	case v.BoolValue != nil:
		return sheetdata.BoolValue(*v.BoolValue), true
	case v.NumberValue != nil:
		return sheetdata.NumberValue(*v.NumberValue), true
	case v.StringValue != nil:
		return sheetdata.StringValue(*v.StringValue), true
	default:
		return sheetdata.Value{}, false
	}
}
