package sheetdata_test

import (
	"testing"

	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sammcj/mcp-gsheets/internal/sheetdata/sheetdatatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_VisibilityRequiresRawAndFormatted(t *testing.T) {
	grid := sheetdatatest.NewMapGrid(3, 3).
		Set(0, 0, sheetdata.StringValue("Name"), "Name").
		Set(0, 1, sheetdata.NumberValue(0), "").       // raw present, display empty
		Set(0, 2, sheetdata.StringValue(""), "shown"). // display present, raw empty
		Set(1, 1, sheetdata.NumberValue(0), "0").      // zero is a real value
		Set(2, 2, sheetdata.BoolValue(false), "FALSE")

	cells := sheetdata.Extract(grid)
	require.Len(t, cells, 3)

	assert.Equal(t, sheetdata.Position{Row: 1, Col: 1}, cells[0].Position)
	assert.Equal(t, sheetdata.Position{Row: 2, Col: 2}, cells[1].Position)
	assert.Equal(t, sheetdata.Position{Row: 3, Col: 3}, cells[2].Position)

	for _, c := range cells {
		assert.False(t, c.RawValue.IsEmpty())
	}
}

func TestExtract_PositionsAreOneBasedAndRowMajor(t *testing.T) {
	grid := sheetdatatest.NewMapGrid(4, 4)
	// Insert out of order; traversal order must not depend on insertion
	grid.Set(3, 0, sheetdata.StringValue("d"), "d")
	grid.Set(0, 3, sheetdata.StringValue("a"), "a")
	grid.Set(1, 2, sheetdata.StringValue("c"), "c")
	grid.Set(1, 0, sheetdata.StringValue("b"), "b")

	cells := sheetdata.Extract(grid)
	require.Len(t, cells, 4)

	expected := []sheetdata.Position{{Row: 1, Col: 4}, {Row: 2, Col: 1}, {Row: 2, Col: 3}, {Row: 4, Col: 1}}
	for i, c := range cells {
		assert.Equal(t, expected[i], c.Position)
	}

	for i := 1; i < len(cells); i++ {
		prev, cur := cells[i-1].Position, cells[i].Position
		assert.True(t, prev.Row < cur.Row || (prev.Row == cur.Row && prev.Col < cur.Col))
	}
}

func TestExtract_IgnoresCellsOutsideDeclaredBounds(t *testing.T) {
	grid := sheetdatatest.NewMapGrid(1, 1).
		Set(0, 0, sheetdata.StringValue("in"), "in").
		Set(5, 5, sheetdata.StringValue("out"), "out")

	cells := sheetdata.Extract(grid)
	require.Len(t, cells, 1)
	assert.Equal(t, "in", cells[0].RawValue.String())
}

func TestExtract_FormattedValueOnlyWhenDifferent(t *testing.T) {
	grid := sheetdatatest.NewMapGrid(1, 4).
		Set(0, 0, sheetdata.NumberValue(5), "5").
		Set(0, 1, sheetdata.NumberValue(5), "5.00").
		Set(0, 2, sheetdata.BoolValue(true), "TRUE").
		Set(0, 3, sheetdata.StringValue("same"), "same")

	cells := sheetdata.Extract(grid)
	require.Len(t, cells, 4)

	assert.Nil(t, cells[0].FormattedValue)
	require.NotNil(t, cells[1].FormattedValue)
	assert.Equal(t, "5.00", *cells[1].FormattedValue)
	require.NotNil(t, cells[2].FormattedValue)
	assert.Equal(t, "TRUE", *cells[2].FormattedValue)
	assert.Nil(t, cells[3].FormattedValue)
}

func TestExtract_InfersTypes(t *testing.T) {
	grid := sheetdatatest.NewMapGrid(1, 6).
		Set(0, 0, sheetdata.NumberValue(42), "42%").
		Set(0, 1, sheetdata.NumberValue(42), "$42.00").
		Set(0, 2, sheetdata.BoolValue(true), "TRUE").
		Set(0, 3, sheetdata.StringValue("2024-01-15"), "2024-01-15").
		Set(0, 4, sheetdata.NumberValue(42), "42").
		Set(0, 5, sheetdata.StringValue("hello"), "hello")

	cells := sheetdata.Extract(grid)
	require.Len(t, cells, 6)

	expected := []sheetdata.CellType{
		sheetdata.CellTypePercentage,
		sheetdata.CellTypeCurrency,
		sheetdata.CellTypeBoolean,
		sheetdata.CellTypeDate,
		sheetdata.CellTypeNumber,
		sheetdata.CellTypeString,
	}
	for i, c := range cells {
		assert.Equal(t, expected[i], c.InferredType, "cell %d", i)
	}
}

func TestExtract_Hyperlinks(t *testing.T) {
	grid := sheetdatatest.NewMapGrid(1, 3).
		Set(0, 0, sheetdata.StringValue("docs"), "docs").
		Link(0, 0, "https://example.com/docs").
		Set(0, 1, sheetdata.StringValue("plain"), "plain").
		Link(0, 2, "https://example.com/orphan") // no value, must not appear

	cells := sheetdata.Extract(grid)
	require.Len(t, cells, 2)

	require.NotNil(t, cells[0].Hyperlink)
	assert.Equal(t, "https://example.com/docs", *cells[0].Hyperlink)
	assert.Nil(t, cells[1].Hyperlink)
}

func TestExtract_EmptyGrid(t *testing.T) {
	cells := sheetdata.Extract(sheetdatatest.NewMapGrid(0, 0))
	assert.NotNil(t, cells)
	assert.Empty(t, cells)
}
