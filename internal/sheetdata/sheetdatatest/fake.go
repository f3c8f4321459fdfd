// Package sheetdatatest provides in-memory Source and Grid doubles for tests.
package sheetdatatest

import (
	"context"
	"sync"

	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
)

// Pos is a zero-based grid coordinate
type Pos struct {
	Row, Col int
}

// MapGrid is a Grid backed by maps. Cells missing from Cells are absent.
type MapGrid struct {
	Rows, Cols int
	Cells      map[Pos]sheetdata.Cell
	Links      map[Pos]string
}

// NewMapGrid creates an empty grid with the given declared bounds
func NewMapGrid(rows, cols int) *MapGrid {
	return &MapGrid{
		Rows:  rows,
		Cols:  cols,
		Cells: make(map[Pos]sheetdata.Cell),
		Links: make(map[Pos]string),
	}
}

// Set stores a cell at the zero-based position and returns the grid for chaining
func (g *MapGrid) Set(row, col int, raw sheetdata.Value, formatted string) *MapGrid {
	g.Cells[Pos{row, col}] = sheetdata.Cell{Raw: raw, Formatted: formatted}
	return g
}

// Link stores a hyperlink at the zero-based position
func (g *MapGrid) Link(row, col int, target string) *MapGrid {
	g.Links[Pos{row, col}] = target
	return g
}

func (g *MapGrid) RowCount() int    { return g.Rows }
func (g *MapGrid) ColumnCount() int { return g.Cols }

func (g *MapGrid) Cell(row, col int) (sheetdata.Cell, bool) {
	c, ok := g.Cells[Pos{row, col}]
	return c, ok
}

func (g *MapGrid) Hyperlink(row, col int) (string, bool) {
	l, ok := g.Links[Pos{row, col}]
	return l, ok
}

// Source is a Source double that records how often each loader was called
type Source struct {
	Spreadsheet    *sheetdata.Spreadsheet
	Grids          map[string]sheetdata.Grid
	SpreadsheetErr error
	GridErr        error

	mu               sync.Mutex
	spreadsheetCalls int
	gridCalls        int
	requestedIDs     []string
}

func (s *Source) LoadSpreadsheet(ctx context.Context, id string) (*sheetdata.Spreadsheet, error) {
	s.mu.Lock()
	s.spreadsheetCalls++
	s.requestedIDs = append(s.requestedIDs, id)
	s.mu.Unlock()

	if s.SpreadsheetErr != nil {
		return nil, s.SpreadsheetErr
	}
	return s.Spreadsheet, nil
}

func (s *Source) LoadGrid(ctx context.Context, id string, worksheet sheetdata.Worksheet) (sheetdata.Grid, error) {
	s.mu.Lock()
	s.gridCalls++
	s.mu.Unlock()

	if s.GridErr != nil {
		return nil, s.GridErr
	}
	if g, ok := s.Grids[worksheet.Title]; ok {
		return g, nil
	}
	return NewMapGrid(worksheet.GridProperties.RowCount, worksheet.GridProperties.ColumnCount), nil
}

// SpreadsheetCalls returns the number of LoadSpreadsheet calls
func (s *Source) SpreadsheetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spreadsheetCalls
}

// GridCalls returns the number of LoadGrid calls
func (s *Source) GridCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gridCalls
}

// RequestedIDs returns the identifiers passed to LoadSpreadsheet, in call order
func (s *Source) RequestedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestedIDs...)
}

// SampleSpreadsheet returns a two-worksheet spreadsheet with the given id
func SampleSpreadsheet(id string) *sheetdata.Spreadsheet {
	return &sheetdata.Spreadsheet{
		ID:                id,
		Title:             "Quarterly Report",
		URL:               "https://docs.google.com/spreadsheets/d/" + id + "/edit",
		CreatedTime:       "2024-01-02T03:04:05Z",
		ModifiedTime:      "2024-02-03T04:05:06Z",
		LastModifyingUser: "Ada Lovelace",
		Worksheets: []sheetdata.Worksheet{
			{SheetID: 0, Title: "Sales", Index: 0, GridProperties: sheetdata.GridProperties{RowCount: 1000, ColumnCount: 26, FrozenRowCount: 1}},
			{SheetID: 42, Title: "Notes", Index: 1, GridProperties: sheetdata.GridProperties{RowCount: 50, ColumnCount: 5}},
		},
	}
}
