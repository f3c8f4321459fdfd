// Package sheetdata turns worksheet grids into position-addressed cell records and
// builds spreadsheet summaries, independent of where the grid was loaded from.
package sheetdata

import "context"

// Cell is the readable content of a single grid cell
type Cell struct {
	Raw       Value
	Formatted string
}

// Grid is a rectangular, bounded block of cells for one worksheet.
// Coordinates are zero-based.
type Grid interface {
	RowCount() int
	ColumnCount() int
	// Cell returns the cell at (row, col). ok is false when the cell has no raw value
	// or cannot be read cleanly.
	Cell(row, col int) (cell Cell, ok bool)
	// Hyperlink returns the cell's link target, if it has one and it can be read.
	Hyperlink(row, col int) (link string, ok bool)
}

// Source loads spreadsheet metadata and worksheet grids from a backing service
type Source interface {
	// LoadSpreadsheet returns spreadsheet- and worksheet-level metadata without any cell data
	LoadSpreadsheet(ctx context.Context, id string) (*Spreadsheet, error)
	// LoadGrid loads the full cell grid of one worksheet
	LoadGrid(ctx context.Context, id string, worksheet Worksheet) (Grid, error)
}

// Spreadsheet is the metadata of a loaded spreadsheet
type Spreadsheet struct {
	ID                string
	Title             string
	URL               string
	CreatedTime       string
	ModifiedTime      string
	LastModifyingUser string
	Worksheets        []Worksheet
}

// Worksheet returns the worksheet whose title equals name exactly
func (s *Spreadsheet) Worksheet(name string) (Worksheet, bool) {
	for _, ws := range s.Worksheets {
		if ws.Title == name {
			return ws, true
		}
	}
	return Worksheet{}, false
}

// WorksheetTitles returns the worksheet titles in positional order
func (s *Spreadsheet) WorksheetTitles() []string {
	titles := make([]string, len(s.Worksheets))
	for i, ws := range s.Worksheets {
		titles[i] = ws.Title
	}
	return titles
}

// Worksheet is the metadata of one tab within a spreadsheet
type Worksheet struct {
	SheetID        int64          `json:"sheetId"`
	Title          string         `json:"title"`
	Index          int            `json:"index"`
	GridProperties GridProperties `json:"gridProperties"`
}

// GridProperties are a worksheet's declared grid bounds and layout
type GridProperties struct {
	RowCount          int  `json:"rowCount"`
	ColumnCount       int  `json:"columnCount"`
	FrozenRowCount    int  `json:"frozenRowCount,omitempty"`
	FrozenColumnCount int  `json:"frozenColumnCount,omitempty"`
	HideGridlines     bool `json:"hideGridlines,omitempty"`
}

// SpreadsheetSummary is a metadata-only view of a spreadsheet
type SpreadsheetSummary struct {
	ID                string                `json:"spreadsheetId"`
	Title             string                `json:"title"`
	URL               string                `json:"url"`
	WorksheetCount    int                   `json:"worksheetCount"`
	Worksheets        []WorksheetDescriptor `json:"worksheets"`
	CreatedTime       string                `json:"createdTime,omitempty"`
	ModifiedTime      string                `json:"modifiedTime,omitempty"`
	LastModifyingUser string                `json:"lastModifyingUser,omitempty"`
}

// WorksheetDescriptor describes one worksheet in a summary
type WorksheetDescriptor struct {
	Name        string `json:"name"`
	Index       int    `json:"index"`
	RowCount    int    `json:"rowCount"`
	ColumnCount int    `json:"columnCount"`
}

// Position is a 1-based (row, column) cell address
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CellRecord is one non-empty cell in extracted sheet data
type CellRecord struct {
	Position       Position `json:"position"`
	RawValue       Value    `json:"rawValue"`
	FormattedValue *string  `json:"formattedValue,omitempty"`
	InferredType   CellType `json:"inferredType"`
	Hyperlink      *string  `json:"hyperlink,omitempty"`
}

// Dimensions is the declared size of a worksheet grid
type Dimensions struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// WorksheetMetadata describes the worksheet a SheetDataResponse was read from
type WorksheetMetadata struct {
	Title             string         `json:"title"`
	Dimensions        Dimensions     `json:"dimensions"`
	CreatedTime       string         `json:"createdTime,omitempty"`
	ModifiedTime      string         `json:"modifiedTime,omitempty"`
	LastModifyingUser string         `json:"lastModifyingUser,omitempty"`
	Index             int            `json:"index"`
	GridProperties    GridProperties `json:"gridProperties"`
}

// SheetDataResponse is the full extracted content of one worksheet
type SheetDataResponse struct {
	SpreadsheetID     string            `json:"spreadsheetId"`
	SpreadsheetTitle  string            `json:"spreadsheetTitle"`
	SpreadsheetURL    string            `json:"spreadsheetUrl"`
	WorksheetMetadata WorksheetMetadata `json:"worksheetMetadata"`
	Cells             []CellRecord      `json:"cells"`
}
