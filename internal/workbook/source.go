// Package workbook reads local Excel workbooks with excelize and exposes them through the
// same extraction pipeline as online spreadsheets.
package workbook

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Source implements sheetdata.Source over workbook files on disk.
// The spreadsheet id is the absolute file path.
type Source struct {
	logger *logrus.Logger
}

// NewSource creates a workbook Source
func NewSource(logger *logrus.Logger) *Source {
	return &Source{logger: logger}
}

// LoadSpreadsheet reads worksheet bounds and document properties
func (s *Source) LoadSpreadsheet(ctx context.Context, id string) (*sheetdata.Spreadsheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WithError(err).Debug("Failed to close workbook")
		}
	}()

	spreadsheet := &sheetdata.Spreadsheet{
		ID:    id,
		Title: strings.TrimSuffix(filepath.Base(id), filepath.Ext(id)),
		URL:   "file://" + filepath.ToSlash(id),
	}

	if props, err := f.GetDocProps(); err == nil && props != nil {
		if props.Title != "" {
			spreadsheet.Title = props.Title
		}
		spreadsheet.CreatedTime = props.Created
		spreadsheet.ModifiedTime = props.Modified
		spreadsheet.LastModifyingUser = props.LastModifiedBy
	} else if err != nil {
		s.logger.WithError(err).WithField("path", id).Debug("Workbook document properties unavailable")
	}

	for i, name := range f.GetSheetList() {
		rows, cols, err := bounds(f, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read worksheet '%s': %w", name, err)
		}

		ws := sheetdata.Worksheet{
			SheetID: int64(i),
			Title:   name,
			Index:   i,
			GridProperties: sheetdata.GridProperties{
				RowCount:    rows,
				ColumnCount: cols,
			},
		}
		if idx, err := f.GetSheetIndex(name); err == nil {
			ws.SheetID = int64(idx)
		}
		if panes, err := f.GetPanes(name); err == nil && panes.Freeze {
			ws.GridProperties.FrozenColumnCount = panes.XSplit
			ws.GridProperties.FrozenRowCount = panes.YSplit
		}
		if view, err := f.GetSheetView(name, -1); err == nil && view.ShowGridLines != nil {
			ws.GridProperties.HideGridlines = !*view.ShowGridLines
		}

		spreadsheet.Worksheets = append(spreadsheet.Worksheets, ws)
	}

	return spreadsheet, nil
}

// LoadGrid reads every cell of one worksheet
func (s *Source) LoadGrid(ctx context.Context, id string, worksheet sheetdata.Worksheet) (sheetdata.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WithError(err).Debug("Failed to close workbook")
		}
	}()

	name := worksheet.Title
	formatted, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of '%s': %w", name, err)
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw rows of '%s': %w", name, err)
	}

	grid := newGrid(worksheet.GridProperties.RowCount, worksheet.GridProperties.ColumnCount)
	for r, row := range raw {
		for c, rawText := range row {
			if rawText == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}

			cellType, err := f.GetCellType(name, axis)
			if err != nil {
				s.logger.WithError(err).WithField("cell", axis).Debug("Skipping unreadable cell")
				continue
			}
			value, ok := cellValue(cellType, rawText)
			if !ok {
				continue
			}

			grid.set(r, c, sheetdata.Cell{Raw: value, Formatted: cellAt(formatted, r, c)})

			if hasLink, target, err := f.GetCellHyperLink(name, axis); err == nil && hasLink {
				grid.link(r, c, target)
			}
		}
	}

	return grid, nil
}

// bounds returns the extent of a worksheet from its stored dimension reference, so summaries
// never read cell data. Rows are only scanned when no usable dimension is stored: a missing
// ref, or the bare "A1" that writers leave on sheets they never resized.
func bounds(f *excelize.File, sheet string) (rows, cols int, err error) {
	ref, err := f.GetSheetDimension(sheet)
	if err != nil {
		return 0, 0, err
	}
	if rows, cols, ok := dimensionBounds(ref); ok {
		return rows, cols, nil
	}

	data, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, 0, err
	}
	for _, row := range data {
		cols = max(cols, len(row))
	}
	return len(data), cols, nil
}

// dimensionBounds converts a dimension ref such as "A1:D200" or "C7" to the row and column
// counts of a grid anchored at A1
func dimensionBounds(ref string) (rows, cols int, ok bool) {
	ref = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(ref, "$", "")))
	if ref == "" || ref == "A1" {
		return 0, 0, false
	}

	if !strings.Contains(ref, ":") {
		col, row, err := excelize.CellNameToCoordinates(ref)
		if err != nil {
			return 0, 0, false
		}
		return row, col, true
	}

	coords, err := excelize.RangeRefToCoordinates(ref)
	if err != nil || len(coords) != 4 {
		return 0, 0, false
	}
	return max(coords[1], coords[3]), max(coords[0], coords[2]), true
}

// cellValue maps a stored cell to a typed value. Error cells are unreadable.
func cellValue(cellType excelize.CellType, raw string) (sheetdata.Value, bool) {
	switch cellType {
	case excelize.CellTypeError:
		return sheetdata.Value{}, false
	case excelize.CellTypeBool:
		return sheetdata.BoolValue(raw == "1" || strings.EqualFold(raw, "true")), true
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return sheetdata.NumberValue(n), true
		}
	}
	return sheetdata.StringValue(raw), true
}

func cellAt(rows [][]string, r, c int) string {
	if r < len(rows) && c < len(rows[r]) {
		return rows[r][c]
	}
	return ""
}
