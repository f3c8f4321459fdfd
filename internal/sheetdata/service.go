package sheetdata

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Resolver turns a caller-supplied locator (URL, path) into a Source identifier
type Resolver func(locator string) (string, error)

// Service builds summaries and sheet data from a Source.
// It holds no state between calls; every result is built from a fresh read.
type Service struct {
	source  Source
	resolve Resolver
	logger  *logrus.Logger
}

// NewService creates a Service reading from source and resolving locators with resolve
func NewService(source Source, resolve Resolver, logger *logrus.Logger) *Service {
	if resolve == nil {
		resolve = ResolveSpreadsheetID
	}
	return &Service{source: source, resolve: resolve, logger: logger}
}

// Summarize returns spreadsheet and worksheet metadata without loading any cell grid.
// Upstream failures are logged and replaced with ErrSummaryFailed.
func (s *Service) Summarize(ctx context.Context, locator string) (*SpreadsheetSummary, error) {
	id, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}

	spreadsheet, err := s.source.LoadSpreadsheet(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("spreadsheet_id", id).Error("Failed to load spreadsheet metadata for summary")
		return nil, ErrSummaryFailed
	}

	summary := &SpreadsheetSummary{
		ID:                spreadsheet.ID,
		Title:             spreadsheet.Title,
		URL:               spreadsheet.URL,
		WorksheetCount:    len(spreadsheet.Worksheets),
		Worksheets:        make([]WorksheetDescriptor, 0, len(spreadsheet.Worksheets)),
		CreatedTime:       spreadsheet.CreatedTime,
		ModifiedTime:      spreadsheet.ModifiedTime,
		LastModifyingUser: spreadsheet.LastModifyingUser,
	}
	for _, ws := range spreadsheet.Worksheets {
		summary.Worksheets = append(summary.Worksheets, WorksheetDescriptor{
			Name:        ws.Title,
			Index:       ws.Index,
			RowCount:    ws.GridProperties.RowCount,
			ColumnCount: ws.GridProperties.ColumnCount,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"spreadsheet_id": id,
		"worksheets":     summary.WorksheetCount,
	}).Debug("Built spreadsheet summary")

	return summary, nil
}

// FetchSheetData loads one worksheet by exact, case-sensitive title and extracts its cells.
// Locator and worksheet-name errors are returned as-is; upstream failures are logged and
// replaced with ErrSheetDataFailed.
func (s *Service) FetchSheetData(ctx context.Context, locator, worksheetName string) (*SheetDataResponse, error) {
	id, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"spreadsheet_id": id,
		"sheet_name":     worksheetName,
	})

	spreadsheet, err := s.source.LoadSpreadsheet(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to load spreadsheet metadata")
		return nil, ErrSheetDataFailed
	}

	worksheet, ok := spreadsheet.Worksheet(worksheetName)
	if !ok {
		return nil, NewWorksheetNotFoundError(worksheetName, spreadsheet.WorksheetTitles())
	}

	grid, err := s.source.LoadGrid(ctx, id, worksheet)
	if err != nil {
		log.WithError(err).Error("Failed to load worksheet cells")
		return nil, ErrSheetDataFailed
	}

	cells := Extract(grid)
	log.WithFields(logrus.Fields{
		"rows":  grid.RowCount(),
		"cols":  grid.ColumnCount(),
		"cells": len(cells),
	}).Debug("Extracted worksheet cells")

	return &SheetDataResponse{
		SpreadsheetID:    spreadsheet.ID,
		SpreadsheetTitle: spreadsheet.Title,
		SpreadsheetURL:   spreadsheet.URL,
		WorksheetMetadata: WorksheetMetadata{
			Title: worksheet.Title,
			Dimensions: Dimensions{
				Rows:    worksheet.GridProperties.RowCount,
				Columns: worksheet.GridProperties.ColumnCount,
			},
			CreatedTime:       spreadsheet.CreatedTime,
			ModifiedTime:      spreadsheet.ModifiedTime,
			LastModifyingUser: spreadsheet.LastModifyingUser,
			Index:             worksheet.Index,
			GridProperties:    worksheet.GridProperties,
		},
		Cells: cells,
	}, nil
}

// String renders dimensions as "rows × cols"
func (d Dimensions) String() string {
	return fmt.Sprintf("%d × %d", d.Rows, d.Columns)
}
