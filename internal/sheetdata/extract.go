package sheetdata

// Extract walks the grid row-major over its declared bounds and returns a record for
// every cell whose raw value and formatted value are both non-empty.
func Extract(grid Grid) []CellRecord {
	rows, cols := grid.RowCount(), grid.ColumnCount()
	records := make([]CellRecord, 0)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell, ok := grid.Cell(row, col)
			if !ok || cell.Raw.IsEmpty() || cell.Formatted == "" {
				continue
			}

			record := CellRecord{
				Position:     Position{Row: row + 1, Col: col + 1},
				RawValue:     cell.Raw,
				InferredType: InferType(cell.Raw, cell.Formatted),
			}

			if cell.Formatted != cell.Raw.String() {
				formatted := cell.Formatted
				record.FormattedValue = &formatted
			}

			if link, ok := grid.Hyperlink(row, col); ok && link != "" {
				record.Hyperlink = &link
			}

			records = append(records, record)
		}
	}

	return records
}
