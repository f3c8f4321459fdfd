package workbook

import "github.com/sammcj/mcp-gsheets/internal/sheetdata"

type position struct{ row, col int }

// grid is a fully materialised worksheet
type grid struct {
	rows, cols int
	cells      map[position]sheetdata.Cell
	links      map[position]string
}

func newGrid(rows, cols int) *grid {
	return &grid{
		rows:  rows,
		cols:  cols,
		cells: make(map[position]sheetdata.Cell),
		links: make(map[position]string),
	}
}

func (g *grid) set(row, col int, cell sheetdata.Cell) {
	g.cells[position{row, col}] = cell
	g.rows = max(g.rows, row+1)
	g.cols = max(g.cols, col+1)
}

func (g *grid) link(row, col int, target string) {
	g.links[position{row, col}] = target
}

func (g *grid) RowCount() int    { return g.rows }
func (g *grid) ColumnCount() int { return g.cols }

func (g *grid) Cell(row, col int) (sheetdata.Cell, bool) {
	cell, ok := g.cells[position{row, col}]
	return cell, ok
}

func (g *grid) Hyperlink(row, col int) (string, bool) {
	link, ok := g.links[position{row, col}]
	return link, ok && link != ""
}
