package tablegrid

// Grid sizing defaults.
const (
	DefaultRows        = 3
	DefaultCols        = 3
	DefaultColumnWidth = 100.0
	DefaultRowHeight   = 30.0
	MinCellSize        = 20.0
)

// Grid is the cell matrix together with its row heights and column widths.
// The matrix is always rowCount×colCount and the size slices always match it.
type Grid struct {
	rowHeights   []float64
	columnWidths []float64
	cells        [][]Cell

	defaultRowHeight   float64
	defaultColumnWidth float64
}

// NewGrid creates a rows×cols grid of default cells. Sizes below 1 are raised to 1.
func NewGrid(rows, cols int) *Grid {
	return newGridWithSizes(rows, cols, DefaultRowHeight, DefaultColumnWidth)
}

func newGridWithSizes(rows, cols int, rowHeight, colWidth float64) *Grid {
	rows, cols = max(rows, 1), max(cols, 1)
	g := &Grid{
		rowHeights:         make([]float64, rows),
		columnWidths:       make([]float64, cols),
		cells:              make([][]Cell, rows),
		defaultRowHeight:   max(rowHeight, MinCellSize),
		defaultColumnWidth: max(colWidth, MinCellSize),
	}
	for r := range g.rowHeights {
		g.rowHeights[r] = g.defaultRowHeight
	}
	for c := range g.columnWidths {
		g.columnWidths[c] = g.defaultColumnWidth
	}
	for r := range g.cells {
		g.cells[r] = newCellRow(cols)
	}
	return g
}

func newCellRow(cols int) []Cell {
	row := make([]Cell, cols)
	for c := range row {
		row[c] = NewCell()
	}
	return row
}

// RowCount returns the number of rows.
func (g *Grid) RowCount() int { return len(g.rowHeights) }

// ColCount returns the number of columns.
func (g *Grid) ColCount() int { return len(g.columnWidths) }

// RowHeights returns a copy of the row heights.
func (g *Grid) RowHeights() []float64 { return append([]float64(nil), g.rowHeights...) }

// ColumnWidths returns a copy of the column widths.
func (g *Grid) ColumnWidths() []float64 { return append([]float64(nil), g.columnWidths...) }

// InRange reports whether (row, col) addresses an existing cell.
func (g *Grid) InRange(row, col int) bool {
	return row >= 0 && row < g.RowCount() && col >= 0 && col < g.ColCount()
}

// Cell returns a copy of the cell at (row, col).
func (g *Grid) Cell(row, col int) (Cell, bool) {
	if !g.InRange(row, col) {
		return Cell{}, false
	}
	return g.cells[row][col], true
}

// SetCellContent replaces the text of a cell and clears its placeholder flag.
func (g *Grid) SetCellContent(row, col int, content string) bool {
	if !g.InRange(row, col) {
		return false
	}
	cell := &g.cells[row][col]
	cell.Content = content
	cell.IsPlaceholder = false
	return true
}

// SetPlaceholder marks a cell as a placeholder for the named field.
func (g *Grid) SetPlaceholder(row, col int, name string) bool {
	if !g.InRange(row, col) {
		return false
	}
	cell := &g.cells[row][col]
	cell.IsPlaceholder = name != ""
	cell.PlaceholderName = name
	return true
}

// UpdateCell applies fn to the cell at (row, col). Span and hidden fields are
// restored afterwards; use MergeCells and UnmergeCells to change them.
func (g *Grid) UpdateCell(row, col int, fn func(*Cell)) bool {
	if !g.InRange(row, col) {
		return false
	}
	cell := &g.cells[row][col]
	rowSpan, colSpan, hidden := cell.RowSpan, cell.ColSpan, cell.Hidden
	fn(cell)
	cell.RowSpan, cell.ColSpan, cell.Hidden = rowSpan, colSpan, hidden
	return true
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		rowHeights:         g.RowHeights(),
		columnWidths:       g.ColumnWidths(),
		cells:              make([][]Cell, len(g.cells)),
		defaultRowHeight:   g.defaultRowHeight,
		defaultColumnWidth: g.defaultColumnWidth,
	}
	for r, row := range g.cells {
		out.cells[r] = append([]Cell(nil), row...)
	}
	return out
}

// MergedRanges lists every merged region in row-major order of its head.
func (g *Grid) MergedRanges() []Range {
	var out []Range
	for r, row := range g.cells {
		for c, cell := range row {
			if cell.IsMergeHead() {
				out = append(out, g.clipRange(cell.spanRange(NewCellRef(r, c))))
			}
		}
	}
	return out
}

// clipRange bounds a normalized range to the current grid extent.
func (g *Grid) clipRange(r Range) Range {
	r.EndRow = min(r.EndRow, g.RowCount()-1)
	r.EndCol = min(r.EndCol, g.ColCount()-1)
	return r
}
