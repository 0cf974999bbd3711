package tablegrid

import "math"

// DefaultDividerTolerance is the hit distance, in grid units, for DividerAt.
const DefaultDividerTolerance = 5.0

// Bounds is an axis-aligned rectangle in grid coordinates. The grid is centered
// on the origin, so the top-left cell has negative Left and Top.
type Bounds struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the right edge.
func (b Bounds) Right() float64 { return b.Left + b.Width }

// Bottom returns the bottom edge.
func (b Bounds) Bottom() float64 { return b.Top + b.Height }

// DividerType tells whether a divider separates columns or rows.
type DividerType int

const (
	DividerCol DividerType = iota
	DividerRow
)

// String returns "col" or "row".
func (d DividerType) String() string {
	if d == DividerRow {
		return "row"
	}
	return "col"
}

// Divider is the boundary after column (or row) Index.
type Divider struct {
	Type  DividerType
	Index int
}

// TotalSize returns the sum of column widths and the sum of row heights.
func (g *Grid) TotalSize() (width, height float64) {
	return sum(g.columnWidths), sum(g.rowHeights)
}

// Bounds returns the rectangle covered by the whole grid.
func (g *Grid) Bounds() Bounds {
	w, h := g.TotalSize()
	return Bounds{Left: -w / 2, Top: -h / 2, Width: w, Height: h}
}

// CellBounds returns the rectangle of the cell at (row, col), including its
// span. Spans running past the grid edge only sum the rows and columns that exist.
func (g *Grid) CellBounds(row, col int) (Bounds, bool) {
	if !g.InRange(row, col) {
		return Bounds{}, false
	}
	cell := g.cells[row][col]
	w, h := g.TotalSize()
	return Bounds{
		Left:   sum(g.columnWidths[:col]) - w/2,
		Top:    sum(g.rowHeights[:row]) - h/2,
		Width:  sum(g.columnWidths[col:min(col+max(cell.ColSpan, 1), g.ColCount())]),
		Height: sum(g.rowHeights[row:min(row+max(cell.RowSpan, 1), g.RowCount())]),
	}, true
}

// CellAt maps a point to the underlying row and column. It is not merge-aware:
// a point inside a merged region yields the hidden cell under it. A point on a
// shared edge belongs to the cell that starts there.
func (g *Grid) CellAt(x, y float64) (CellRef, bool) {
	w, h := g.TotalSize()
	lx, ly := x+w/2, y+h/2
	if lx < 0 || lx > w || ly < 0 || ly > h {
		return CellRef{}, false
	}
	col := indexAt(g.columnWidths, lx)
	row := indexAt(g.rowHeights, ly)
	if col < 0 || row < 0 {
		return CellRef{}, false
	}
	return CellRef{Row: row, Col: col}, true
}

// VisualCellAt is CellAt resolved to the head of any merge under the point.
func (g *Grid) VisualCellAt(x, y float64) (CellRef, bool) {
	ref, ok := g.CellAt(x, y)
	if !ok {
		return CellRef{}, false
	}
	return g.HeadOf(ref.Row, ref.Col)
}

// HeadOf resolves a hidden cell to the head whose span covers it. Visible cells
// resolve to themselves, as do hidden cells no head covers.
func (g *Grid) HeadOf(row, col int) (CellRef, bool) {
	if !g.InRange(row, col) {
		return CellRef{}, false
	}
	ref := NewCellRef(row, col)
	if !g.cells[row][col].Hidden {
		return ref, true
	}
	for r := row; r >= 0; r-- {
		for c := col; c >= 0; c-- {
			cell := g.cells[r][c]
			if cell.IsMergeHead() && cell.spanRange(NewCellRef(r, c)).Contains(ref) {
				return NewCellRef(r, c), true
			}
		}
	}
	return ref, true
}

// DividerAt finds the column or row boundary within tolerance of the point.
// Column boundaries win over row boundaries. The outer grid edges are not
// dividers, and points farther than tolerance outside the grid never match.
func (g *Grid) DividerAt(x, y, tolerance float64) (Divider, bool) {
	w, h := g.TotalSize()
	lx, ly := x+w/2, y+h/2
	if lx < -tolerance || lx > w+tolerance || ly < -tolerance || ly > h+tolerance {
		return Divider{}, false
	}
	if i := boundaryNear(g.columnWidths, lx, tolerance); i >= 0 {
		return Divider{Type: DividerCol, Index: i}, true
	}
	if i := boundaryNear(g.rowHeights, ly, tolerance); i >= 0 {
		return Divider{Type: DividerRow, Index: i}, true
	}
	return Divider{}, false
}

// indexAt scans cumulative sizes for the interval holding v.
func indexAt(sizes []float64, v float64) int {
	cum := 0.0
	for i, size := range sizes {
		if v >= cum && v <= cum+size {
			if v == cum+size && i+1 < len(sizes) {
				cum += size
				continue
			}
			return i
		}
		cum += size
	}
	return -1
}

// boundaryNear returns the first inner boundary within tolerance of v, or -1.
func boundaryNear(sizes []float64, v, tolerance float64) int {
	cum := 0.0
	for i := 0; i < len(sizes)-1; i++ {
		cum += sizes[i]
		if math.Abs(v-cum) <= tolerance {
			return i
		}
	}
	return -1
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
