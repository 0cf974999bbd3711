package tablegrid

// AddRow inserts a row of default cells before index; -1 (or any index outside
// [0, RowCount]) appends. A row inserted inside a merged region widens it.
func (g *Grid) AddRow(index int) int {
	if index < 0 || index > g.RowCount() {
		index = g.RowCount()
	}
	var widened []CellRef
	for _, ref := range g.heads() {
		head := g.cells[ref.Row][ref.Col]
		if ref.Row < index && index <= ref.Row+head.RowSpan-1 {
			widened = append(widened, ref)
		}
	}

	g.rowHeights = insertAt(g.rowHeights, index, g.defaultRowHeight)
	g.cells = insertAt(g.cells, index, newCellRow(g.ColCount()))

	for _, ref := range widened {
		head := &g.cells[ref.Row][ref.Col]
		head.RowSpan++
		for c := ref.Col; c < min(ref.Col+head.ColSpan, g.ColCount()); c++ {
			g.cells[index][c].Hidden = true
		}
	}
	return index
}

// AddColumn inserts a column of default cells before index; -1 (or any index
// outside [0, ColCount]) appends. A column inserted inside a merged region widens it.
func (g *Grid) AddColumn(index int) int {
	if index < 0 || index > g.ColCount() {
		index = g.ColCount()
	}
	var widened []CellRef
	for _, ref := range g.heads() {
		head := g.cells[ref.Row][ref.Col]
		if ref.Col < index && index <= ref.Col+head.ColSpan-1 {
			widened = append(widened, ref)
		}
	}

	g.columnWidths = insertAt(g.columnWidths, index, g.defaultColumnWidth)
	for r := range g.cells {
		g.cells[r] = insertAt(g.cells[r], index, NewCell())
	}

	for _, ref := range widened {
		head := &g.cells[ref.Row][ref.Col]
		head.ColSpan++
		for r := ref.Row; r < min(ref.Row+head.RowSpan, g.RowCount()); r++ {
			g.cells[r][index].Hidden = true
		}
	}
	return index
}

// DeleteRow removes the row at index. It is a no-op when index is out of range
// or the grid has a single row. Merges crossing the row shrink by one; a merge
// headed on the row moves its head down to the next row.
func (g *Grid) DeleteRow(index int) bool {
	if index < 0 || index >= g.RowCount() || g.RowCount() <= 1 {
		return false
	}
	line := Range{StartRow: index, StartCol: 0, EndRow: index, EndCol: g.ColCount() - 1}
	for _, ref := range g.heads() {
		head := g.cells[ref.Row][ref.Col]
		if !head.spanRange(ref).Intersects(line) {
			continue
		}
		switch {
		case ref.Row < index:
			g.cells[ref.Row][ref.Col].RowSpan--
		case head.RowSpan > 1 && index+1 < g.RowCount():
			head.RowSpan--
			g.cells[index+1][ref.Col] = head
		}
	}

	g.rowHeights = removeAt(g.rowHeights, index)
	g.cells = removeAt(g.cells, index)
	return true
}

// DeleteColumn removes the column at index with the same rules as DeleteRow.
func (g *Grid) DeleteColumn(index int) bool {
	if index < 0 || index >= g.ColCount() || g.ColCount() <= 1 {
		return false
	}
	line := Range{StartRow: 0, StartCol: index, EndRow: g.RowCount() - 1, EndCol: index}
	for _, ref := range g.heads() {
		head := g.cells[ref.Row][ref.Col]
		if !head.spanRange(ref).Intersects(line) {
			continue
		}
		switch {
		case ref.Col < index:
			g.cells[ref.Row][ref.Col].ColSpan--
		case head.ColSpan > 1 && index+1 < g.ColCount():
			head.ColSpan--
			g.cells[ref.Row][index+1] = head
		}
	}

	g.columnWidths = removeAt(g.columnWidths, index)
	for r := range g.cells {
		g.cells[r] = removeAt(g.cells[r], index)
	}
	return true
}

// ResizeRow sets a row height, clamped to MinCellSize.
func (g *Grid) ResizeRow(index int, height float64) bool {
	if index < 0 || index >= g.RowCount() {
		return false
	}
	g.rowHeights[index] = max(height, MinCellSize)
	return true
}

// ResizeColumn sets a column width, clamped to MinCellSize.
func (g *Grid) ResizeColumn(index int, width float64) bool {
	if index < 0 || index >= g.ColCount() {
		return false
	}
	g.columnWidths[index] = max(width, MinCellSize)
	return true
}

// DistributeRows gives every row the mean height, keeping the total.
func (g *Grid) DistributeRows() {
	distribute(g.rowHeights)
}

// DistributeColumns gives every column the mean width, keeping the total.
func (g *Grid) DistributeColumns() {
	distribute(g.columnWidths)
}

// MergeCells merges the rectangle spanned by the two corners into its top-left
// cell and returns that head. Single-cell or out-of-range rectangles are
// rejected. Existing merges touching the rectangle are dissolved first.
func (g *Grid) MergeCells(startRow, startCol, endRow, endCol int) (CellRef, bool) {
	if !g.canMerge(startRow, startCol, endRow, endCol) {
		return CellRef{}, false
	}
	rect := Range{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol}.Normalize()

	for _, ref := range g.heads() {
		if g.cells[ref.Row][ref.Col].spanRange(ref).Intersects(rect) {
			g.UnmergeCells(ref.Row, ref.Col)
		}
	}

	for r := rect.StartRow; r <= rect.EndRow; r++ {
		for c := rect.StartCol; c <= rect.EndCol; c++ {
			g.cells[r][c].Hidden = true
		}
	}
	head := &g.cells[rect.StartRow][rect.StartCol]
	head.Hidden = false
	head.RowSpan = rect.Rows()
	head.ColSpan = rect.Cols()
	return NewCellRef(rect.StartRow, rect.StartCol), true
}

// canMerge reports whether both corners are on the grid and span more than one cell.
func (g *Grid) canMerge(startRow, startCol, endRow, endCol int) bool {
	return g.InRange(startRow, startCol) && g.InRange(endRow, endCol) &&
		(startRow != endRow || startCol != endCol)
}

// UnmergeCells splits the merge headed at (row, col) back into single cells.
// It is a no-op for cells that do not span.
func (g *Grid) UnmergeCells(row, col int) bool {
	if !g.InRange(row, col) {
		return false
	}
	head := &g.cells[row][col]
	if head.RowSpan <= 1 && head.ColSpan <= 1 {
		return false
	}
	rect := g.clipRange(head.spanRange(NewCellRef(row, col)))
	head.RowSpan, head.ColSpan = 1, 1
	for r := rect.StartRow; r <= rect.EndRow; r++ {
		for c := rect.StartCol; c <= rect.EndCol; c++ {
			g.cells[r][c].Hidden = false
		}
	}
	return true
}

// heads lists the positions of all merge heads.
func (g *Grid) heads() []CellRef {
	var out []CellRef
	for r, row := range g.cells {
		for c, cell := range row {
			if cell.IsMergeHead() {
				out = append(out, NewCellRef(r, c))
			}
		}
	}
	return out
}

func distribute(sizes []float64) {
	if len(sizes) == 0 {
		return
	}
	mean := sum(sizes) / float64(len(sizes))
	for i := range sizes {
		sizes[i] = mean
	}
}

func insertAt[T any](s []T, index int, v T) []T {
	s = append(s, v)
	copy(s[index+1:], s[index:])
	s[index] = v
	return s
}

func removeAt[T any](s []T, index int) []T {
	return append(s[:index], s[index+1:]...)
}
