package tablegrid

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/ll"
	"github.com/olekukonko/ll/lh"
)

// layoutState tracks where a Table is in its mutate/rebuild cycle.
type layoutState int

const (
	layoutIdle layoutState = iota
	layoutMutating
	layoutRebuilding
)

func (s layoutState) String() string {
	switch s {
	case layoutIdle:
		return "idle"
	case layoutMutating:
		return "mutating"
	case layoutRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// Table is the table widget: it owns the grid, the selection, the data binding
// and the derived paint primitives. Every public mutation rebuilds the
// primitives before it returns. A Table is not safe for concurrent use.
type Table struct {
	grid    *Grid
	sel     Selection
	binding Binding
	style   Style

	evaluator     ExpressionEvaluator
	notationBegin string
	notationEnd   string
	listeners     []TableListener

	state      layoutState
	primitives []Primitive
	bbox       Bounds
	lastSel    selectionKey

	logger *ll.Logger
	trace  *bytes.Buffer
}

// NewTable creates a table with a default grid and performs the first layout.
func NewTable(opts ...Option) *Table {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return newTable(newGridWithSizes(o.rows, o.cols, o.rowHeight, o.columnWidth), o)
}

func newTable(g *Grid, o *options) *Table {
	t := &Table{
		grid:          g,
		binding:       newBinding(max(o.visibleRowCount, 1)),
		style:         DefaultStyle(),
		evaluator:     o.evaluator,
		notationBegin: o.notationBegin,
		notationEnd:   o.notationEnd,
		listeners:     o.listeners,
		trace:         &bytes.Buffer{},
		logger:        o.logger,
	}
	t.style.HasHeaderRow = o.hasHeaderRow
	t.style.AlternateRows = o.alternateRows
	if t.evaluator == nil {
		t.evaluator = NewExpressionEvaluator()
	}
	if t.logger == nil {
		t.logger = ll.New("tablegrid").Handler(lh.NewTextHandler(t.trace))
		if o.debug {
			t.logger.Enable()
			t.logger.Resume()
		} else {
			t.logger.Disable()
			t.logger.Suspend()
		}
	}
	t.Rebuild()
	return t
}

// mutation is the scoped guard held by a public mutation. It is acquired with
// begin and must be released with end on every path.
type mutation struct {
	t  *Table
	op string
}

func (t *Table) begin(op string) (*mutation, bool) {
	if t.state != layoutIdle {
		t.logger.Debugf("%s rejected: table is %s", op, t.state)
		return nil, false
	}
	t.state = layoutMutating
	return &mutation{t: t, op: op}, true
}

func (m *mutation) end() {
	m.t.state = layoutIdle
}

// rebuild tears down and recreates every paint primitive.
func (m *mutation) rebuild() {
	t := m.t
	t.state = layoutRebuilding
	defer func() { t.state = layoutMutating }()

	for _, l := range t.listeners {
		l.BeforeRebuild(t)
	}
	t.primitives = buildPrimitives(layoutInput{
		grid:    t.grid,
		sel:     &t.sel,
		binding: &t.binding,
		style:   t.style,
		ctx:     t.newContext(nil),
	})
	t.bbox = t.grid.Bounds()
	t.logger.Debugf("%s: rebuilt %d primitives for %dx%d grid", m.op, len(t.primitives), t.grid.RowCount(), t.grid.ColCount())

	if key := t.sel.key(); key != t.lastSel {
		t.lastSel = key
		for _, l := range t.listeners {
			l.SelectionChanged(t, t.Selection())
		}
	}
	for _, l := range t.listeners {
		l.AfterRebuild(t, t.Primitives())
	}
}

func (t *Table) newContext(row Row) *Context {
	return NewContext(row, WithContextNotation(t.notationBegin, t.notationEnd), WithContextEvaluator(t.evaluator))
}

// Rebuild performs a plain re-layout of the current grid.
func (t *Table) Rebuild() bool {
	m, ok := t.begin("Rebuild")
	if !ok {
		return false
	}
	defer m.end()
	m.rebuild()
	return true
}

// --- read access ---

// Grid returns a copy of the current grid.
func (t *Table) Grid() *Grid { return t.grid.Clone() }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return t.grid.RowCount() }

// ColCount returns the number of columns.
func (t *Table) ColCount() int { return t.grid.ColCount() }

// Cell returns a copy of the cell at (row, col).
func (t *Table) Cell(row, col int) (Cell, bool) { return t.grid.Cell(row, col) }

// CellBounds returns the rectangle of the cell at (row, col).
func (t *Table) CellBounds(row, col int) (Bounds, bool) { return t.grid.CellBounds(row, col) }

// CellAt maps a point to the underlying cell.
func (t *Table) CellAt(x, y float64) (CellRef, bool) { return t.grid.CellAt(x, y) }

// VisualCellAt maps a point to the visible (merge head) cell.
func (t *Table) VisualCellAt(x, y float64) (CellRef, bool) { return t.grid.VisualCellAt(x, y) }

// DividerAt finds a draggable divider near the point using the default tolerance.
func (t *Table) DividerAt(x, y float64) (Divider, bool) {
	return t.grid.DividerAt(x, y, DefaultDividerTolerance)
}

// Style returns the table style.
func (t *Table) Style() Style { return t.style }

// Primitives returns the paint primitives of the last layout.
func (t *Table) Primitives() []Primitive { return append([]Primitive(nil), t.primitives...) }

// BoundingBox returns the extent computed by the last layout.
func (t *Table) BoundingBox() Bounds { return t.bbox }

// Trace returns the debug trace collected when WithDebug is enabled.
func (t *Table) Trace() string { return t.trace.String() }

// --- structure ---

// AddRow inserts a row before index (-1 appends) and returns its index.
func (t *Table) AddRow(index int) int {
	m, ok := t.begin("AddRow")
	if !ok {
		return -1
	}
	defer m.end()
	t.commitPending()
	idx := t.grid.AddRow(index)
	t.sel.shiftRows(idx, 1)
	m.rebuild()
	return idx
}

// AddColumn inserts a column before index (-1 appends) and returns its index.
func (t *Table) AddColumn(index int) int {
	m, ok := t.begin("AddColumn")
	if !ok {
		return -1
	}
	defer m.end()
	t.commitPending()
	idx := t.grid.AddColumn(index)
	t.sel.shiftCols(idx, 1)
	m.rebuild()
	return idx
}

// DeleteRow removes a row. Out-of-range indexes and the last row are ignored.
func (t *Table) DeleteRow(index int) bool {
	m, ok := t.begin("DeleteRow")
	if !ok {
		return false
	}
	defer m.end()
	if index < 0 || index >= t.grid.RowCount() || t.grid.RowCount() <= 1 {
		return false
	}
	t.commitPending()
	t.grid.DeleteRow(index)
	t.sel.shiftRows(index+1, -1)
	t.sel.clamp(t.grid.RowCount(), t.grid.ColCount())
	m.rebuild()
	return true
}

// DeleteColumn removes a column. Out-of-range indexes and the last column are ignored.
func (t *Table) DeleteColumn(index int) bool {
	m, ok := t.begin("DeleteColumn")
	if !ok {
		return false
	}
	defer m.end()
	if index < 0 || index >= t.grid.ColCount() || t.grid.ColCount() <= 1 {
		return false
	}
	t.commitPending()
	t.grid.DeleteColumn(index)
	t.sel.shiftCols(index+1, -1)
	t.sel.clamp(t.grid.RowCount(), t.grid.ColCount())
	m.rebuild()
	return true
}

// ResizeRow sets a row height, clamped to MinCellSize.
func (t *Table) ResizeRow(index int, height float64) bool {
	return t.apply("ResizeRow", func() bool { return t.grid.ResizeRow(index, height) })
}

// ResizeColumn sets a column width, clamped to MinCellSize.
func (t *Table) ResizeColumn(index int, width float64) bool {
	return t.apply("ResizeColumn", func() bool { return t.grid.ResizeColumn(index, width) })
}

// ResizeDivider moves a divider found by DividerAt so the row or column before
// it gets the given size.
func (t *Table) ResizeDivider(d Divider, size float64) bool {
	if d.Type == DividerRow {
		return t.ResizeRow(d.Index, size)
	}
	return t.ResizeColumn(d.Index, size)
}

// DistributeRows gives every row the mean height.
func (t *Table) DistributeRows() {
	t.apply("DistributeRows", func() bool { t.grid.DistributeRows(); return true })
}

// DistributeColumns gives every column the mean width.
func (t *Table) DistributeColumns() {
	t.apply("DistributeColumns", func() bool { t.grid.DistributeColumns(); return true })
}

// MergeCells merges the rectangle between two corners. On success the head
// becomes the active cell and the selection collapses onto it.
func (t *Table) MergeCells(startRow, startCol, endRow, endCol int) bool {
	m, ok := t.begin("MergeCells")
	if !ok {
		return false
	}
	defer m.end()
	if !t.grid.canMerge(startRow, startCol, endRow, endCol) {
		return false
	}
	t.commitPending()
	head, _ := t.grid.MergeCells(startRow, startCol, endRow, endCol)
	t.sel.set(head)
	m.rebuild()
	return true
}

// MergeSelection merges the current selection range.
func (t *Table) MergeSelection() bool {
	if t.sel.Range == nil {
		return false
	}
	r := *t.sel.Range
	return t.MergeCells(r.StartRow, r.StartCol, r.EndRow, r.EndCol)
}

// UnmergeCells splits the merge headed at (row, col).
func (t *Table) UnmergeCells(row, col int) bool {
	return t.apply("UnmergeCells", func() bool { return t.grid.UnmergeCells(row, col) })
}

// UnmergeSelection splits the merge headed at the active cell.
func (t *Table) UnmergeSelection() bool {
	if t.sel.Active == nil {
		return false
	}
	return t.UnmergeCells(t.sel.Active.Row, t.sel.Active.Col)
}

// --- content ---

// SetCellContent replaces a cell's text.
func (t *Table) SetCellContent(row, col int, content string) bool {
	return t.apply("SetCellContent", func() bool { return t.grid.SetCellContent(row, col, content) })
}

// SetPlaceholder marks a cell as a placeholder for a data field.
func (t *Table) SetPlaceholder(row, col int, name string) bool {
	return t.apply("SetPlaceholder", func() bool { return t.grid.SetPlaceholder(row, col, name) })
}

// UpdateCell edits a cell's style or content through fn.
func (t *Table) UpdateCell(row, col int, fn func(*Cell)) bool {
	return t.apply("UpdateCell", func() bool { return t.grid.UpdateCell(row, col, fn) })
}

// UpdateSelection applies fn to every visible cell in the selection range.
func (t *Table) UpdateSelection(fn func(*Cell)) bool {
	if t.sel.Range == nil {
		return false
	}
	r := t.sel.Range.Normalize()
	return t.apply("UpdateSelection", func() bool {
		for row := r.StartRow; row <= r.EndRow; row++ {
			for col := r.StartCol; col <= r.EndCol; col++ {
				if c, _ := t.grid.Cell(row, col); !c.Hidden {
					t.grid.UpdateCell(row, col, fn)
				}
			}
		}
		return true
	})
}

// SetStyle edits the table style.
func (t *Table) SetStyle(fn func(*Style)) {
	t.apply("SetStyle", func() bool { fn(&t.style); return true })
}

// apply runs fn under the guard and rebuilds when it reports a change.
func (t *Table) apply(op string, fn func() bool) bool {
	m, ok := t.begin(op)
	if !ok {
		return false
	}
	defer m.end()
	if !fn() {
		return false
	}
	m.rebuild()
	return true
}

// --- selection and editing ---

// Selection returns a copy of the selection state.
func (t *Table) Selection() Selection { return t.sel.copy() }

// SelectionState returns the current state machine phase.
func (t *Table) SelectionState() SelectionState { return t.sel.State() }

// SelectCell makes (row, col) the active cell with a single-cell range. Hidden
// cells resolve to their merge head. Selecting the active cell again does nothing.
func (t *Table) SelectCell(row, col int) bool {
	ref, ok := t.grid.HeadOf(row, col)
	if !ok {
		return false
	}
	if t.sel.Active != nil && *t.sel.Active == ref {
		return true
	}
	m, ok := t.begin("SelectCell")
	if !ok {
		return false
	}
	defer m.end()
	t.commitPending()
	t.sel.set(ref)
	m.rebuild()
	return true
}

// SelectAt selects the visible cell under a point.
func (t *Table) SelectAt(x, y float64) bool {
	ref, ok := t.grid.CellAt(x, y)
	if !ok {
		return false
	}
	return t.SelectCell(ref.Row, ref.Col)
}

// ExtendSelection moves the far corner of the range to (row, col), keeping the
// active cell as the anchor.
func (t *Table) ExtendSelection(row, col int) bool {
	if t.sel.Active == nil || !t.grid.InRange(row, col) {
		return false
	}
	m, ok := t.begin("ExtendSelection")
	if !ok {
		return false
	}
	defer m.end()
	t.commitPending()
	t.sel.extend(NewCellRef(row, col))
	m.rebuild()
	return true
}

// ClearSelection returns to the idle state, committing any pending edit.
func (t *Table) ClearSelection() bool {
	if t.sel.Active == nil {
		return false
	}
	m, ok := t.begin("ClearSelection")
	if !ok {
		return false
	}
	defer m.end()
	t.commitPending()
	t.sel.clear()
	m.rebuild()
	return true
}

// BeginEdit puts the active cell into text-edit mode and returns the surface
// that buffers the typed text. The cell's text primitive is suppressed until
// the edit ends.
func (t *Table) BeginEdit() (*EditSurface, bool) {
	if t.sel.Active == nil {
		return nil, false
	}
	if t.sel.editing != nil {
		return t.sel.editing, true
	}
	m, ok := t.begin("BeginEdit")
	if !ok {
		return nil, false
	}
	defer m.end()
	ref := *t.sel.Active
	cell, _ := t.grid.Cell(ref.Row, ref.Col)
	bounds, _ := t.grid.CellBounds(ref.Row, ref.Col)
	t.sel.editing = &EditSurface{Ref: ref, Bounds: bounds, text: cell.Content}
	m.rebuild()
	return t.sel.editing, true
}

// Editing returns the active edit surface, if any.
func (t *Table) Editing() *EditSurface { return t.sel.editing }

// CommitEdit writes the buffered text into the cell and leaves edit mode.
func (t *Table) CommitEdit() bool {
	if t.sel.editing == nil {
		return false
	}
	m, ok := t.begin("CommitEdit")
	if !ok {
		return false
	}
	defer m.end()
	t.commitPending()
	m.rebuild()
	return true
}

// CancelEdit leaves edit mode without touching the cell.
func (t *Table) CancelEdit() bool {
	if t.sel.editing == nil {
		return false
	}
	m, ok := t.begin("CancelEdit")
	if !ok {
		return false
	}
	defer m.end()
	t.sel.editing = nil
	m.rebuild()
	return true
}

// commitPending flushes an open edit surface into the grid.
func (t *Table) commitPending() {
	ed := t.sel.editing
	if ed == nil {
		return
	}
	t.grid.SetCellContent(ed.Ref.Row, ed.Ref.Col, ed.text)
	t.sel.editing = nil
}

// --- data binding ---

// DataSourceID returns the bound source id, or "" when unbound.
func (t *Table) DataSourceID() string { return t.binding.DataSourceID }

// ColumnMapping returns a copy of the column → field mapping.
func (t *Table) ColumnMapping() map[int]string {
	out := make(map[int]string, len(t.binding.ColumnMapping))
	for k, v := range t.binding.ColumnMapping {
		out[k] = v
	}
	return out
}

// VisibleRowCount returns the cap on materialized source rows.
func (t *Table) VisibleRowCount() int { return t.binding.VisibleRowCount }

// BindDataSource attaches a row source under the given id.
func (t *Table) BindDataSource(id string, src RowSource) bool {
	return t.apply("BindDataSource", func() bool {
		t.binding.DataSourceID = id
		t.binding.source = src
		return true
	})
}

// AttachSource supplies the provider for a binding restored from a snapshot,
// keeping its id.
func (t *Table) AttachSource(src RowSource) {
	t.binding.source = src
}

// UnbindDataSource detaches the data source. Column mappings are kept.
func (t *Table) UnbindDataSource() bool {
	return t.apply("UnbindDataSource", func() bool {
		if t.binding.DataSourceID == "" && t.binding.source == nil {
			return false
		}
		t.binding.DataSourceID = ""
		t.binding.source = nil
		return true
	})
}

// BindColumn maps a column to a field name or "${expression}".
func (t *Table) BindColumn(col int, field string) bool {
	return t.apply("BindColumn", func() bool {
		if col < 0 || col >= t.grid.ColCount() || field == "" {
			return false
		}
		t.binding.ColumnMapping[col] = field
		return true
	})
}

// UnbindColumn removes a column mapping.
func (t *Table) UnbindColumn(col int) bool {
	return t.apply("UnbindColumn", func() bool {
		if !t.binding.IsColumnBound(col) {
			return false
		}
		delete(t.binding.ColumnMapping, col)
		return true
	})
}

// SetVisibleRowCount sets the binding window size; values below 1 become 1.
func (t *Table) SetVisibleRowCount(n int) {
	t.binding.VisibleRowCount = max(n, 1)
}

// RefreshData pulls up to VisibleRowCount rows from the bound source, resizes
// the grid to hold them below the optional header row and overwrites mapped
// cells. Without a source, or when the source has no rows, it only re-lays
// out. A failing source is reported after the re-layout.
func (t *Table) RefreshData(ctx context.Context) error {
	m, ok := t.begin("RefreshData")
	if !ok {
		return nil
	}
	defer m.end()
	defer m.rebuild()

	if !t.binding.Bound() {
		return nil
	}
	rows, err := t.binding.source.Rows(ctx, t.binding.VisibleRowCount)
	if err != nil {
		return fmt.Errorf("fetch rows from %q: %w", t.binding.DataSourceID, err)
	}
	if len(rows) == 0 {
		return nil
	}
	if len(rows) > t.binding.VisibleRowCount {
		rows = rows[:t.binding.VisibleRowCount]
	}

	t.commitPending()
	res, err := t.binding.syncRows(t.grid, rows, t.style.startDataRow(), t.newContext)
	t.sel.clamp(t.grid.RowCount(), t.grid.ColCount())
	t.logger.Debugf("RefreshData %q: took %d rows, +%d/-%d grid rows, wrote %d cells",
		t.binding.DataSourceID, res.taken, res.added, res.removed, res.written)
	if err != nil {
		return fmt.Errorf("refresh %q: %w", t.binding.DataSourceID, err)
	}
	return nil
}
