package tablegrid

// SelectionState is the phase of the selection/editing state machine.
type SelectionState int

const (
	StateIdle SelectionState = iota
	StateCellActive
	StateRangeSelected
	StateEditing
)

// String returns a human-readable name for the state.
func (s SelectionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCellActive:
		return "CellActive"
	case StateRangeSelected:
		return "RangeSelected"
	case StateEditing:
		return "Editing"
	default:
		return "Unknown"
	}
}

// Selection tracks the active cell, the selected range and the cell being edited.
// A non-nil Active always comes with a non-nil Range containing it.
type Selection struct {
	Active  *CellRef
	Range   *Range
	editing *EditSurface
}

// State derives the current phase from the fields.
func (s *Selection) State() SelectionState {
	switch {
	case s.editing != nil:
		return StateEditing
	case s.Active == nil:
		return StateIdle
	case s.Range != nil && !s.Range.IsSingleCell():
		return StateRangeSelected
	default:
		return StateCellActive
	}
}

// IsEditing reports whether ref is the cell in text-edit mode.
func (s *Selection) IsEditing(ref CellRef) bool {
	return s.editing != nil && s.editing.Ref == ref
}

func (s *Selection) set(ref CellRef) {
	r := SingleCellRange(ref)
	s.Active = &ref
	s.Range = &r
}

func (s *Selection) extend(to CellRef) {
	r := Range{StartRow: s.Active.Row, StartCol: s.Active.Col, EndRow: to.Row, EndCol: to.Col}
	s.Range = &r
}

func (s *Selection) clear() {
	s.Active = nil
	s.Range = nil
	s.editing = nil
}

// shiftRows moves every selection row at or after from by delta, following
// the cells through a row insert or delete.
func (s *Selection) shiftRows(from, delta int) {
	shift := func(v *int) {
		if *v >= from {
			*v = max(*v+delta, 0)
		}
	}
	if s.Active != nil {
		shift(&s.Active.Row)
	}
	if s.Range != nil {
		shift(&s.Range.StartRow)
		shift(&s.Range.EndRow)
	}
	if s.editing != nil {
		shift(&s.editing.Ref.Row)
	}
}

// shiftCols is shiftRows for columns.
func (s *Selection) shiftCols(from, delta int) {
	shift := func(v *int) {
		if *v >= from {
			*v = max(*v+delta, 0)
		}
	}
	if s.Active != nil {
		shift(&s.Active.Col)
	}
	if s.Range != nil {
		shift(&s.Range.StartCol)
		shift(&s.Range.EndCol)
	}
	if s.editing != nil {
		shift(&s.editing.Ref.Col)
	}
}

// clamp drops selection parts that no longer fit a grid of the given size.
func (s *Selection) clamp(rows, cols int) {
	if s.Active == nil {
		return
	}
	if s.Active.Row >= rows || s.Active.Col >= cols {
		s.clear()
		return
	}
	r := *s.Range
	r.StartRow, r.EndRow = min(r.StartRow, rows-1), min(r.EndRow, rows-1)
	r.StartCol, r.EndCol = min(r.StartCol, cols-1), min(r.EndCol, cols-1)
	s.Range = &r
	if s.editing != nil && (s.editing.Ref.Row >= rows || s.editing.Ref.Col >= cols) {
		s.editing = nil
	}
}

// EditSurface buffers text typed into a cell until the edit is committed.
// The grid is not touched until Table.CommitEdit.
type EditSurface struct {
	Ref    CellRef
	Bounds Bounds
	text   string
}

// Text returns the buffered text.
func (e *EditSurface) Text() string { return e.text }

// SetText replaces the buffered text.
func (e *EditSurface) SetText(text string) { e.text = text }

// selectionKey is a comparable summary used to detect selection changes.
type selectionKey struct {
	active    CellRef
	hasActive bool
	rng       Range
	hasRange  bool
	editing   CellRef
	isEditing bool
}

func (s *Selection) key() selectionKey {
	var k selectionKey
	if s.Active != nil {
		k.active, k.hasActive = *s.Active, true
	}
	if s.Range != nil {
		k.rng, k.hasRange = *s.Range, true
	}
	if s.editing != nil {
		k.editing, k.isEditing = s.editing.Ref, true
	}
	return k
}

// copy returns a Selection that shares no pointers with s except the edit surface.
func (s *Selection) copy() Selection {
	out := Selection{editing: s.editing}
	if s.Active != nil {
		a := *s.Active
		out.Active = &a
	}
	if s.Range != nil {
		r := *s.Range
		out.Range = &r
	}
	return out
}
