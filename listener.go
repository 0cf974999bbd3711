package tablegrid

// TableListener is notified around each layout rebuild. Public mutations
// issued from inside a callback are rejected while the rebuild is in flight.
type TableListener interface {
	// BeforeRebuild is called after a mutation, before primitives are rebuilt.
	BeforeRebuild(t *Table)

	// AfterRebuild is called once the new primitives are in place.
	AfterRebuild(t *Table, primitives []Primitive)

	// SelectionChanged is called when a rebuild observes a different selection
	// than the previous one.
	SelectionChanged(t *Table, sel Selection)
}

// ListenerFuncs adapts plain functions to TableListener. Nil fields are skipped.
type ListenerFuncs struct {
	OnBeforeRebuild    func(t *Table)
	OnAfterRebuild     func(t *Table, primitives []Primitive)
	OnSelectionChanged func(t *Table, sel Selection)
}

func (l ListenerFuncs) BeforeRebuild(t *Table) {
	if l.OnBeforeRebuild != nil {
		l.OnBeforeRebuild(t)
	}
}

func (l ListenerFuncs) AfterRebuild(t *Table, primitives []Primitive) {
	if l.OnAfterRebuild != nil {
		l.OnAfterRebuild(t, primitives)
	}
}

func (l ListenerFuncs) SelectionChanged(t *Table, sel Selection) {
	if l.OnSelectionChanged != nil {
		l.OnSelectionChanged(t, sel)
	}
}
