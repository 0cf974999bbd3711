package tablegrid

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidSnapshot is returned when a snapshot's sizes and matrix disagree.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the complete persistent state of a table as a plain record.
type Snapshot struct {
	RowCount        int            `json:"rowCount"`
	ColCount        int            `json:"colCount"`
	RowHeights      []float64      `json:"rowHeights"`
	ColumnWidths    []float64      `json:"columnWidths"`
	RowHeight       float64        `json:"defaultRowHeight,omitempty"`
	ColumnWidth     float64        `json:"defaultColumnWidth,omitempty"`
	Cells           [][]Cell       `json:"cells"`
	DataSourceID    string         `json:"dataSourceId,omitempty"`
	ColumnMapping   map[int]string `json:"columnMapping,omitempty"`
	VisibleRowCount int            `json:"visibleRowCount"`
	Style           Style          `json:"style"`
}

// Validate checks that the record describes a consistent grid.
func (s Snapshot) Validate() error {
	if s.RowCount < 1 || s.ColCount < 1 {
		return fmt.Errorf("%w: grid must have at least one row and column, got %dx%d", ErrInvalidSnapshot, s.RowCount, s.ColCount)
	}
	if len(s.RowHeights) != s.RowCount {
		return fmt.Errorf("%w: %d row heights for %d rows", ErrInvalidSnapshot, len(s.RowHeights), s.RowCount)
	}
	if len(s.ColumnWidths) != s.ColCount {
		return fmt.Errorf("%w: %d column widths for %d columns", ErrInvalidSnapshot, len(s.ColumnWidths), s.ColCount)
	}
	if len(s.Cells) != s.RowCount {
		return fmt.Errorf("%w: %d cell rows for %d rows", ErrInvalidSnapshot, len(s.Cells), s.RowCount)
	}
	for r, row := range s.Cells {
		if len(row) != s.ColCount {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidSnapshot, r, len(row), s.ColCount)
		}
		for c, cell := range row {
			if cell.RowSpan < 1 || cell.ColSpan < 1 {
				return fmt.Errorf("%w: cell %s has span %dx%d", ErrInvalidSnapshot, NewCellRef(r, c), cell.RowSpan, cell.ColSpan)
			}
		}
	}
	return nil
}

// Snapshot captures the table state. The data source provider itself is not
// part of it; only its id is.
func (t *Table) Snapshot() Snapshot {
	g := t.grid.Clone()
	return Snapshot{
		RowCount:        g.RowCount(),
		ColCount:        g.ColCount(),
		RowHeights:      g.rowHeights,
		ColumnWidths:    g.columnWidths,
		RowHeight:       g.defaultRowHeight,
		ColumnWidth:     g.defaultColumnWidth,
		Cells:           g.cells,
		DataSourceID:    t.binding.DataSourceID,
		ColumnMapping:   t.ColumnMapping(),
		VisibleRowCount: t.binding.VisibleRowCount,
		Style:           t.style,
	}
}

// NewTableFromSnapshot rebuilds a table from a snapshot. The snapshot's sizes
// win over sizing options; default sizes only apply when the record has none. Call AttachSource to reconnect a
// bound data source.
func NewTableFromSnapshot(s Snapshot, opts ...Option) (*Table, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if s.VisibleRowCount > 0 {
		o.visibleRowCount = s.VisibleRowCount
	}
	if s.RowHeight > 0 {
		o.rowHeight = s.RowHeight
	}
	if s.ColumnWidth > 0 {
		o.columnWidth = s.ColumnWidth
	}

	g := newGridWithSizes(1, 1, o.rowHeight, o.columnWidth)
	g.rowHeights = append([]float64(nil), s.RowHeights...)
	g.columnWidths = append([]float64(nil), s.ColumnWidths...)
	g.cells = make([][]Cell, len(s.Cells))
	for r, row := range s.Cells {
		g.cells[r] = append([]Cell(nil), row...)
	}

	t := newTable(g, o)
	t.style = s.Style
	t.binding.DataSourceID = s.DataSourceID
	for col, field := range s.ColumnMapping {
		t.binding.ColumnMapping[col] = field
	}
	t.Rebuild()
	return t, nil
}

// WriteJSON encodes the table snapshot as JSON.
func (t *Table) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Snapshot()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ReadJSON decodes a snapshot written by WriteJSON and rebuilds the table.
func ReadJSON(r io.Reader, opts ...Option) (*Table, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return NewTableFromSnapshot(s, opts...)
}
