package tablegrid

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// DefaultVisibleRowCount caps how many source rows become grid rows.
const DefaultVisibleRowCount = 10

// ErrNoDataSource is returned by operations that need a bound data source.
var ErrNoDataSource = errors.New("no data source bound")

// Row is one record from a data source, keyed by field name.
type Row = map[string]any

// RowSource supplies the current rows of an external data source.
// Rows returns at most limit rows; a limit <= 0 means no cap.
type RowSource interface {
	Rows(ctx context.Context, limit int) ([]Row, error)
}

// SliceSource is a RowSource over an in-memory slice.
type SliceSource []Row

// Rows implements RowSource.
func (s SliceSource) Rows(_ context.Context, limit int) ([]Row, error) {
	if limit > 0 && limit < len(s) {
		return s[:limit], nil
	}
	return s, nil
}

// Binding links grid columns to fields of a data source.
type Binding struct {
	DataSourceID    string
	ColumnMapping   map[int]string // column index → field name or ${expression}
	VisibleRowCount int
	source          RowSource
}

func newBinding(visibleRows int) Binding {
	return Binding{
		ColumnMapping:   make(map[int]string),
		VisibleRowCount: visibleRows,
	}
}

// Bound reports whether a data source is attached.
func (b *Binding) Bound() bool {
	return b.DataSourceID != "" && b.source != nil
}

// IsColumnBound reports whether col has a field mapping.
func (b *Binding) IsColumnBound(col int) bool {
	_, ok := b.ColumnMapping[col]
	return ok
}

// mappedColumns returns the mapped column indexes in ascending order.
func (b *Binding) mappedColumns() []int {
	cols := make([]int, 0, len(b.ColumnMapping))
	for col := range b.ColumnMapping {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	return cols
}

// syncResult summarises one synchronization pass.
type syncResult struct {
	taken   int
	written int
	added   int
	removed int
}

// syncRows resizes g so it holds exactly startRow+len(rows) rows and writes
// each mapped field into its column. Unmapped columns and rows above startRow
// keep their content.
func (b *Binding) syncRows(g *Grid, rows []Row, startRow int, newContext func(Row) *Context) (syncResult, error) {
	res := syncResult{taken: len(rows)}
	needed := startRow + len(rows)
	for g.RowCount() < needed {
		g.AddRow(-1)
		res.added++
	}
	for g.RowCount() > needed && g.DeleteRow(g.RowCount()-1) {
		res.removed++
	}

	cols := b.mappedColumns()
	for i, row := range rows {
		ctx := newContext(row)
		for _, col := range cols {
			if col < 0 || col >= g.ColCount() {
				continue
			}
			field := b.ColumnMapping[col]
			val, ok, err := ctx.Resolve(field)
			if err != nil {
				return res, fmt.Errorf("resolve field %q for row %d: %w", field, i, err)
			}
			if !ok {
				continue
			}
			g.SetCellContent(startRow+i, col, fmt.Sprint(val))
			res.written++
		}
	}
	return res, nil
}
