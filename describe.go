package tablegrid

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable dump of the table: sizes, binding,
// merges and every visible cell that has content or a placeholder.
// Useful for debugging layouts during development.
func (t *Table) Describe() string {
	var b strings.Builder
	g := t.grid
	w, h := g.TotalSize()

	fmt.Fprintf(&b, "Table %dx%d (%.0fx%.0f px)\n", g.RowCount(), g.ColCount(), w, h)
	fmt.Fprintf(&b, "  Rows: %s\n", formatSizes(g.rowHeights))
	fmt.Fprintf(&b, "  Columns: %s\n", formatSizes(g.columnWidths))

	var flags []string
	if t.style.HasHeaderRow {
		flags = append(flags, "header")
	}
	if t.style.AlternateRows {
		flags = append(flags, "alternate")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, "  Style: %s\n", strings.Join(flags, " "))
	}

	if t.binding.DataSourceID != "" || len(t.binding.ColumnMapping) > 0 {
		src := t.binding.DataSourceID
		if src == "" {
			src = "<unbound>"
		}
		fmt.Fprintf(&b, "  Binding: %s visibleRows=%d\n", src, t.binding.VisibleRowCount)
		for _, col := range t.binding.mappedColumns() {
			fmt.Fprintf(&b, "    %s ← %s\n", ColToName(col), t.binding.ColumnMapping[col])
		}
	}

	if merges := g.MergedRanges(); len(merges) > 0 {
		b.WriteString("  Merges:\n")
		for _, m := range merges {
			fmt.Fprintf(&b, "    %s (%dx%d)\n", m, m.Rows(), m.Cols())
		}
	}

	var cells []string
	for r, row := range g.cells {
		for c, cell := range row {
			if cell.Hidden {
				continue
			}
			ref := NewCellRef(r, c)
			switch {
			case cell.Content != "":
				cells = append(cells, fmt.Sprintf("    %s: %q", ref, cell.Content))
			case cell.IsPlaceholder:
				cells = append(cells, fmt.Sprintf("    %s: %s", ref, t.newContext(nil).placeholderText(cell.PlaceholderName)))
			}
		}
	}
	if len(cells) > 0 {
		b.WriteString("  Cells:\n")
		for _, line := range cells {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	if t.sel.Active != nil {
		fmt.Fprintf(&b, "  Selection: %s %s\n", t.sel.State(), t.sel.Range.Normalize())
	}
	return b.String()
}

func formatSizes(sizes []float64) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = fmt.Sprintf("%g", s)
	}
	return strings.Join(parts, " ")
}
