package tablegrid

import (
	"fmt"
	"strings"
)

// CellRef addresses a single grid position.
type CellRef struct {
	Row int // 0-based row index
	Col int // 0-based column index
}

// NewCellRef creates a CellRef.
func NewCellRef(row, col int) CellRef {
	return CellRef{Row: row, Col: col}
}

// ParseCellRef parses a spreadsheet-style reference like "A1" or "$B$3".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}
	name := strings.ReplaceAll(s, "$", "")
	col, row, err := parseCellName(name)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Row: row, Col: col}, nil
}

// parseCellName parses "A1" into col=0, row=0.
func parseCellName(name string) (col, row int, err error) {
	i := 0
	for i < len(name) && isAlpha(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return 0, 0, fmt.Errorf("invalid cell name: %q", name)
	}

	col, err = NameToCol(name[:i])
	if err != nil {
		return 0, 0, err
	}

	rowNum := 0
	for _, ch := range name[i:] {
		if ch < '0' || ch > '9' {
			return 0, 0, fmt.Errorf("invalid row in cell name: %q", name)
		}
		rowNum = rowNum*10 + int(ch-'0')
	}
	if rowNum < 1 {
		return 0, 0, fmt.Errorf("invalid row number in cell name: %q", name)
	}
	return col, rowNum - 1, nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// String formats the reference as "A1".
func (c CellRef) String() string {
	return ColToName(c.Col) + fmt.Sprintf("%d", c.Row+1)
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA"
func ColToName(col int) string {
	result := ""
	col++
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// NameToCol converts a column name to a 0-based column index.
// "A"→0, "Z"→25, "AA"→26
func NameToCol(name string) (int, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// Range is a rectangle of cells given by two corners. The corners are kept as
// supplied; use Normalize for min/max bounds.
type Range struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// SingleCellRange returns the degenerate range covering ref.
func SingleCellRange(ref CellRef) Range {
	return Range{StartRow: ref.Row, StartCol: ref.Col, EndRow: ref.Row, EndCol: ref.Col}
}

// ParseRange parses "A1:C5". A single reference yields a degenerate range.
func ParseRange(s string) (Range, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	first, err := ParseCellRef(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if len(parts) == 1 {
		return SingleCellRange(first), nil
	}
	last, err := ParseCellRef(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return Range{StartRow: first.Row, StartCol: first.Col, EndRow: last.Row, EndCol: last.Col}, nil
}

// Normalize returns the range with Start <= End on both axes.
func (r Range) Normalize() Range {
	return Range{
		StartRow: min(r.StartRow, r.EndRow),
		StartCol: min(r.StartCol, r.EndCol),
		EndRow:   max(r.StartRow, r.EndRow),
		EndCol:   max(r.StartCol, r.EndCol),
	}
}

// Contains reports whether ref lies inside the range.
func (r Range) Contains(ref CellRef) bool {
	n := r.Normalize()
	return ref.Row >= n.StartRow && ref.Row <= n.EndRow &&
		ref.Col >= n.StartCol && ref.Col <= n.EndCol
}

// Intersects reports whether the two ranges share at least one cell.
func (r Range) Intersects(o Range) bool {
	a, b := r.Normalize(), o.Normalize()
	return a.StartRow <= b.EndRow && b.StartRow <= a.EndRow &&
		a.StartCol <= b.EndCol && b.StartCol <= a.EndCol
}

// IsSingleCell reports whether the range is degenerate.
func (r Range) IsSingleCell() bool {
	return r.StartRow == r.EndRow && r.StartCol == r.EndCol
}

// Rows returns the number of rows covered.
func (r Range) Rows() int {
	n := r.Normalize()
	return n.EndRow - n.StartRow + 1
}

// Cols returns the number of columns covered.
func (r Range) Cols() int {
	n := r.Normalize()
	return n.EndCol - n.StartCol + 1
}

// String formats the range as "A1:C5".
func (r Range) String() string {
	n := r.Normalize()
	return NewCellRef(n.StartRow, n.StartCol).String() + ":" + NewCellRef(n.EndRow, n.EndCol).String()
}
