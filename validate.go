package tablegrid

import (
	"fmt"
	"strings"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Grid state is inconsistent
	SeverityWarning                 // Grid may render or bind unexpectedly
)

// ValidationIssue represents a single problem found in a table.
type ValidationIssue struct {
	Severity Severity
	Cell     CellRef
	Message  string
}

// String formats the issue as "[ERROR] A2: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.Cell, v.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []ValidationIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks merge consistency, sizes, expression syntax and column
// mappings. It never modifies the table.
func (t *Table) Validate() []ValidationIssue {
	var issues []ValidationIssue
	issues = append(issues, validateMerges(t.grid)...)
	issues = append(issues, validateSizes(t.grid)...)
	issues = append(issues, validateExpressions(t.grid, t.notationBegin, t.notationEnd)...)
	issues = append(issues, t.validateMapping()...)
	return issues
}

// validateMerges checks that every span fits the grid, that heads do not
// overlap and that hidden cells are exactly the covered positions.
func validateMerges(g *Grid) []ValidationIssue {
	var issues []ValidationIssue
	covered := make(map[CellRef]CellRef)

	for r, row := range g.cells {
		for c, cell := range row {
			ref := NewCellRef(r, c)
			if cell.RowSpan < 1 || cell.ColSpan < 1 {
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					Cell:     ref,
					Message:  fmt.Sprintf("span %dx%d must be at least 1x1", cell.RowSpan, cell.ColSpan),
				})
				continue
			}
			if !cell.IsMergeHead() {
				continue
			}
			span := cell.spanRange(ref)
			if span.EndRow >= g.RowCount() || span.EndCol >= g.ColCount() {
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					Cell:     ref,
					Message:  fmt.Sprintf("merge %s extends beyond the %dx%d grid", span, g.RowCount(), g.ColCount()),
				})
				span = g.clipRange(span)
			}
			for rr := span.StartRow; rr <= span.EndRow; rr++ {
				for cc := span.StartCol; cc <= span.EndCol; cc++ {
					pos := NewCellRef(rr, cc)
					if pos == ref {
						continue
					}
					if other, dup := covered[pos]; dup {
						issues = append(issues, ValidationIssue{
							Severity: SeverityError,
							Cell:     ref,
							Message:  fmt.Sprintf("merge overlaps the merge headed at %s at %s", other, pos),
						})
						continue
					}
					covered[pos] = ref
					if !g.cells[rr][cc].Hidden {
						issues = append(issues, ValidationIssue{
							Severity: SeverityError,
							Cell:     pos,
							Message:  fmt.Sprintf("cell is inside the merge headed at %s but is not hidden", ref),
						})
					}
				}
			}
		}
	}

	for r, row := range g.cells {
		for c, cell := range row {
			ref := NewCellRef(r, c)
			if _, ok := covered[ref]; cell.Hidden && !ok {
				issues = append(issues, ValidationIssue{
					Severity: SeverityWarning,
					Cell:     ref,
					Message:  "hidden cell is not covered by any merge",
				})
			}
		}
	}
	return issues
}

func validateSizes(g *Grid) []ValidationIssue {
	var issues []ValidationIssue
	for r, h := range g.rowHeights {
		if h < MinCellSize {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Cell:     NewCellRef(r, 0),
				Message:  fmt.Sprintf("row %d height %.1f is below the minimum %.0f", r+1, h, MinCellSize),
			})
		}
	}
	for c, w := range g.columnWidths {
		if w < MinCellSize {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Cell:     NewCellRef(0, c),
				Message:  fmt.Sprintf("column %s width %.1f is below the minimum %.0f", ColToName(c), w, MinCellSize),
			})
		}
	}
	return issues
}

// validateExpressions checks expression syntax in all visible cells.
func validateExpressions(g *Grid, notationBegin, notationEnd string) []ValidationIssue {
	var issues []ValidationIssue
	for r, row := range g.cells {
		for c, cell := range row {
			if cell.Hidden {
				continue
			}
			ref := NewCellRef(r, c)
			if strings.Contains(cell.Content, notationBegin) {
				issues = append(issues, checkExpressionSyntax(ref, cell.Content, notationBegin, notationEnd)...)
			}
			if cell.IsPlaceholder && strings.TrimSpace(cell.PlaceholderName) == "" {
				issues = append(issues, ValidationIssue{
					Severity: SeverityWarning,
					Cell:     ref,
					Message:  "placeholder has no field name",
				})
			}
		}
	}
	return issues
}

// checkExpressionSyntax extracts ${...} expressions from a string and compiles them for syntax checking.
func checkExpressionSyntax(ref CellRef, value, notationBegin, notationEnd string) []ValidationIssue {
	var issues []ValidationIssue
	for _, seg := range ParseExpressions(value, notationBegin, notationEnd) {
		if !seg.IsExpression {
			continue
		}
		if err := CompileCheck(seg.Text); err != nil {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Cell:     ref,
				Message:  fmt.Sprintf("invalid expression syntax %q: %v", seg.Text, err),
			})
		}
	}
	return issues
}

func (t *Table) validateMapping() []ValidationIssue {
	var issues []ValidationIssue
	for _, col := range t.binding.mappedColumns() {
		field := t.binding.ColumnMapping[col]
		ref := NewCellRef(t.style.startDataRow(), max(col, 0))
		if col < 0 || col >= t.grid.ColCount() {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Cell:     ref,
				Message:  fmt.Sprintf("column %d is mapped to %q but the grid has %d columns", col, field, t.grid.ColCount()),
			})
			continue
		}
		if exprStr, ok := ExtractSingleExpression(field, t.notationBegin, t.notationEnd); ok {
			if err := CompileCheck(exprStr); err != nil {
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					Cell:     ref,
					Message:  fmt.Sprintf("column %s mapping has invalid expression %q: %v", ColToName(col), exprStr, err),
				})
			}
		}
	}
	if len(t.binding.ColumnMapping) > 0 && t.binding.DataSourceID == "" {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Cell:     NewCellRef(0, 0),
			Message:  "columns are mapped but no data source is bound",
		})
	}
	return issues
}
