package tablegrid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CleanTable(t *testing.T) {
	tbl := NewTable()
	tbl.MergeCells(0, 0, 1, 1)
	tbl.SetCellContent(2, 0, "Total: ${total}")
	tbl.BindDataSource("s", SliceSource{})
	tbl.BindColumn(1, "${price * 2}")

	issues := tbl.Validate()
	assert.Empty(t, issues)
	assert.False(t, HasErrors(issues))
}

func TestValidate_InvalidExpression(t *testing.T) {
	tbl := NewTable()
	tbl.SetCellContent(1, 1, "Total: ${price +}")

	issues := tbl.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, NewCellRef(1, 1), issues[0].Cell)
	assert.Contains(t, issues[0].Message, "invalid expression syntax")
	assert.True(t, HasErrors(issues))
}

func TestValidate_InvalidMappingExpression(t *testing.T) {
	tbl := NewTable()
	tbl.BindDataSource("s", SliceSource{})
	tbl.BindColumn(2, "${(a}")

	issues := tbl.Validate()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "column C mapping")
}

func TestValidate_MappingWithoutSource(t *testing.T) {
	tbl := NewTable()
	tbl.BindColumn(0, "name")
	tbl.BindColumn(2, "third")
	tbl.DeleteColumn(2)

	issues := tbl.Validate()
	require.Len(t, issues, 2)
	for _, is := range issues {
		assert.Equal(t, SeverityWarning, is.Severity)
	}
	assert.Contains(t, issues[0].Message, "grid has 2 columns")
	assert.Contains(t, issues[1].Message, "no data source")
}

func TestValidateMerges_Inconsistent(t *testing.T) {
	g := NewGrid(3, 3)
	g.cells[0][0].RowSpan = 2 // covers (1,0) which is still visible
	g.cells[2][2].Hidden = true

	issues := validateMerges(g)
	require.Len(t, issues, 2)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, NewCellRef(1, 0), issues[0].Cell)
	assert.Equal(t, SeverityWarning, issues[1].Severity)
	assert.Equal(t, NewCellRef(2, 2), issues[1].Cell)
}

func TestValidateMerges_Overlap(t *testing.T) {
	g := NewGrid(3, 3)
	g.MergeCells(0, 0, 1, 1)
	g.cells[0][1].Hidden = false
	g.cells[0][1].RowSpan = 2 // B2 is already covered by A1

	issues := validateMerges(g)
	var overlap bool
	for _, is := range issues {
		if is.Cell == NewCellRef(0, 1) && strings.Contains(is.Message, "overlaps the merge headed at A1 at B2") {
			overlap = true
		}
	}
	assert.True(t, overlap, "%v", issues)
}

func TestValidateMerges_BeyondGrid(t *testing.T) {
	g := NewGrid(2, 2)
	g.cells[1][1].ColSpan = 3

	issues := validateMerges(g)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "extends beyond")
}

func TestValidate_Sizes(t *testing.T) {
	g := NewGrid(2, 2)
	g.rowHeights[1] = 5
	issues := validateSizes(g)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "row 2 height")
}

func TestValidate_EmptyPlaceholder(t *testing.T) {
	g := NewGrid(1, 1)
	g.cells[0][0].IsPlaceholder = true
	issues := validateExpressions(g, "${", "}")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
}

func TestValidationIssue_String(t *testing.T) {
	e := ValidationIssue{Severity: SeverityError, Cell: NewCellRef(1, 0), Message: "bad"}
	assert.Equal(t, "[ERROR] A2: bad", e.String())
	w := ValidationIssue{Severity: SeverityWarning, Cell: NewCellRef(0, 2), Message: "hmm"}
	assert.Equal(t, "[WARN] C1: hmm", w.String())
}
