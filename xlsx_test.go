package tablegrid

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX_CellsAndMerges(t *testing.T) {
	tbl := NewTable(WithSize(3, 3))
	tbl.SetCellContent(0, 0, "Title")
	tbl.SetCellContent(2, 1, "x")
	tbl.SetPlaceholder(1, 0, "name")
	tbl.MergeCells(0, 0, 0, 2)

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteXLSX(&buf, "Label"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Label"}, f.GetSheetList())
	v, _ := f.GetCellValue("Label", "A1")
	assert.Equal(t, "Title", v)
	v, _ = f.GetCellValue("Label", "B3")
	assert.Equal(t, "x", v)
	v, _ = f.GetCellValue("Label", "A2")
	assert.Equal(t, "${name}", v)

	merges, err := f.GetMergeCells("Label")
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "A1", merges[0].GetStartAxis())
	assert.Equal(t, "C1", merges[0].GetEndAxis())
}

func TestXLSX_RoundTrip(t *testing.T) {
	tbl := NewTable(WithSize(4, 3))
	tbl.SetCellContent(0, 0, "Name")
	tbl.SetCellContent(1, 2, "note")
	tbl.SetPlaceholder(1, 0, "name")
	tbl.ResizeColumn(0, 160)
	tbl.ResizeRow(1, 45)
	tbl.MergeCells(2, 0, 3, 1)
	tbl.UpdateCell(0, 0, func(c *Cell) {
		c.BackgroundColor = "#ffeecc"
		c.FontWeight = "bold"
		c.TextAlign = "center"
		c.VerticalAlign = "top"
	})

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteXLSX(&buf, ""))

	got, err := ReadXLSX(&buf, "")
	require.NoError(t, err)

	assert.Equal(t, 4, got.RowCount(), "trailing empty rows are kept")
	assert.Equal(t, 3, got.ColCount())
	assert.InDelta(t, 160, got.Grid().ColumnWidths()[0], 0.01)
	assert.InDelta(t, 45, got.Grid().RowHeights()[1], 0.01)
	assert.Equal(t, []Range{{StartRow: 2, StartCol: 0, EndRow: 3, EndCol: 1}}, got.Grid().MergedRanges())

	head, _ := got.Cell(0, 0)
	assert.Equal(t, "Name", head.Content)
	assert.Equal(t, "#ffeecc", head.BackgroundColor)
	assert.Equal(t, "bold", head.FontWeight)
	assert.Equal(t, "center", head.TextAlign)
	assert.Equal(t, "top", head.VerticalAlign)
	assert.InDelta(t, DefaultFontSize, head.FontSize, 0.01)

	ph, _ := got.Cell(1, 0)
	assert.True(t, ph.IsPlaceholder)
	assert.Equal(t, "name", ph.PlaceholderName)
	assert.Equal(t, "", ph.Content)

	note, _ := got.Cell(1, 2)
	assert.Equal(t, "note", note.Content)
	assert.Equal(t, "middle", note.VerticalAlign)
}

func TestReadXLSX_UnknownSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTable().WriteXLSX(&buf, "Only"))
	_, err := ReadXLSX(&buf, "Missing")
	assert.Error(t, err)
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ReadXLSX(bytes.NewReader([]byte("plain text")), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}

func TestFillXLSX_Pages(t *testing.T) {
	tbl := NewTable(WithSize(2, 2), WithHeaderRow(true), WithVisibleRowCount(2))
	tbl.SetCellContent(0, 0, "Page ${page} of ${pages}")
	tbl.SetCellContent(0, 1, "Qty")
	tbl.BindDataSource("items", SliceSource{
		{"name": "a", "qty": 1},
		{"name": "b", "qty": 2},
		{"name": "c", "qty": 3},
		{"name": "d", "qty": 4},
		{"name": "e", "qty": 5},
	})
	tbl.BindColumn(0, "name")
	tbl.BindColumn(1, "qty")
	before := tbl.Snapshot()

	var buf bytes.Buffer
	require.NoError(t, tbl.FillXLSX(context.Background(), &buf, FillOptions{}))
	assert.Equal(t, before, tbl.Snapshot(), "table is unchanged")

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Page 1", "Page 2", "Page 3"}, f.GetSheetList())
	v, _ := f.GetCellValue("Page 2", "A1")
	assert.Equal(t, "Page 2 of 3", v)
	v, _ = f.GetCellValue("Page 2", "A3")
	assert.Equal(t, "d", v)
	v, _ = f.GetCellValue("Page 3", "B2")
	assert.Equal(t, "5", v)
	v, _ = f.GetCellValue("Page 3", "A3")
	assert.Equal(t, "", v)
}

func TestFillXLSX_Unbound(t *testing.T) {
	var buf bytes.Buffer
	err := NewTable().FillXLSX(context.Background(), &buf, FillOptions{})
	assert.ErrorIs(t, err, ErrNoDataSource)
}

func TestFillXLSX_MaxRows(t *testing.T) {
	tbl := NewTable(WithSize(1, 1), WithVisibleRowCount(1))
	tbl.BindDataSource("s", SliceSource{{"v": 1}, {"v": 2}, {"v": 3}})
	tbl.BindColumn(0, "v")

	var buf bytes.Buffer
	require.NoError(t, tbl.FillXLSX(context.Background(), &buf, FillOptions{SheetPrefix: "Label", MaxRows: 2}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Label 1", "Label 2"}, f.GetSheetList())
}

func TestFillXLSX_GroupBy(t *testing.T) {
	tbl := NewTable(WithSize(2, 1), WithHeaderRow(true), WithVisibleRowCount(5))
	tbl.SetCellContent(0, 0, "Dept ${group}")
	tbl.BindDataSource("staff", SliceSource{
		{"name": "ann", "dept": "ops", "active": true},
		{"name": "bob", "dept": "dev", "active": true},
		{"name": "cy", "dept": "ops", "active": false},
		{"name": "dee", "dept": "ops", "active": true},
	})
	tbl.BindColumn(0, "name")

	var buf bytes.Buffer
	opts := FillOptions{RowQuery: RowQuery{Select: "active", OrderBy: "name DESC", GroupBy: "dept"}}
	require.NoError(t, tbl.FillXLSX(context.Background(), &buf, opts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Page 1", "Page 2"}, f.GetSheetList())
	v, _ := f.GetCellValue("Page 1", "A1")
	assert.Equal(t, "Dept ops", v)
	v, _ = f.GetCellValue("Page 1", "A2")
	assert.Equal(t, "dee", v)
	v, _ = f.GetCellValue("Page 1", "A3")
	assert.Equal(t, "ann", v)
	v, _ = f.GetCellValue("Page 2", "A1")
	assert.Equal(t, "Dept dev", v)
}

func TestFillXLSX_BadSelect(t *testing.T) {
	tbl := NewTable(WithSize(1, 1))
	tbl.BindDataSource("s", SliceSource{{"v": 1}})
	tbl.BindColumn(0, "v")

	var buf bytes.Buffer
	err := tbl.FillXLSX(context.Background(), &buf, FillOptions{RowQuery: RowQuery{Select: "v"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select filter")
}

func TestSafeSheetName(t *testing.T) {
	assert.Equal(t, "a_b_c", SafeSheetName("a/b:c"))
	assert.Len(t, []rune(SafeSheetName("this sheet name is definitely too long")), 31)
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "#aabbcc", normalizeColor("FFAABBCC"))
	assert.Equal(t, "#aabbcc", normalizeColor("#AABBCC"))
	assert.Equal(t, "#aabbcc", normalizeColor("aabbcc"))
}
