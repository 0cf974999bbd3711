package tablegrid

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	tbl := NewTable(WithSize(3, 4), WithHeaderRow(true), WithVisibleRowCount(7))
	tbl.SetCellContent(0, 0, "Name")
	tbl.SetCellContent(0, 1, "Qty")
	tbl.SetPlaceholder(1, 0, "name")
	tbl.ResizeColumn(0, 160)
	tbl.ResizeRow(2, 48)
	tbl.MergeCells(0, 2, 0, 3)
	tbl.UpdateCell(1, 1, func(c *Cell) {
		c.TextAlign = "right"
		c.BackgroundColor = "#ffeecc"
	})
	tbl.BindColumn(0, "name")
	tbl.BindColumn(1, "${qty * 2}")
	tbl.BindDataSource("orders", SliceSource{{"name": "a", "qty": 1}})
	return tbl
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	tbl := sampleTable()

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"dataSourceId": "orders"`)

	restored, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, tbl.Snapshot(), restored.Snapshot())
	assert.Equal(t, tbl.Primitives(), restored.Primitives())
	assert.Equal(t, tbl.BoundingBox(), restored.BoundingBox())
}

func TestSnapshot_KeepsDefaultSizes(t *testing.T) {
	tbl := NewTable(WithSize(1, 1), WithDefaultRowHeight(50), WithDefaultColumnWidth(70))

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"defaultRowHeight": 50`)

	restored, err := ReadJSON(&buf)
	require.NoError(t, err)
	restored.AddRow(-1)
	restored.AddColumn(-1)
	assert.Equal(t, []float64{50, 50}, restored.Grid().RowHeights())
	assert.Equal(t, []float64{70, 70}, restored.Grid().ColumnWidths())
}

func TestSnapshot_SourceNotPersisted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTable().WriteJSON(&buf))
	restored, err := ReadJSON(&buf)
	require.NoError(t, err)

	require.NoError(t, restored.RefreshData(context.Background()))
	assert.Equal(t, 3, restored.RowCount(), "no provider attached yet")

	restored.AttachSource(SliceSource{{"name": "x", "qty": 5}})
	require.NoError(t, restored.RefreshData(context.Background()))
	assert.Equal(t, 2, restored.RowCount())
	cell, _ := restored.Cell(1, 1)
	assert.Equal(t, "10", cell.Content)
}

func TestSnapshot_IsACopy(t *testing.T) {
	tbl := sampleTable()
	s := tbl.Snapshot()
	s.Cells[0][0].Content = "changed"
	s.RowHeights[0] = 999

	cell, _ := tbl.Cell(0, 0)
	assert.Equal(t, "Name", cell.Content)
	assert.Equal(t, DefaultRowHeight, tbl.Grid().RowHeights()[0])
}

func TestSnapshot_Validate(t *testing.T) {
	good := sampleTable().Snapshot()
	require.NoError(t, good.Validate())

	cases := map[string]func(s *Snapshot){
		"empty":     func(s *Snapshot) { s.RowCount = 0 },
		"heights":   func(s *Snapshot) { s.RowHeights = s.RowHeights[:1] },
		"widths":    func(s *Snapshot) { s.ColumnWidths = append(s.ColumnWidths, 10) },
		"cell rows": func(s *Snapshot) { s.Cells = s.Cells[:2] },
		"ragged":    func(s *Snapshot) { s.Cells[1] = s.Cells[1][:2] },
		"zero span": func(s *Snapshot) { s.Cells[2][2].RowSpan = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := sampleTable().Snapshot()
			mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSnapshot)
			_, err := NewTableFromSnapshot(s)
			assert.Error(t, err)
		})
	}
}

func TestReadJSON_Malformed(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode snapshot")
}
