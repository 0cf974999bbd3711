package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/javajack/tablegrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func resetFlags() {
	outputPath, sheetName, dataPath, dbPath, query, sourceID = "", "", "", "", "", ""
	maxRows = 0
	debug = false
	rowQuery = tablegrid.RowQuery{}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeLayout(t *testing.T, tbl *tablegrid.Table) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, tbl.WriteJSON(f))
	return path
}

func labelLayout() *tablegrid.Table {
	tbl := tablegrid.NewTable(tablegrid.WithSize(2, 2), tablegrid.WithHeaderRow(true), tablegrid.WithVisibleRowCount(2))
	tbl.SetCellContent(0, 0, "Name")
	tbl.SetCellContent(0, 1, "Page ${page}")
	tbl.BindColumn(0, "name")
	tbl.BindColumn(1, "qty")
	return tbl
}

func TestDescribeCommand(t *testing.T) {
	layout := writeLayout(t, labelLayout())
	out, err := run(t, "describe", layout)
	require.NoError(t, err)
	assert.Contains(t, out, "layout.json")
	assert.Contains(t, out, "Table 2x2")
}

func TestValidateCommand(t *testing.T) {
	tbl := labelLayout()
	tbl.BindDataSource("data", tablegrid.SliceSource{})
	out, err := run(t, "validate", writeLayout(t, tbl))
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	tbl.SetCellContent(1, 0, "${a +}")
	out, err = run(t, "validate", writeLayout(t, tbl))
	assert.Error(t, err)
	assert.Contains(t, out, "[ERROR] A2")
}

func TestConvertCommand_RoundTrip(t *testing.T) {
	layout := writeLayout(t, labelLayout())
	xlsx := filepath.Join(t.TempDir(), "layout.xlsx")

	_, err := run(t, "convert", layout, "-o", xlsx, "--sheet", "Label")
	require.NoError(t, err)

	back := filepath.Join(t.TempDir(), "back.json")
	_, err = run(t, "convert", xlsx, "-o", back)
	require.NoError(t, err)

	tbl, err := loadTable(back)
	require.NoError(t, err)
	cell, _ := tbl.Cell(0, 0)
	assert.Equal(t, "Name", cell.Content)
}

func TestConvertCommand_UnsupportedFormat(t *testing.T) {
	layout := writeLayout(t, labelLayout())
	_, err := run(t, "convert", layout, "-o", filepath.Join(t.TempDir(), "out.csv"))
	assert.Error(t, err)
}

func TestFillCommand_JSONData(t *testing.T) {
	dir := t.TempDir()
	layout := writeLayout(t, labelLayout())
	data := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(data, []byte(`[
		{"name": "a", "qty": 1},
		{"name": "b", "qty": 2},
		{"name": "c", "qty": 3}
	]`), 0644))
	out := filepath.Join(dir, "filled.xlsx")

	stdout, err := run(t, "fill", layout, "--data", data, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "filled.xlsx")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Page 1", "Page 2"}, f.GetSheetList())
	v, _ := f.GetCellValue("Page 2", "A2")
	assert.Equal(t, "c", v)
	v, _ = f.GetCellValue("Page 2", "B1")
	assert.Equal(t, "Page 2", v)
}

func TestFillCommand_NeedsData(t *testing.T) {
	layout := writeLayout(t, labelLayout())
	_, err := run(t, "fill", layout, "-o", filepath.Join(t.TempDir(), "x.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--data or --db")
}

func TestFillCommand_DBNeedsQuery(t *testing.T) {
	layout := writeLayout(t, labelLayout())
	_, err := run(t, "fill", layout, "--db", filepath.Join(t.TempDir(), "x.db"), "-o", filepath.Join(t.TempDir(), "x.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--query")
}

func TestFillCommand_SelectAndGroup(t *testing.T) {
	dir := t.TempDir()
	layout := writeLayout(t, labelLayout())
	data := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(data, []byte(`[
		{"name": "a", "qty": 1},
		{"name": "b", "qty": 0},
		{"name": "c", "qty": 1}
	]`), 0644))
	out := filepath.Join(dir, "filled.xlsx")

	_, err := run(t, "fill", layout, "--data", data, "-o", out,
		"--select", "qty > 0", "--order-by", "name DESC", "--group-by", "qty")
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Page 1"}, f.GetSheetList())
	v, _ := f.GetCellValue("Page 1", "A2")
	assert.Equal(t, "c", v)
	v, _ = f.GetCellValue("Page 1", "A3")
	assert.Equal(t, "a", v)
}
