package tablegrid

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Unit conversions between grid pixels and Excel units.
const (
	pxPerWidthUnit = 8.3   // Excel column width unit → px
	pxPerPoint     = 1.333 // pt → px
)

// WriteXLSX exports the grid as a single-sheet workbook: sizes, contents,
// merges and the colours the layout would paint.
func (t *Table) WriteXLSX(w io.Writer, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	sheet = SafeSheetName(sheet)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet %q: %w", sheet, err)
	}
	xw := newXLSXWriter(f, t.style, t.newContext(nil))
	if err := xw.writeSheet(sheet, t.grid); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// FillOptions controls mail-merge export.
type FillOptions struct {
	RowQuery
	SheetPrefix string // sheet names are "<prefix> <n>", default "Page"
	MaxRows     int    // cap on source rows read, 0 = all
}

// fillPage is the slice of rows written to one sheet.
type fillPage struct {
	group any
	rows  []Row
}

// FillXLSX runs a mail merge: source rows are filtered, sorted and split into
// pages of VisibleRowCount (a new page also starts at every GroupBy change).
// Each page is bound into a copy of the grid and written as its own sheet.
// Cell text may use ${page}, ${pages}, ${total} and ${group}. The table itself
// is left unchanged.
func (t *Table) FillXLSX(ctx context.Context, w io.Writer, opts FillOptions) error {
	if !t.binding.Bound() {
		return ErrNoDataSource
	}
	rows, err := t.binding.source.Rows(ctx, opts.MaxRows)
	if err != nil {
		return fmt.Errorf("fetch rows from %q: %w", t.binding.DataSourceID, err)
	}
	rows, err = opts.shape(rows, t.evaluator)
	if err != nil {
		return err
	}
	if opts.SheetPrefix == "" {
		opts.SheetPrefix = "Page"
	}

	pageSize := max(t.binding.VisibleRowCount, 1)
	var pages []fillPage
	for _, grp := range opts.group(rows) {
		for start := 0; start < len(grp.rows); start += pageSize {
			pages = append(pages, fillPage{group: grp.key, rows: grp.rows[start:min(start+pageSize, len(grp.rows))]})
		}
	}
	if len(pages) == 0 {
		pages = []fillPage{{}}
	}
	t.logger.Debugf("FillXLSX %q: %d rows on %d pages", t.binding.DataSourceID, len(rows), len(pages))

	f := excelize.NewFile()
	defer f.Close()

	for p, page := range pages {
		sheet := SafeSheetName(fmt.Sprintf("%s %d", opts.SheetPrefix, p+1))
		if p == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet %q: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet, err)
		}

		g := t.grid.Clone()
		if len(page.rows) > 0 {
			if _, err := t.binding.syncRows(g, page.rows, t.style.startDataRow(), t.newContext); err != nil {
				return fmt.Errorf("bind page %d: %w", p+1, err)
			}
		}
		pageCtx := t.newContext(Row{"page": p + 1, "pages": len(pages), "total": len(rows), "group": page.group})
		if err := renderTemplates(g, pageCtx); err != nil {
			return fmt.Errorf("render page %d: %w", p+1, err)
		}

		xw := newXLSXWriter(f, t.style, pageCtx)
		if err := xw.writeSheet(sheet, g); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// renderTemplates evaluates embedded expressions in every visible cell.
func renderTemplates(g *Grid, ctx *Context) error {
	for r := range g.cells {
		for c := range g.cells[r] {
			cell := &g.cells[r][c]
			if cell.Hidden || !strings.Contains(cell.Content, ctx.notationBegin) {
				continue
			}
			text, err := ctx.RenderText(cell.Content)
			if err != nil {
				return fmt.Errorf("cell %s: %w", NewCellRef(r, c), err)
			}
			cell.Content = text
		}
	}
	return nil
}

// xlsxStyleKey identifies one distinct excelize style.
type xlsxStyleKey struct {
	background string
	textColor  string
	fontSize   float64
	fontWeight string
	textAlign  string
	vAlign     string
	border     Border
}

type xlsxWriter struct {
	file   *excelize.File
	style  Style
	ctx    *Context
	styles map[xlsxStyleKey]int
}

func newXLSXWriter(f *excelize.File, st Style, ctx *Context) *xlsxWriter {
	return &xlsxWriter{file: f, style: st, ctx: ctx, styles: make(map[xlsxStyleKey]int)}
}

func (xw *xlsxWriter) writeSheet(sheet string, g *Grid) error {
	for c, w := range g.columnWidths {
		name := ColToName(c)
		if err := xw.file.SetColWidth(sheet, name, name, w/pxPerWidthUnit); err != nil {
			return fmt.Errorf("set width of column %s: %w", name, err)
		}
	}
	for r, h := range g.rowHeights {
		if err := xw.file.SetRowHeight(sheet, r+1, h/pxPerPoint); err != nil {
			return fmt.Errorf("set height of row %d: %w", r+1, err)
		}
	}

	dimEnd := NewCellRef(g.RowCount()-1, g.ColCount()-1)
	if err := xw.file.SetSheetDimension(sheet, "A1:"+dimEnd.String()); err != nil {
		return fmt.Errorf("set dimension of %q: %w", sheet, err)
	}

	in := layoutInput{grid: g, style: xw.style}
	for r, row := range g.cells {
		for c, cell := range row {
			if cell.Hidden {
				continue
			}
			ref := NewCellRef(r, c)
			last := g.clipRange(cell.spanRange(ref))
			lastRef := NewCellRef(last.EndRow, last.EndCol)

			styleID, err := xw.styleFor(in.background(r, cell), r, cell)
			if err != nil {
				return fmt.Errorf("style cell %s: %w", ref, err)
			}
			if err := xw.file.SetCellStyle(sheet, ref.String(), lastRef.String(), styleID); err != nil {
				return fmt.Errorf("apply style to %s: %w", ref, err)
			}

			text := cell.Content
			if text == "" && cell.IsPlaceholder && cell.PlaceholderName != "" {
				text = xw.ctx.placeholderText(cell.PlaceholderName)
			}
			if text != "" {
				if err := xw.file.SetCellStr(sheet, ref.String(), text); err != nil {
					return fmt.Errorf("set value of %s: %w", ref, err)
				}
			}

			if lastRef != ref {
				if err := xw.file.MergeCell(sheet, ref.String(), lastRef.String()); err != nil {
					return fmt.Errorf("merge cells %s:%s: %w", ref, lastRef, err)
				}
			}
		}
	}
	return nil
}

func (xw *xlsxWriter) styleFor(background string, row int, cell Cell) (int, error) {
	key := xlsxStyleKey{
		background: background,
		textColor:  cell.TextColor,
		fontSize:   cell.FontSize,
		fontWeight: cell.FontWeight,
		textAlign:  cell.TextAlign,
		vAlign:     cell.VerticalAlign,
		border:     cell.Border,
	}
	if xw.style.HasHeaderRow && row == 0 && xw.style.HeaderFontWeight != "" {
		key.fontWeight = xw.style.HeaderFontWeight
	}
	if id, ok := xw.styles[key]; ok {
		return id, nil
	}

	st := &excelize.Style{
		Font: &excelize.Font{
			Bold:  key.fontWeight == "bold",
			Size:  key.fontSize / pxPerPoint,
			Color: key.textColor,
		},
		Alignment: &excelize.Alignment{
			Horizontal: key.textAlign,
			Vertical:   toExcelVertical(key.vAlign),
			WrapText:   true,
		},
	}
	if key.background != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{key.background}}
	}
	for _, e := range []struct {
		name string
		side BorderSide
	}{
		{"top", key.border.Top}, {"right", key.border.Right}, {"bottom", key.border.Bottom}, {"left", key.border.Left},
	} {
		if e.side.Width <= 0 {
			continue
		}
		st.Border = append(st.Border, excelize.Border{
			Type:  e.name,
			Color: e.side.Color,
			Style: toExcelBorderStyle(e.side),
		})
	}

	id, err := xw.file.NewStyle(st)
	if err != nil {
		return 0, err
	}
	xw.styles[key] = id
	return id, nil
}

// ReadXLSX imports a sheet as a table. An empty sheet name selects the first
// sheet. Cells whose whole text is "${name}" become placeholders.
func ReadXLSX(r io.Reader, sheet string, opts ...Option) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	values, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %q: %w", sheet, err)
	}
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read merges from sheet %q: %w", sheet, err)
	}

	rows, cols := len(values), 0
	for _, row := range values {
		cols = max(cols, len(row))
	}
	// GetRows drops trailing empty rows; the dimension keeps them.
	if dim, err := f.GetSheetDimension(sheet); err == nil && dim != "" {
		if rng, err := ParseRange(dim); err == nil {
			rng = rng.Normalize()
			rows, cols = max(rows, rng.EndRow+1), max(cols, rng.EndCol+1)
		}
	}
	var regions []Range
	for _, mc := range merges {
		rng, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return nil, fmt.Errorf("parse merge %q: %w", mc.GetStartAxis(), err)
		}
		rng = rng.Normalize()
		regions = append(regions, rng)
		rows, cols = max(rows, rng.EndRow+1), max(cols, rng.EndCol+1)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	g := newGridWithSizes(rows, cols, o.rowHeight, o.columnWidth)
	ctx := NewContext(nil, WithContextNotation(o.notationBegin, o.notationEnd))

	for c := range g.columnWidths {
		if w, err := f.GetColWidth(sheet, ColToName(c)); err == nil && w > 0 {
			g.columnWidths[c] = roundPx(w * pxPerWidthUnit)
		}
	}
	for r := range g.rowHeights {
		if h, err := f.GetRowHeight(sheet, r+1); err == nil && h > 0 {
			g.rowHeights[r] = roundPx(h * pxPerPoint)
		}
	}

	for r := 0; r < g.RowCount(); r++ {
		for c := 0; c < g.ColCount(); c++ {
			cell := &g.cells[r][c]
			if r < len(values) && c < len(values[r]) {
				cell.Content = values[r][c]
			}
			if name, ok := ExtractSingleExpression(cell.Content, ctx.notationBegin, ctx.notationEnd); ok {
				cell.Content = ""
				cell.IsPlaceholder = true
				cell.PlaceholderName = name
			}
			if id, err := f.GetCellStyle(sheet, NewCellRef(r, c).String()); err == nil && id > 0 {
				if st, err := f.GetStyle(id); err == nil {
					applyExcelStyle(cell, st)
				}
			}
		}
	}
	for _, rng := range regions {
		g.MergeCells(rng.StartRow, rng.StartCol, rng.EndRow, rng.EndCol)
	}

	return newTable(g, o), nil
}

// applyExcelStyle copies the supported parts of an excelize style onto a cell.
func applyExcelStyle(cell *Cell, st *excelize.Style) {
	if len(st.Fill.Color) > 0 && st.Fill.Color[0] != "" {
		cell.BackgroundColor = normalizeColor(st.Fill.Color[0])
	}
	if st.Font != nil {
		if st.Font.Color != "" {
			cell.TextColor = normalizeColor(st.Font.Color)
		}
		if st.Font.Size > 0 {
			cell.FontSize = roundPx(st.Font.Size * pxPerPoint)
		}
		if st.Font.Bold {
			cell.FontWeight = "bold"
		}
	}
	if st.Alignment != nil {
		if st.Alignment.Horizontal != "" {
			cell.TextAlign = st.Alignment.Horizontal
		}
		if st.Alignment.Vertical != "" {
			cell.VerticalAlign = fromExcelVertical(st.Alignment.Vertical)
		}
	}
	if len(st.Border) > 0 {
		cell.Border = Border{}
		for _, b := range st.Border {
			side := fromExcelBorder(b)
			switch b.Type {
			case "top":
				cell.Border.Top = side
			case "right":
				cell.Border.Right = side
			case "bottom":
				cell.Border.Bottom = side
			case "left":
				cell.Border.Left = side
			}
		}
	}
}

func toExcelVertical(v string) string {
	if v == "middle" {
		return "center"
	}
	return v
}

func fromExcelVertical(v string) string {
	if v == "center" {
		return "middle"
	}
	return v
}

// Excel border style codes.
const (
	excelBorderThin   = 1
	excelBorderMedium = 2
	excelBorderDashed = 3
	excelBorderDotted = 4
	excelBorderThick  = 5
	excelBorderDouble = 6
)

func toExcelBorderStyle(side BorderSide) int {
	switch side.Style {
	case "dashed":
		return excelBorderDashed
	case "dotted":
		return excelBorderDotted
	case "double":
		return excelBorderDouble
	}
	switch {
	case side.Width >= 3:
		return excelBorderThick
	case side.Width >= 2:
		return excelBorderMedium
	default:
		return excelBorderThin
	}
}

func fromExcelBorder(b excelize.Border) BorderSide {
	side := BorderSide{Width: 1, Color: DefaultBorderColor, Style: "solid"}
	if b.Color != "" {
		side.Color = normalizeColor(b.Color)
	}
	switch b.Style {
	case 0:
		side.Width = 0
	case excelBorderMedium:
		side.Width = 2
	case excelBorderThick:
		side.Width = 3
	case excelBorderDashed:
		side.Style = "dashed"
	case excelBorderDotted:
		side.Style = "dotted"
	case excelBorderDouble:
		side.Style = "double"
	}
	return side
}

// normalizeColor turns "FFRRGGBB", "RRGGBB" or "#RRGGBB" into "#rrggbb".
func normalizeColor(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 8 {
		hex = hex[2:]
	}
	return "#" + strings.ToLower(hex)
}

func roundPx(v float64) float64 {
	return math.Round(v*100) / 100
}

// SafeSheetName sanitizes a string for use as an Excel sheet name.
// It replaces forbidden characters ([]*?/\:) with underscore and truncates to 31 chars.
func SafeSheetName(name string) string {
	forbidden := []rune{'/', '\\', ':', '*', '?', '[', ']'}
	runes := []rune(name)
	for i, r := range runes {
		for _, f := range forbidden {
			if r == f {
				runes[i] = '_'
				break
			}
		}
	}
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
