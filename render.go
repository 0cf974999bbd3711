package tablegrid

// Style holds table-wide presentation settings.
type Style struct {
	HasHeaderRow        bool    `json:"hasHeaderRow"`
	HeaderBackground    string  `json:"headerBackground"`
	HeaderTextColor     string  `json:"headerTextColor"`
	HeaderFontWeight    string  `json:"headerFontWeight"`
	AlternateRows       bool    `json:"alternateRows"`
	AlternateBackground string  `json:"alternateBackground"`
	BoundBorderColor    string  `json:"boundBorderColor"`
	BoundBorderWidth    float64 `json:"boundBorderWidth"`
}

// DefaultStyle returns the default table style.
func DefaultStyle() Style {
	return Style{
		HeaderBackground:    "#f0f0f0",
		HeaderTextColor:     DefaultTextColor,
		HeaderFontWeight:    "bold",
		AlternateBackground: "#f9f9f9",
		BoundBorderColor:    "#2196f3",
		BoundBorderWidth:    2,
	}
}

// startDataRow is the first grid row data binding writes to.
func (s Style) startDataRow() int {
	if s.HasHeaderRow {
		return 1
	}
	return 0
}

// PrimitiveKind identifies what a Primitive paints.
type PrimitiveKind int

const (
	PrimitiveBackground PrimitiveKind = iota
	PrimitiveBorder
	PrimitiveText
)

// String returns a human-readable name for the kind.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveBackground:
		return "Background"
	case PrimitiveBorder:
		return "Border"
	case PrimitiveText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Primitive is one paint instruction for the rendering host.
// Backgrounds and text boxes use Bounds; border lines use X1/Y1/X2/Y2.
type Primitive struct {
	Kind   PrimitiveKind
	Cell   CellRef
	Bounds Bounds

	X1, Y1, X2, Y2 float64
	Edge           string // top|right|bottom|left
	Width          float64
	LineStyle      string

	Color         string // fill, stroke or text colour
	Text          string
	FontSize      float64
	FontWeight    string
	TextAlign     string
	VerticalAlign string
}

type layoutInput struct {
	grid    *Grid
	sel     *Selection
	binding *Binding
	style   Style
	ctx     *Context
}

type visibleCell struct {
	ref    CellRef
	cell   Cell
	bounds Bounds
}

// buildPrimitives lays out the grid: all backgrounds, then borders, then text.
func buildPrimitives(in layoutInput) []Primitive {
	var cells []visibleCell
	for r := 0; r < in.grid.RowCount(); r++ {
		for c := 0; c < in.grid.ColCount(); c++ {
			cell := in.grid.cells[r][c]
			if cell.Hidden {
				continue
			}
			b, _ := in.grid.CellBounds(r, c)
			cells = append(cells, visibleCell{ref: NewCellRef(r, c), cell: cell, bounds: b})
		}
	}

	out := make([]Primitive, 0, len(cells)*6)
	for _, vc := range cells {
		out = append(out, Primitive{
			Kind:   PrimitiveBackground,
			Cell:   vc.ref,
			Bounds: vc.bounds,
			Color:  in.background(vc.ref.Row, vc.cell),
		})
	}
	for _, vc := range cells {
		out = append(out, in.borders(vc)...)
	}
	for _, vc := range cells {
		if in.sel.IsEditing(vc.ref) {
			continue
		}
		text := vc.cell.Content
		if text == "" && vc.cell.IsPlaceholder && vc.cell.PlaceholderName != "" {
			text = in.ctx.placeholderText(vc.cell.PlaceholderName)
		}
		if text == "" {
			continue
		}
		p := Primitive{
			Kind:          PrimitiveText,
			Cell:          vc.ref,
			Bounds:        vc.bounds,
			Color:         vc.cell.TextColor,
			Text:          text,
			FontSize:      vc.cell.FontSize,
			FontWeight:    vc.cell.FontWeight,
			TextAlign:     vc.cell.TextAlign,
			VerticalAlign: vc.cell.VerticalAlign,
		}
		if in.style.HasHeaderRow && vc.ref.Row == 0 {
			if in.style.HeaderTextColor != "" {
				p.Color = in.style.HeaderTextColor
			}
			if in.style.HeaderFontWeight != "" {
				p.FontWeight = in.style.HeaderFontWeight
			}
		}
		out = append(out, p)
	}
	return out
}

// background picks the fill: header row, then alternate row, then the cell's own colour.
func (in layoutInput) background(row int, cell Cell) string {
	if in.style.HasHeaderRow && row == 0 {
		return in.style.HeaderBackground
	}
	if in.style.AlternateRows && (row-in.style.startDataRow())%2 == 1 {
		return in.style.AlternateBackground
	}
	return cell.BackgroundColor
}

func (in layoutInput) borders(vc visibleCell) []Primitive {
	b := vc.bounds
	top := vc.cell.Border.Top
	if in.binding.IsColumnBound(vc.ref.Col) {
		top.Color = in.style.BoundBorderColor
		top.Width = max(top.Width, in.style.BoundBorderWidth)
	}
	edges := []struct {
		name           string
		side           BorderSide
		x1, y1, x2, y2 float64
	}{
		{"top", top, b.Left, b.Top, b.Right(), b.Top},
		{"right", vc.cell.Border.Right, b.Right(), b.Top, b.Right(), b.Bottom()},
		{"bottom", vc.cell.Border.Bottom, b.Left, b.Bottom(), b.Right(), b.Bottom()},
		{"left", vc.cell.Border.Left, b.Left, b.Top, b.Left, b.Bottom()},
	}
	out := make([]Primitive, 0, len(edges))
	for _, e := range edges {
		if e.side.Width <= 0 {
			continue
		}
		out = append(out, Primitive{
			Kind:      PrimitiveBorder,
			Cell:      vc.ref,
			X1:        e.x1,
			Y1:        e.y1,
			X2:        e.x2,
			Y2:        e.y2,
			Edge:      e.name,
			Width:     e.side.Width,
			LineStyle: e.side.Style,
			Color:     e.side.Color,
		})
	}
	return out
}
