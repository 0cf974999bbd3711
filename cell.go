package tablegrid

// BorderSide describes one edge of a cell border.
type BorderSide struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
	Style string  `json:"style"` // solid|dashed|dotted|double
}

// Border holds all four cell edges.
type Border struct {
	Top    BorderSide `json:"top"`
	Right  BorderSide `json:"right"`
	Bottom BorderSide `json:"bottom"`
	Left   BorderSide `json:"left"`
}

// Cell is one grid position. A merged region is represented by a head cell
// carrying RowSpan/ColSpan and hidden cells for every other position.
type Cell struct {
	Content         string  `json:"content"`
	IsPlaceholder   bool    `json:"isPlaceholder"`
	PlaceholderName string  `json:"placeholderName,omitempty"`
	BackgroundColor string  `json:"backgroundColor"`
	TextColor       string  `json:"textColor"`
	FontSize        float64 `json:"fontSize"`
	FontWeight      string  `json:"fontWeight"`
	TextAlign       string  `json:"textAlign"`     // left|center|right
	VerticalAlign   string  `json:"verticalAlign"` // top|middle|bottom
	Border          Border  `json:"border"`
	ColSpan         int     `json:"colSpan"`
	RowSpan         int     `json:"rowSpan"`
	Hidden          bool    `json:"hidden"`
}

const (
	DefaultBackgroundColor = "#ffffff"
	DefaultTextColor       = "#000000"
	DefaultBorderColor     = "#000000"
	DefaultFontSize        = 14
)

func defaultBorderSide() BorderSide {
	return BorderSide{Width: 1, Color: DefaultBorderColor, Style: "solid"}
}

// NewCell returns a cell with default content and style.
func NewCell() Cell {
	side := defaultBorderSide()
	return Cell{
		BackgroundColor: DefaultBackgroundColor,
		TextColor:       DefaultTextColor,
		FontSize:        DefaultFontSize,
		FontWeight:      "normal",
		TextAlign:       "left",
		VerticalAlign:   "middle",
		Border:          Border{Top: side, Right: side, Bottom: side, Left: side},
		ColSpan:         1,
		RowSpan:         1,
	}
}

// IsMergeHead reports whether the cell heads a merged region.
func (c Cell) IsMergeHead() bool {
	return !c.Hidden && (c.RowSpan > 1 || c.ColSpan > 1)
}

// spanRange returns the rectangle a cell at ref covers.
func (c Cell) spanRange(ref CellRef) Range {
	return Range{
		StartRow: ref.Row,
		StartCol: ref.Col,
		EndRow:   ref.Row + max(c.RowSpan, 1) - 1,
		EndCol:   ref.Col + max(c.ColSpan, 1) - 1,
	}
}
