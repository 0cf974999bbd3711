package tablegrid

import "github.com/olekukonko/ll"

// options holds configuration for a Table.
type options struct {
	rows            int
	cols            int
	rowHeight       float64
	columnWidth     float64
	hasHeaderRow    bool
	alternateRows   bool
	visibleRowCount int
	notationBegin   string
	notationEnd     string
	evaluator       ExpressionEvaluator
	listeners       []TableListener
	debug           bool
	logger          *ll.Logger
}

func defaultOptions() *options {
	return &options{
		rows:            DefaultRows,
		cols:            DefaultCols,
		rowHeight:       DefaultRowHeight,
		columnWidth:     DefaultColumnWidth,
		visibleRowCount: DefaultVisibleRowCount,
		notationBegin:   "${",
		notationEnd:     "}",
	}
}

// Option configures a Table.
type Option func(*options)

// WithSize sets the initial number of rows and columns (default 3×3).
func WithSize(rows, cols int) Option {
	return func(o *options) {
		o.rows = rows
		o.cols = cols
	}
}

// WithDefaultRowHeight sets the height given to new rows (default 30).
func WithDefaultRowHeight(h float64) Option {
	return func(o *options) { o.rowHeight = h }
}

// WithDefaultColumnWidth sets the width given to new columns (default 100).
func WithDefaultColumnWidth(w float64) Option {
	return func(o *options) { o.columnWidth = w }
}

// WithHeaderRow treats row 0 as a header that data binding never overwrites.
func WithHeaderRow(enabled bool) Option {
	return func(o *options) { o.hasHeaderRow = enabled }
}

// WithAlternateRows shades every other data row.
func WithAlternateRows(enabled bool) Option {
	return func(o *options) { o.alternateRows = enabled }
}

// WithVisibleRowCount caps how many source rows are materialized (default 10).
func WithVisibleRowCount(n int) Option {
	return func(o *options) { o.visibleRowCount = n }
}

// WithNotation sets the expression delimiters (default: "${", "}").
func WithNotation(begin, end string) Option {
	return func(o *options) {
		o.notationBegin = begin
		o.notationEnd = end
	}
}

// WithEvaluator sets a custom expression evaluator for column mappings.
func WithEvaluator(ev ExpressionEvaluator) Option {
	return func(o *options) { o.evaluator = ev }
}

// WithListener adds a listener notified around every rebuild.
func WithListener(l TableListener) Option {
	return func(o *options) { o.listeners = append(o.listeners, l) }
}

// WithDebug enables the debug trace returned by Table.Trace.
func WithDebug(enabled bool) Option {
	return func(o *options) { o.debug = enabled }
}

// WithLogger replaces the internal trace logger.
func WithLogger(logger *ll.Logger) Option {
	return func(o *options) { o.logger = logger }
}
