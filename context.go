package tablegrid

import (
	"fmt"
	"strings"
)

// Context resolves field names and expressions against one data record.
type Context struct {
	data          map[string]any
	evaluator     ExpressionEvaluator
	notationBegin string
	notationEnd   string
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithContextNotation sets custom expression delimiters.
func WithContextNotation(begin, end string) ContextOption {
	return func(c *Context) {
		c.notationBegin = begin
		c.notationEnd = end
	}
}

// WithContextEvaluator sets a custom expression evaluator.
func WithContextEvaluator(ev ExpressionEvaluator) ContextOption {
	return func(c *Context) {
		c.evaluator = ev
	}
}

// NewContext creates a Context over data.
func NewContext(data map[string]any, opts ...ContextOption) *Context {
	if data == nil {
		data = make(map[string]any)
	}
	c := &Context{
		data:          data,
		evaluator:     NewExpressionEvaluator(),
		notationBegin: "${",
		notationEnd:   "}",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetVar returns a raw value from the record.
func (c *Context) GetVar(name string) any {
	return c.data[name]
}

// PutVar sets a value in the record.
func (c *Context) PutVar(name string, value any) {
	c.data[name] = value
}

// Resolve returns the value a column mapping refers to. A mapping of the form
// "${expr}" is evaluated; anything else is a plain field lookup. The boolean is
// false when the record has no value for it.
func (c *Context) Resolve(field string) (any, bool, error) {
	if exprStr, ok := ExtractSingleExpression(field, c.notationBegin, c.notationEnd); ok {
		v, err := c.evaluator.Evaluate(exprStr, c.data)
		if err != nil {
			return nil, false, err
		}
		return v, v != nil, nil
	}
	v, ok := c.data[field]
	if !ok || v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// RenderText substitutes every expression embedded in text.
// "Page ${page} of ${pages}" → "Page 1 of 3"
func (c *Context) RenderText(text string) (string, error) {
	segments := ParseExpressions(text, c.notationBegin, c.notationEnd)
	var b strings.Builder
	for _, seg := range segments {
		if !seg.IsExpression {
			b.WriteString(seg.Text)
			continue
		}
		val, err := c.evaluator.Evaluate(seg.Text, c.data)
		if err != nil {
			return "", fmt.Errorf("evaluate expression %q in %q: %w", seg.Text, text, err)
		}
		if val != nil {
			fmt.Fprintf(&b, "%v", val)
		}
	}
	return b.String(), nil
}

// placeholderText formats a field name the way unfilled placeholders display.
func (c *Context) placeholderText(name string) string {
	return c.notationBegin + name + c.notationEnd
}
