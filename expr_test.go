package tablegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Evaluator ---

func TestEvaluate_Arithmetic(t *testing.T) {
	ev := NewExpressionEvaluator()
	v, err := ev.Evaluate("price * qty", map[string]any{"price": 3, "qty": 4})
	require.NoError(t, err)
	assert.Equal(t, 12, v)
}

func TestEvaluate_CachedProgramReused(t *testing.T) {
	ev := NewExpressionEvaluator()
	for i := 1; i <= 3; i++ {
		v, err := ev.Evaluate("n + 1", map[string]any{"n": i})
		require.NoError(t, err)
		assert.Equal(t, i+1, v)
	}
}

func TestEvaluate_Empty(t *testing.T) {
	v, err := NewExpressionEvaluator().Evaluate("", nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEvaluate_SyntaxError(t *testing.T) {
	_, err := NewExpressionEvaluator().Evaluate("a +", map[string]any{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile expression")
}

func TestCompileCheck(t *testing.T) {
	assert.NoError(t, CompileCheck("undefinedVar + 1"))
	assert.Error(t, CompileCheck("(a"))
}

// --- Expression parsing ---

func TestParseExpressions(t *testing.T) {
	segs := ParseExpressions("Dear ${name}!", "${", "}")
	assert.Equal(t, []ExpressionSegment{
		{Text: "Dear "},
		{IsExpression: true, Text: "name"},
		{Text: "!"},
	}, segs)
}

func TestParseExpressions_Unclosed(t *testing.T) {
	segs := ParseExpressions("a ${b", "${", "}")
	assert.Equal(t, []ExpressionSegment{{Text: "a ${b"}}, segs)
}

func TestExtractSingleExpression(t *testing.T) {
	inner, ok := ExtractSingleExpression(" ${price * qty} ", "${", "}")
	require.True(t, ok)
	assert.Equal(t, "price * qty", inner)

	_, ok = ExtractSingleExpression("${a} and ${b}", "${", "}")
	assert.False(t, ok)
	_, ok = ExtractSingleExpression("name", "${", "}")
	assert.False(t, ok)
}

// --- Context ---

func TestContext_Resolve(t *testing.T) {
	ctx := NewContext(map[string]any{"name": "Ann", "missing": nil, "n": 2})

	v, ok, err := ctx.Resolve("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Ann", v)

	_, ok, _ = ctx.Resolve("missing")
	assert.False(t, ok)
	_, ok, _ = ctx.Resolve("absent")
	assert.False(t, ok)

	v, ok, err = ctx.Resolve("${n * 5}")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok, err = ctx.Resolve("${absent}")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContext_RenderText(t *testing.T) {
	ctx := NewContext(nil)
	ctx.PutVar("page", 2)
	ctx.PutVar("pages", 5)
	assert.Equal(t, 2, ctx.GetVar("page"))

	out, err := ctx.RenderText("Page ${page} of ${pages}")
	require.NoError(t, err)
	assert.Equal(t, "Page 2 of 5", out)
}

func TestContext_CustomNotation(t *testing.T) {
	ctx := NewContext(map[string]any{"x": 1}, WithContextNotation("{{", "}}"))
	out, err := ctx.RenderText("x={{x + 1}}")
	require.NoError(t, err)
	assert.Equal(t, "x=2", out)
	assert.Equal(t, "{{x}}", ctx.placeholderText("x"))
}

type constEvaluator struct{ v any }

func (c constEvaluator) Evaluate(string, map[string]any) (any, error) { return c.v, nil }

func TestContext_CustomEvaluator(t *testing.T) {
	ctx := NewContext(nil, WithContextEvaluator(constEvaluator{v: "fixed"}))
	v, ok, err := ctx.Resolve("${anything}")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fixed", v)
}
