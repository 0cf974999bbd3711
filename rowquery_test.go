package tablegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(rows []Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["name"]
	}
	return out
}

// --- Select / OrderBy ---

func TestRowQuery_Select(t *testing.T) {
	rows := []Row{
		{"name": "a", "qty": 1},
		{"name": "b", "qty": 0},
		{"name": "c", "qty": 5},
	}
	out, err := RowQuery{Select: "qty > 0"}.shape(rows, NewExpressionEvaluator())
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "c"}, names(out))
	assert.Len(t, rows, 3)
}

func TestRowQuery_SelectNotBool(t *testing.T) {
	_, err := RowQuery{Select: "qty + 1"}.shape([]Row{{"qty": 1}}, NewExpressionEvaluator())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not bool")
}

func TestRowQuery_OrderBy(t *testing.T) {
	rows := []Row{
		{"name": "b", "qty": 2},
		{"name": "a", "qty": 10},
		{"name": "c", "qty": 2},
	}
	ev := NewExpressionEvaluator()

	out, err := RowQuery{OrderBy: "qty"}.shape(rows, ev)
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "c", "a"}, names(out), "numeric and stable")

	out, err = RowQuery{OrderBy: "qty DESC, name desc"}.shape(rows, ev)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "c", "b"}, names(out))
}

func TestRowQuery_OrderByNilFirst(t *testing.T) {
	rows := []Row{{"name": "x", "qty": 1}, {"name": "y"}}
	out, err := RowQuery{OrderBy: "qty ASC"}.shape(rows, NewExpressionEvaluator())
	require.NoError(t, err)
	assert.Equal(t, []any{"y", "x"}, names(out))
}

func TestParseOrderBy(t *testing.T) {
	assert.Equal(t, []orderBySpec{{field: "a"}, {field: "b", desc: true}}, parseOrderBy("a, b DESC,"))
	assert.Empty(t, parseOrderBy(""))
}

// --- GroupBy ---

func TestRowQuery_Group(t *testing.T) {
	rows := []Row{
		{"name": "a", "dept": "x"},
		{"name": "b", "dept": "y"},
		{"name": "c", "dept": "x"},
	}
	groups := RowQuery{GroupBy: "dept"}.group(rows)
	require.Len(t, groups, 2)
	assert.Equal(t, "x", groups[0].key)
	assert.Equal(t, []any{"a", "c"}, names(groups[0].rows))
	assert.Equal(t, "y", groups[1].key)
	assert.Equal(t, []any{"b"}, names(groups[1].rows))
}

func TestRowQuery_GroupWithoutField(t *testing.T) {
	rows := []Row{{"name": "a"}, {"name": "b"}}
	groups := RowQuery{}.group(rows)
	require.Len(t, groups, 1)
	assert.Nil(t, groups[0].key)
	assert.Len(t, groups[0].rows, 2)

	assert.Nil(t, RowQuery{GroupBy: "dept"}.group(nil))
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, -1, compareValues(2, 10.5))
	assert.Equal(t, 1, compareValues("b", "a"))
	assert.Equal(t, 0, compareValues(nil, nil))
	assert.Equal(t, 1, compareValues(int64(3), nil))
}
