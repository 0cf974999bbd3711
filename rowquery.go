package tablegrid

import (
	"fmt"
	"sort"
	"strings"
)

// RowQuery shapes source rows before a mail merge.
type RowQuery struct {
	Select  string // boolean expression evaluated per row, e.g. "qty > 0"
	OrderBy string // "name ASC, qty DESC"
	GroupBy string // field; rows sharing a value are paged together
}

// rowGroup is a run of rows sharing a GroupBy value, in first-seen order.
type rowGroup struct {
	key  any
	rows []Row
}

// shape filters and sorts rows. The input slice is not modified.
func (q RowQuery) shape(rows []Row, ev ExpressionEvaluator) ([]Row, error) {
	out := make([]Row, 0, len(rows))
	for i, row := range rows {
		if q.Select == "" {
			out = append(out, row)
			continue
		}
		ok, err := isConditionTrue(ev, q.Select, row)
		if err != nil {
			return nil, fmt.Errorf("select filter %q on row %d: %w", q.Select, i, err)
		}
		if ok {
			out = append(out, row)
		}
	}
	if specs := parseOrderBy(q.OrderBy); len(specs) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return compareBySpecs(out[i], out[j], specs) < 0
		})
	}
	return out, nil
}

// group splits rows by the GroupBy field. Without GroupBy every row lands in
// one group.
func (q RowQuery) group(rows []Row) []rowGroup {
	if len(rows) == 0 {
		return nil
	}
	if q.GroupBy == "" {
		return []rowGroup{{rows: rows}}
	}
	var groups []rowGroup
	keyIndex := map[string]int{} // string representation → index
	for _, row := range rows {
		val := row[q.GroupBy]
		keyStr := fmt.Sprintf("%v", val)
		if idx, ok := keyIndex[keyStr]; ok {
			groups[idx].rows = append(groups[idx].rows, row)
			continue
		}
		keyIndex[keyStr] = len(groups)
		groups = append(groups, rowGroup{key: val, rows: []Row{row}})
	}
	return groups
}

func isConditionTrue(ev ExpressionEvaluator, condition string, row Row) (bool, error) {
	v, err := ev.Evaluate(condition, row)
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("condition result is %T, not bool", v)
	}
}

// orderBySpec represents a single sort field with direction.
type orderBySpec struct {
	field string
	desc  bool
}

// parseOrderBy parses an orderBy string like "name ASC, qty DESC".
func parseOrderBy(spec string) []orderBySpec {
	var specs []orderBySpec
	for _, p := range strings.Split(spec, ",") {
		tokens := strings.Fields(p)
		if len(tokens) == 0 {
			continue
		}
		desc := len(tokens) > 1 && strings.EqualFold(tokens[1], "DESC")
		specs = append(specs, orderBySpec{field: tokens[0], desc: desc})
	}
	return specs
}

func compareBySpecs(a, b Row, specs []orderBySpec) int {
	for _, s := range specs {
		cmp := compareValues(a[s.field], b[s.field])
		if s.desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

// compareValues orders nil first, numbers numerically and everything else by
// its string form.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	fa, aOk := toFloat64(a)
	fb, bOk := toFloat64(b)
	if aOk && bOk {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
