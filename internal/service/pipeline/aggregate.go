package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

type AggOp string

const (
	AggSum  AggOp = "sum"
	AggMean AggOp = "mean"
	AggMax  AggOp = "max"
)

// GroupRow is one group of an aggregation: the native key values plus the
// reduced metric. Missing data reduces to NaN, never to zero.
type GroupRow struct {
	Keys  map[string]any
	Value float64
}

const keySep = "\x1f"

type accumulator struct {
	keys  map[string]any
	sum   float64
	max   float64
	count int
}

func (a *accumulator) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	a.sum += v
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.count++
}

func (a *accumulator) reduce(op AggOp) float64 {
	if a.count == 0 {
		return math.NaN()
	}
	switch op {
	case AggMean:
		return round2(a.sum / float64(a.count))
	case AggMax:
		return round2(a.max)
	default:
		return round2(a.sum)
	}
}

// Aggregate groups the table by the key columns and reduces the metric column
// with op, rounding the result to 2 decimals. Output follows first-seen group
// order. Callers must guarantee that non-aggregated columns are homogeneous
// within a group; the engine does not verify it.
func Aggregate(t Table, keys []string, metric string, op AggOp) ([]GroupRow, error) {
	keyFns := make([]func(*Row) string, len(keys))
	valFns := make([]func(*Row) any, len(keys))
	for i, name := range keys {
		key, val, err := keyColumn(name)
		if err != nil {
			return nil, err
		}
		keyFns[i], valFns[i] = key, val
	}
	get, err := numericColumn(metric)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*accumulator)
	var order []string

	parts := make([]string, len(keys))
	for i := range t.Rows {
		r := &t.Rows[i]
		for j, fn := range keyFns {
			parts[j] = fn(r)
		}
		composite := strings.Join(parts, keySep)

		acc, ok := groups[composite]
		if !ok {
			kv := make(map[string]any, len(keys))
			for j, name := range keys {
				kv[name] = valFns[j](r)
			}
			acc = &accumulator{keys: kv}
			groups[composite] = acc
			order = append(order, composite)
		}
		acc.add(get(r))
	}

	out := make([]GroupRow, 0, len(order))
	for _, composite := range order {
		acc := groups[composite]
		out = append(out, GroupRow{Keys: acc.keys, Value: acc.reduce(op)})
	}
	return out, nil
}

// AggregateGroups re-aggregates already-grouped rows by a subset of their
// keys. This is the second stage of the daily-profile computation.
func AggregateGroups(groups []GroupRow, keys []string, op AggOp) ([]GroupRow, error) {
	acc := make(map[string]*accumulator)
	var order []string

	parts := make([]string, len(keys))
	for gi := range groups {
		g := &groups[gi]
		for j, name := range keys {
			v, ok := g.Keys[name]
			if !ok {
				return nil, &ColumnNotFoundError{Column: name}
			}
			parts[j] = keyString(v)
		}
		composite := strings.Join(parts, keySep)

		a, ok := acc[composite]
		if !ok {
			kv := make(map[string]any, len(keys))
			for _, name := range keys {
				kv[name] = g.Keys[name]
			}
			a = &accumulator{keys: kv}
			acc[composite] = a
			order = append(order, composite)
		}
		a.add(g.Value)
	}

	out := make([]GroupRow, 0, len(order))
	for _, composite := range order {
		a := acc[composite]
		out = append(out, GroupRow{Keys: a.keys, Value: a.reduce(op)})
	}
	return out, nil
}

// AggregateFirstSum collapses each group into the first row encountered, with
// the metric replaced by the group sum. Every other column keeps its
// first-seen value, which assumes the group is homogeneous (one espesor per
// pv and so on); a violation is not detected, the first value simply wins.
func AggregateFirstSum(t Table, keys []string, metric string) (Table, error) {
	keyFns := make([]func(*Row) string, len(keys))
	for i, name := range keys {
		key, _, err := keyColumn(name)
		if err != nil {
			return Table{}, err
		}
		keyFns[i] = key
	}
	get, err := numericColumn(metric)
	if err != nil {
		return Table{}, err
	}
	set, err := numericSetter(metric)
	if err != nil {
		return Table{}, err
	}

	type firstGroup struct {
		row   Row
		sum   float64
		valid bool
	}
	groups := make(map[string]*firstGroup)
	var order []string

	parts := make([]string, len(keys))
	for i := range t.Rows {
		r := &t.Rows[i]
		for j, fn := range keyFns {
			parts[j] = fn(r)
		}
		composite := strings.Join(parts, keySep)

		g, ok := groups[composite]
		if !ok {
			g = &firstGroup{row: *r}
			groups[composite] = g
			order = append(order, composite)
		}
		if v := get(r); !math.IsNaN(v) {
			g.sum += v
			g.valid = true
		}
	}

	rows := make([]Row, 0, len(order))
	for _, composite := range order {
		g := groups[composite]
		if g.valid {
			set(&g.row, round2(g.sum))
		} else {
			set(&g.row, math.NaN())
		}
		rows = append(rows, g.row)
	}
	return Table{Rows: rows}, nil
}

// SortGroupsByValueDesc orders groups by metric, largest first. Stable so
// ties keep first-seen order.
func SortGroupsByValueDesc(groups []GroupRow) []GroupRow {
	out := make([]GroupRow, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Value, out[j].Value
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		if math.IsNaN(a) {
			return false
		}
		return a > b
	})
	return out
}

func keyString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return ""
	}
}
