package pipeline

import (
	"math"
	"strconv"
)

// The two duration-keyed dedup modes below are deliberately separate named
// operations. The strict one reads a repeated process duration as a
// double-reported job closure, so every occurrence goes, including the first.
// The keep-first one is for export, per-job tables and the capacity grid,
// where losing the job entirely would be worse than keeping one
// representative row. They are not interchangeable.

// DropAllDuplicateDurations removes every row whose process duration occurs
// more than once in the table. Rows with a missing duration are never treated
// as duplicates of each other. Idempotent.
func DropAllDuplicateDurations(t Table) Table {
	counts := make(map[float64]int)
	for i := range t.Rows {
		d := t.Rows[i].TiempoProcesoMin
		if math.IsNaN(d) {
			continue
		}
		counts[d]++
	}

	rows := make([]Row, 0, len(t.Rows))
	for i := range t.Rows {
		d := t.Rows[i].TiempoProcesoMin
		if !math.IsNaN(d) && counts[d] > 1 {
			continue
		}
		rows = append(rows, t.Rows[i])
	}
	return Table{Rows: rows}
}

// KeepFirstByDuration keeps the first row for each process duration value and
// drops the rest. Rows with a missing duration are all kept.
func KeepFirstByDuration(t Table) Table {
	seen := make(map[float64]bool)
	rows := make([]Row, 0, len(t.Rows))
	for i := range t.Rows {
		d := t.Rows[i].TiempoProcesoMin
		if !math.IsNaN(d) {
			if seen[d] {
				continue
			}
			seen[d] = true
		}
		rows = append(rows, t.Rows[i])
	}
	return Table{Rows: rows}
}

// DropAllDuplicateDates removes every grouped row whose (year, month, day)
// occurs more than once. The daily profile treats a date reported twice as
// suspect and discards it entirely.
func DropAllDuplicateDates(groups []GroupRow) []GroupRow {
	counts := make(map[string]int)
	for gi := range groups {
		counts[dateKey(&groups[gi])]++
	}

	out := make([]GroupRow, 0, len(groups))
	for gi := range groups {
		if counts[dateKey(&groups[gi])] > 1 {
			continue
		}
		out = append(out, groups[gi])
	}
	return out
}

func dateKey(g *GroupRow) string {
	y, _ := g.Keys[ColYear].(int)
	m, _ := g.Keys[ColMonth].(int)
	d, _ := g.Keys[ColDay].(int)
	return strconv.Itoa(y) + "-" + strconv.Itoa(m) + "-" + strconv.Itoa(d)
}
