package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"cnc-dashboard/internal/storage"
)

// MaxMeanRow is one (tipoMecanizado, maquina, espesor) cell of the capacity
// grid before pivoting.
type MaxMeanRow struct {
	TipoMecanizado string
	Maquina        string
	Espesor        float64

	// Capacity reporting rounds up, never down.
	MaxPerfora int
	AvgPerfora int
}

// AggregateMaxMean computes ceil(max) and ceil(mean) of perforaTotal per
// (tipoMecanizado, maquina, espesor). Groups with no usable metric are
// omitted; they surface as empty grid cells, distinct from zero.
func AggregateMaxMean(t Table) []MaxMeanRow {
	type acc struct {
		tipo, maquina string
		espesor       float64
		sum, max      float64
		count         int
	}

	groups := make(map[string]*acc)
	var order []string

	for i := range t.Rows {
		r := &t.Rows[i]
		composite := strings.Join([]string{r.TipoMecanizado, r.Maquina, r.Espesor.String()}, keySep)

		a, ok := groups[composite]
		if !ok {
			a = &acc{tipo: r.TipoMecanizado, maquina: r.Maquina, espesor: r.EspesorF}
			groups[composite] = a
			order = append(order, composite)
		}
		if v := r.PerforaTotal; !math.IsNaN(v) {
			a.sum += v
			if a.count == 0 || v > a.max {
				a.max = v
			}
			a.count++
		}
	}

	out := make([]MaxMeanRow, 0, len(order))
	for _, composite := range order {
		a := groups[composite]
		if a.count == 0 {
			continue
		}
		out = append(out, MaxMeanRow{
			TipoMecanizado: a.tipo,
			Maquina:        a.maquina,
			Espesor:        a.espesor,
			MaxPerfora:     int(math.Ceil(a.max)),
			AvgPerfora:     int(math.Ceil(a.sum / float64(a.count))),
		})
	}
	return out
}

// BuildGrid pivots max/mean rows into the display grid: rows are (espesor,
// maquina) sorted by espesor then maquina, columns are the distinct drill
// types, each cell "(max,avg)". Absent combinations stay empty strings.
func BuildGrid(rows []MaxMeanRow) storage.Grid {
	if len(rows) == 0 {
		return storage.Grid{Columns: []string{}, Rows: []storage.GridRow{}}
	}

	tipoSet := make(map[string]int)
	var tipos []string
	for _, r := range rows {
		if _, ok := tipoSet[r.TipoMecanizado]; !ok {
			tipoSet[r.TipoMecanizado] = 0
			tipos = append(tipos, r.TipoMecanizado)
		}
	}
	sort.Strings(tipos)
	for i, tipo := range tipos {
		tipoSet[tipo] = i
	}

	type rowKey struct {
		espesor float64
		maquina string
	}
	cells := make(map[rowKey][]string)
	var keys []rowKey
	for _, r := range rows {
		k := rowKey{espesor: r.Espesor, maquina: r.Maquina}
		if _, ok := cells[k]; !ok {
			cells[k] = make([]string, len(tipos))
			keys = append(keys, k)
		}
		cells[k][tipoSet[r.TipoMecanizado]] = fmt.Sprintf("(%d,%d)", r.MaxPerfora, r.AvgPerfora)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].espesor != keys[j].espesor {
			return keys[i].espesor < keys[j].espesor
		}
		return keys[i].maquina < keys[j].maquina
	})

	grid := storage.Grid{Columns: tipos, Rows: make([]storage.GridRow, 0, len(keys))}
	thicknesses := make([]float64, len(keys))
	for i, k := range keys {
		thicknesses[i] = k.espesor
		grid.Rows = append(grid.Rows, storage.GridRow{
			Espesor: k.espesor,
			Maquina: k.maquina,
			Cells:   cells[k],
		})
	}

	for i, band := range BandByThickness(thicknesses) {
		grid.Rows[i].Band = band
	}
	return grid
}

// BandByThickness assigns the alternating row bands: the first row opens a
// band, and a new band starts whenever the thickness differs from the row
// above. Band parity drives the zebra shading in the renderer.
func BandByThickness(thicknesses []float64) []int {
	bands := make([]int, len(thicknesses))
	band := 0
	for i := range thicknesses {
		if i > 0 && thicknesses[i] != thicknesses[i-1] {
			band++
		}
		bands[i] = band
	}
	return bands
}
