package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func gridRow(tipo, maquina string, espesor, perfora float64) Row {
	return Row{
		TipoMecanizado: tipo,
		Maquina:        maquina,
		Espesor:        decimal.NewFromFloat(espesor),
		EspesorF:       espesor,
		PerforaTotal:   perfora,
	}
}

func TestAggregateMaxMean_CeilingRounding(t *testing.T) {
	// mean 7.01 must report as 8, max 15.4 as 16: capacity rounds up
	table := Table{Rows: []Row{
		gridRow("punzonado", "m1", 2.5, 15.4),
		gridRow("punzonado", "m1", 2.5, 5.01),
		gridRow("punzonado", "m1", 2.5, 0.63),
	}}

	rows := AggregateMaxMean(table)

	assert.Len(t, rows, 1)
	assert.Equal(t, 16, rows[0].MaxPerfora)
	assert.Equal(t, 8, rows[0].AvgPerfora)
}

func TestBuildGrid_PivotAndEmptyCells(t *testing.T) {
	rows := []MaxMeanRow{
		{TipoMecanizado: "punzonado", Maquina: "m1", Espesor: 2.5, MaxPerfora: 16, AvgPerfora: 8},
		{TipoMecanizado: "oxicorte", Maquina: "m2", Espesor: 2.5, MaxPerfora: 4, AvgPerfora: 2},
		{TipoMecanizado: "punzonado", Maquina: "m1", Espesor: 5, MaxPerfora: 9, AvgPerfora: 9},
	}

	grid := BuildGrid(rows)

	assert.Equal(t, []string{"oxicorte", "punzonado"}, grid.Columns)
	assert.Len(t, grid.Rows, 3)

	// sorted by espesor then maquina
	assert.Equal(t, 2.5, grid.Rows[0].Espesor)
	assert.Equal(t, "m1", grid.Rows[0].Maquina)
	assert.Equal(t, []string{"", "(16,8)"}, grid.Rows[0].Cells)

	assert.Equal(t, "m2", grid.Rows[1].Maquina)
	assert.Equal(t, []string{"(4,2)", ""}, grid.Rows[1].Cells)

	assert.Equal(t, 5.0, grid.Rows[2].Espesor)
	assert.Equal(t, []string{"", "(9,9)"}, grid.Rows[2].Cells)
}

func TestBuildGrid_Empty(t *testing.T) {
	grid := BuildGrid(nil)

	assert.Empty(t, grid.Columns)
	assert.Empty(t, grid.Rows)
}

func TestBandByThickness(t *testing.T) {
	bands := BandByThickness([]float64{1, 1, 2, 2, 2, 3})

	// new bands open at indices 0, 2 and 5
	assert.Equal(t, []int{0, 0, 1, 1, 1, 2}, bands)
}

func TestBandByThickness_FlipsOnChangeNotEveryRow(t *testing.T) {
	bands := BandByThickness([]float64{1.5, 1.5, 1.5})

	assert.Equal(t, []int{0, 0, 0}, bands)
}

func TestBuildGrid_AssignsBands(t *testing.T) {
	rows := []MaxMeanRow{
		{TipoMecanizado: "punzonado", Maquina: "m1", Espesor: 1, MaxPerfora: 1, AvgPerfora: 1},
		{TipoMecanizado: "punzonado", Maquina: "m2", Espesor: 1, MaxPerfora: 1, AvgPerfora: 1},
		{TipoMecanizado: "punzonado", Maquina: "m1", Espesor: 2, MaxPerfora: 1, AvgPerfora: 1},
	}

	grid := BuildGrid(rows)

	assert.Equal(t, 0, grid.Rows[0].Band)
	assert.Equal(t, 0, grid.Rows[1].Band)
	assert.Equal(t, 1, grid.Rows[2].Band)
}
