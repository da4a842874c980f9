package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func perforaRow(pv, tipo string, espesor, perfora float64) Row {
	return Row{
		PV:             pv,
		TipoMecanizado: tipo,
		Espesor:        decimal.NewFromFloat(espesor),
		EspesorF:       espesor,
		PerforaTotal:   perfora,
	}
}

func TestAggregate_SumByGroup(t *testing.T) {
	table := Table{Rows: []Row{
		perforaRow("J1", "punzonado", 2.5, 30),
		perforaRow("J1", "punzonado", 2.5, 30),
		perforaRow("J2", "oxicorte", 5, 12.345),
	}}

	groups, err := Aggregate(table, []string{ColPV}, ColPerforaTotal, AggSum)

	assert.NoError(t, err)
	assert.Len(t, groups, 2)
	assert.Equal(t, "J1", groups[0].Keys[ColPV])
	assert.Equal(t, 60.0, groups[0].Value)
	assert.Equal(t, 12.35, groups[1].Value) // rounded to 2 decimals
}

func TestAggregate_MeanAndMax(t *testing.T) {
	table := Table{Rows: []Row{
		perforaRow("J1", "punzonado", 2.5, 10),
		perforaRow("J2", "punzonado", 2.5, 20),
		perforaRow("J3", "punzonado", 2.5, 60),
	}}

	mean, err := Aggregate(table, []string{ColTipoMecanizado}, ColPerforaTotal, AggMean)
	assert.NoError(t, err)
	assert.Equal(t, 30.0, mean[0].Value)

	max, err := Aggregate(table, []string{ColTipoMecanizado}, ColPerforaTotal, AggMax)
	assert.NoError(t, err)
	assert.Equal(t, 60.0, max[0].Value)
}

// Conservation of total: per-group sums add back to the table sum.
func TestAggregate_SumConservation(t *testing.T) {
	table := Table{Rows: []Row{
		perforaRow("J1", "punzonado", 2.5, 30),
		perforaRow("J2", "punzonado", 3, 15),
		perforaRow("J3", "oxicorte", 5, 7),
		perforaRow("J1", "oxicorte", 2.5, 8),
	}}

	groups, err := Aggregate(table, []string{ColPV, ColTipoMecanizado}, ColPerforaTotal, AggSum)
	assert.NoError(t, err)

	var grouped float64
	for _, g := range groups {
		grouped += g.Value
	}
	total, err := table.Sum(ColPerforaTotal)
	assert.NoError(t, err)
	assert.Equal(t, total, grouped)
}

func TestAggregate_UnknownColumns(t *testing.T) {
	var notFound *ColumnNotFoundError

	_, err := Aggregate(Table{}, []string{"bogus"}, ColPerforaTotal, AggSum)
	assert.True(t, errors.As(err, &notFound))

	_, err = Aggregate(Table{}, []string{ColPV}, "bogus", AggSum)
	assert.True(t, errors.As(err, &notFound))
}

func TestAggregate_AllMissingMetricIsNaN(t *testing.T) {
	// TiempoProcesoMin is NaN when the job timestamps never parsed.
	table := Table{Rows: []Row{
		{PV: "J1", TiempoProcesoMin: math.NaN()},
		{PV: "J1", TiempoProcesoMin: math.NaN()},
	}}

	groups, err := Aggregate(table, []string{ColPV}, ColTiempoProceso, AggSum)

	assert.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.True(t, math.IsNaN(groups[0].Value))
}

func TestAggregateGroups_SecondStage(t *testing.T) {
	table := Table{Rows: []Row{
		{PV: "J1", TipoMecanizado: "punzonado", Year: 2024, Month: 10, Day: 1, PerforaTotal: 10},
		{PV: "J2", TipoMecanizado: "punzonado", Year: 2024, Month: 10, Day: 2, PerforaTotal: 30},
	}}

	daily, err := Aggregate(table, []string{ColYear, ColMonth, ColDay, ColTipoMecanizado}, ColPerforaTotal, AggSum)
	assert.NoError(t, err)

	profile, err := AggregateGroups(daily, []string{ColTipoMecanizado}, AggMean)
	assert.NoError(t, err)
	assert.Len(t, profile, 1)
	assert.Equal(t, "punzonado", profile[0].Keys[ColTipoMecanizado])
	assert.Equal(t, 20.0, profile[0].Value)
}

func TestAggregateGroups_MissingKey(t *testing.T) {
	groups := []GroupRow{{Keys: map[string]any{ColPV: "J1"}, Value: 1}}

	_, err := AggregateGroups(groups, []string{ColDay}, AggSum)

	var notFound *ColumnNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestAggregateFirstSum_CollapsesDeliveries(t *testing.T) {
	r1 := perforaRow("J1", "punzonado", 2.5, 30)
	r1.Posicion = 1
	r1.Placas = 4
	r1.Maquina = "m1"
	r2 := perforaRow("J1", "punzonado", 2.5, 30)
	r2.Posicion = 1
	r2.Placas = 6
	r2.Maquina = "m2" // first value wins for non-aggregated columns
	r3 := perforaRow("J2", "oxicorte", 5, 12)
	r3.Posicion = 2
	r3.Placas = 1

	table := Table{Rows: []Row{r1, r2, r3}}

	collapsed, err := AggregateFirstSum(table, []string{ColPV, ColPosicion}, ColPlacas)

	assert.NoError(t, err)
	assert.Equal(t, 2, collapsed.Len())
	assert.Equal(t, 10.0, collapsed.Rows[0].Placas)
	assert.Equal(t, "m1", collapsed.Rows[0].Maquina)
	assert.Equal(t, 1.0, collapsed.Rows[1].Placas)
}

func TestSortGroupsByValueDesc(t *testing.T) {
	groups := []GroupRow{
		{Keys: map[string]any{ColPV: "J1"}, Value: 5},
		{Keys: map[string]any{ColPV: "J2"}, Value: math.NaN()},
		{Keys: map[string]any{ColPV: "J3"}, Value: 50},
	}

	sorted := SortGroupsByValueDesc(groups)

	assert.Equal(t, "J3", sorted[0].Keys[ColPV])
	assert.Equal(t, "J1", sorted[1].Keys[ColPV])
	assert.Equal(t, "J2", sorted[2].Keys[ColPV]) // no-data groups sink
	// input order untouched
	assert.Equal(t, "J1", groups[0].Keys[ColPV])
}
