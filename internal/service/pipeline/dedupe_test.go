package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func durationRow(pv string, minutes float64) Row {
	return Row{PV: pv, TiempoProcesoMin: minutes}
}

func TestDropAllDuplicateDurations_RemovesEveryOccurrence(t *testing.T) {
	table := Table{Rows: []Row{
		durationRow("J1", 5),
		durationRow("J2", 5),
		durationRow("J3", 7),
	}}

	deduped := DropAllDuplicateDurations(table)

	assert.Equal(t, 1, deduped.Len())
	assert.Equal(t, "J3", deduped.Rows[0].PV)
	assert.Equal(t, 7.0, deduped.Rows[0].TiempoProcesoMin)
}

func TestDropAllDuplicateDurations_Idempotent(t *testing.T) {
	table := Table{Rows: []Row{
		durationRow("J1", 5),
		durationRow("J2", 5),
		durationRow("J3", 7),
		durationRow("J4", 9),
	}}

	once := DropAllDuplicateDurations(table)
	twice := DropAllDuplicateDurations(once)

	assert.Equal(t, once.Rows, twice.Rows)
}

func TestDropAllDuplicateDurations_MissingDurationsSurvive(t *testing.T) {
	table := Table{Rows: []Row{
		durationRow("J1", math.NaN()),
		durationRow("J2", math.NaN()),
		durationRow("J3", 7),
	}}

	deduped := DropAllDuplicateDurations(table)

	assert.Equal(t, 3, deduped.Len())
}

func TestKeepFirstByDuration(t *testing.T) {
	table := Table{Rows: []Row{
		durationRow("J1", 5),
		durationRow("J2", 5),
		durationRow("J3", 7),
	}}

	deduped := KeepFirstByDuration(table)

	assert.Equal(t, 2, deduped.Len())
	assert.Equal(t, "J1", deduped.Rows[0].PV)
	assert.Equal(t, "J3", deduped.Rows[1].PV)
}

// The two modes are distinct policies; make sure they never converge on the
// same behavior for a duplicated value.
func TestDedupModesDiffer(t *testing.T) {
	table := Table{Rows: []Row{
		durationRow("J1", 5),
		durationRow("J2", 5),
	}}

	assert.Equal(t, 0, DropAllDuplicateDurations(table).Len())
	assert.Equal(t, 1, KeepFirstByDuration(table).Len())
}

func TestDropAllDuplicateDates(t *testing.T) {
	groups := []GroupRow{
		{Keys: map[string]any{ColYear: 2024, ColMonth: 10, ColDay: 1, ColTipoMecanizado: "punzonado"}, Value: 10},
		{Keys: map[string]any{ColYear: 2024, ColMonth: 10, ColDay: 1, ColTipoMecanizado: "oxicorte"}, Value: 20},
		{Keys: map[string]any{ColYear: 2024, ColMonth: 10, ColDay: 2, ColTipoMecanizado: "punzonado"}, Value: 30},
	}

	kept := DropAllDuplicateDates(groups)

	assert.Len(t, kept, 1)
	assert.Equal(t, 30.0, kept[0].Value)
}
