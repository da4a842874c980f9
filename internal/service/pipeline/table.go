package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Column names follow the source attribute names so a filter or grouping call
// reads the same as the stored data.
const (
	ColPV                          = "pv"
	ColPosicion                    = "posicion"
	ColInicio                      = "Inicio"
	ColTerminado                   = "Terminado"
	ColCantidadPerforacionesTotal  = "cantidadPerforacionesTotal"
	ColCantidadPerforacionesPlacas = "cantidadPerforacionesPlacas"
	ColKg                          = "kg"
	ColTipoMecanizado              = "tipoMecanizado"
	ColEspesor                     = "espesor"
	ColNegocio                     = "negocio"
	ColProgressCreatedAt           = "progress_createdAt"
	ColOrigen                      = "origen"
	ColMaquina                     = "maquina"
	ColPlacas                      = "placas"
	ColHoraReporte                 = "hora_reporte"
	ColTiempo                      = "tiempo"
	ColTiempoSeteo                 = "tiempo_seteo"
	ColPerforaTotal                = "perforaTotal"
	ColTiempoProceso               = "Tiempo Proceso (min)"
	ColYear                        = "year"
	ColMonth                       = "month"
	ColDay                         = "day"
	ColHour                        = "hour"
	ColMinute                      = "minute"
)

// Row is one progress event with its work-order fields copied on. Rows are
// value types; every pipeline stage copies, none mutates its input.
type Row struct {
	PV       string
	Posicion int

	// Inicio/Terminado bound the whole work order. Zero time means the
	// source value was absent or unparsable.
	Inicio    time.Time
	Terminado time.Time

	CantidadPerforacionesTotal  float64
	CantidadPerforacionesPlacas float64
	Kg                          float64
	TipoMecanizado              string

	// Espesor stays decimal because it feeds billing; EspesorF is the
	// float view used by display aggregates.
	Espesor  decimal.Decimal
	EspesorF float64
	Negocio  string

	ProgressCreatedAt time.Time
	Origen            string
	Maquina           string
	Placas            float64
	HoraReporte       string
	Tiempo            float64
	TiempoSeteo       float64

	// PerforaTotal is always Placas × CantidadPerforacionesPlacas,
	// recomputed at flatten time, never stored independently.
	PerforaTotal float64

	// TiempoProcesoMin is identical for every row of the same pv; it is
	// the dedup fingerprint. NaN when either timestamp is missing.
	TiempoProcesoMin float64

	Year, Month, Day, Hour, Minute int
}

// Table is an immutable in-memory result set.
type Table struct {
	Rows []Row
}

func (t Table) Len() int { return len(t.Rows) }

// SchemaError means a required column is absent. It indicates a broken
// ingestion contract and aborts the computation.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: required column %q is missing", e.Column)
}

// ColumnNotFoundError means a filter or aggregation referenced a column that
// is not part of the table manifest.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

type column struct {
	// key renders a canonical grouping key; nil if the column cannot group.
	key func(*Row) string
	// val returns the native value carried into grouped output.
	val func(*Row) any
	// num/setNum exist only for numeric metric columns.
	num    func(*Row) float64
	setNum func(*Row, float64)
}

// columns is the fixed manifest. Referencing anything outside it fails with
// ColumnNotFoundError at the call, not deep inside a loop.
var columns = map[string]column{
	ColPV: {
		key: func(r *Row) string { return r.PV },
		val: func(r *Row) any { return r.PV },
	},
	ColPosicion: {
		key: func(r *Row) string { return strconv.Itoa(r.Posicion) },
		val: func(r *Row) any { return r.Posicion },
	},
	ColTipoMecanizado: {
		key: func(r *Row) string { return r.TipoMecanizado },
		val: func(r *Row) any { return r.TipoMecanizado },
	},
	ColOrigen: {
		key: func(r *Row) string { return r.Origen },
		val: func(r *Row) any { return r.Origen },
	},
	ColMaquina: {
		key: func(r *Row) string { return r.Maquina },
		val: func(r *Row) any { return r.Maquina },
	},
	ColNegocio: {
		key: func(r *Row) string { return r.Negocio },
		val: func(r *Row) any { return r.Negocio },
	},
	ColHoraReporte: {
		key: func(r *Row) string { return r.HoraReporte },
		val: func(r *Row) any { return r.HoraReporte },
	},
	ColEspesor: {
		key: func(r *Row) string { return r.Espesor.String() },
		val: func(r *Row) any { return r.EspesorF },
		num: func(r *Row) float64 { return r.EspesorF },
	},
	ColYear: {
		key: func(r *Row) string { return strconv.Itoa(r.Year) },
		val: func(r *Row) any { return r.Year },
	},
	ColMonth: {
		key: func(r *Row) string { return strconv.Itoa(r.Month) },
		val: func(r *Row) any { return r.Month },
	},
	ColDay: {
		key: func(r *Row) string { return strconv.Itoa(r.Day) },
		val: func(r *Row) any { return r.Day },
	},
	ColHour: {
		key: func(r *Row) string { return strconv.Itoa(r.Hour) },
		val: func(r *Row) any { return r.Hour },
	},
	ColMinute: {
		key: func(r *Row) string { return strconv.Itoa(r.Minute) },
		val: func(r *Row) any { return r.Minute },
	},
	ColCantidadPerforacionesTotal: {
		num:    func(r *Row) float64 { return r.CantidadPerforacionesTotal },
		setNum: func(r *Row, v float64) { r.CantidadPerforacionesTotal = v },
	},
	ColCantidadPerforacionesPlacas: {
		num:    func(r *Row) float64 { return r.CantidadPerforacionesPlacas },
		setNum: func(r *Row, v float64) { r.CantidadPerforacionesPlacas = v },
	},
	ColKg: {
		num:    func(r *Row) float64 { return r.Kg },
		setNum: func(r *Row, v float64) { r.Kg = v },
	},
	ColPlacas: {
		num:    func(r *Row) float64 { return r.Placas },
		setNum: func(r *Row, v float64) { r.Placas = v },
	},
	ColTiempo: {
		num:    func(r *Row) float64 { return r.Tiempo },
		setNum: func(r *Row, v float64) { r.Tiempo = v },
	},
	ColTiempoSeteo: {
		num:    func(r *Row) float64 { return r.TiempoSeteo },
		setNum: func(r *Row, v float64) { r.TiempoSeteo = v },
	},
	ColPerforaTotal: {
		num:    func(r *Row) float64 { return r.PerforaTotal },
		setNum: func(r *Row, v float64) { r.PerforaTotal = v },
	},
	ColTiempoProceso: {
		num:    func(r *Row) float64 { return r.TiempoProcesoMin },
		setNum: func(r *Row, v float64) { r.TiempoProcesoMin = v },
	},
}

func keyColumn(name string) (func(*Row) string, func(*Row) any, error) {
	col, ok := columns[name]
	if !ok || col.key == nil {
		return nil, nil, &ColumnNotFoundError{Column: name}
	}
	return col.key, col.val, nil
}

func numericColumn(name string) (func(*Row) float64, error) {
	col, ok := columns[name]
	if !ok || col.num == nil {
		return nil, &ColumnNotFoundError{Column: name}
	}
	return col.num, nil
}

func numericSetter(name string) (func(*Row, float64), error) {
	col, ok := columns[name]
	if !ok || col.setNum == nil {
		return nil, &ColumnNotFoundError{Column: name}
	}
	return col.setNum, nil
}

// Sum adds a numeric column over the whole table, skipping missing values.
func (t Table) Sum(name string) (float64, error) {
	get, err := numericColumn(name)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range t.Rows {
		v := get(&t.Rows[i])
		if math.IsNaN(v) {
			continue
		}
		sum += v
	}
	return sum, nil
}

// Mean averages a numeric column over the non-missing entries. NaN when the
// table has no data for the column.
func (t Table) Mean(name string) (float64, error) {
	get, err := numericColumn(name)
	if err != nil {
		return 0, err
	}
	var sum float64
	var n int
	for i := range t.Rows {
		v := get(&t.Rows[i])
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), nil
	}
	return sum / float64(n), nil
}

// Count returns the number of non-missing entries in a numeric column.
func (t Table) Count(name string) (int, error) {
	get, err := numericColumn(name)
	if err != nil {
		return 0, err
	}
	var n int
	for i := range t.Rows {
		if !math.IsNaN(get(&t.Rows[i])) {
			n++
		}
	}
	return n, nil
}

func round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}
