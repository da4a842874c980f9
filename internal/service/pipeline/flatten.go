package pipeline

import (
	"math"
	"strings"
	"time"

	"cnc-dashboard/internal/storage"
)

// timestampLayouts covers the formats the capture app has written over time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses permissively: anything unreadable becomes the zero
// time so one malformed record cannot abort a scan of the whole table. Rows
// with a zero timestamp never match a period filter but stay visible to
// filters that do not key on time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Flatten turns work orders into one row per progress event, copying the
// order-level fields onto each row. Orders with no progress produce no rows;
// the second return value counts them so the caller can log the drop. A job
// without progress is deliberately not yet part of production analysis.
func Flatten(items []storage.Item) (Table, int) {
	var rows []Row
	var skipped int

	for _, item := range items {
		if len(item.Data.Progress) == 0 {
			skipped++
			continue
		}

		inicio := ParseTimestamp(item.Data.CreatedAt)
		terminado := ParseTimestamp(item.Timestamp)

		proceso := math.NaN()
		if !inicio.IsZero() && !terminado.IsZero() {
			proceso = round2(terminado.Sub(inicio).Minutes())
		}

		negocio := item.Data.Negocio
		if negocio == "" {
			negocio = "does not exist"
		}

		for _, p := range item.Data.Progress {
			row := Row{
				PV:                          item.PV,
				Posicion:                    item.Posicion,
				Inicio:                      inicio,
				Terminado:                   terminado,
				CantidadPerforacionesTotal:  float64(item.Data.CantidadPerforacionesTotal),
				CantidadPerforacionesPlacas: float64(item.Data.CantidadPerforacionesPlacas),
				Kg:                          float64(item.Data.Kg),
				TipoMecanizado:              item.Data.TipoMecanizado,
				Espesor:                     item.Data.Espesor.Decimal,
				EspesorF:                    item.Data.Espesor.InexactFloat64(),
				Negocio:                     negocio,

				ProgressCreatedAt: ParseTimestamp(p.CreatedAt),
				Origen:            stringOrZero(p.Origen),
				Maquina:           stringOrZero(p.Maquina),
				Placas:            float64(p.Placas),
				HoraReporte:       stringOrZero(p.HoraReporte),
				Tiempo:            float64(p.Tiempo),
				TiempoSeteo:       float64(p.TiempoSeteo),

				TiempoProcesoMin: proceso,
			}
			row.PerforaTotal = row.Placas * row.CantidadPerforacionesPlacas
			rows = append(rows, row)
		}
	}

	return Table{Rows: rows}, skipped
}

func stringOrZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
