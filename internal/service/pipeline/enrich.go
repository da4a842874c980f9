package pipeline

import "time"

var timeColumns = map[string]func(*Row) time.Time{
	ColInicio:            func(r *Row) time.Time { return r.Inicio },
	ColTerminado:         func(r *Row) time.Time { return r.Terminado },
	ColProgressCreatedAt: func(r *Row) time.Time { return r.ProgressCreatedAt },
}

// ExpandDatetime decomposes a timestamp column into year/month/day/hour/minute
// and refreshes the float views of espesor. Timestamps are taken as-is, no
// timezone conversion. Running it twice re-derives identical values. A column
// outside the manifest is an ingestion contract violation, hence SchemaError.
func ExpandDatetime(t Table, name string) (Table, error) {
	get, ok := timeColumns[name]
	if !ok {
		return Table{}, &SchemaError{Column: name}
	}

	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)

	for i := range rows {
		r := &rows[i]
		ts := get(r)
		if ts.IsZero() {
			// Missing timestamps decompose to zeros, which match no
			// real calendar period.
			r.Year, r.Month, r.Day, r.Hour, r.Minute = 0, 0, 0, 0, 0
		} else {
			r.Year = ts.Year()
			r.Month = int(ts.Month())
			r.Day = ts.Day()
			r.Hour = ts.Hour()
			r.Minute = ts.Minute()
		}
		r.EspesorF = r.Espesor.InexactFloat64()
	}

	return Table{Rows: rows}, nil
}
