package pipeline

// FilterEqual keeps rows whose column equals value. The result is a fresh
// table; an empty result is a valid "no data" state, not an error.
func FilterEqual(t Table, name, value string) (Table, error) {
	key, _, err := keyColumn(name)
	if err != nil {
		return Table{}, err
	}

	rows := make([]Row, 0)
	for i := range t.Rows {
		if key(&t.Rows[i]) == value {
			rows = append(rows, t.Rows[i])
		}
	}
	return Table{Rows: rows}, nil
}

// FilterNotEqual keeps rows whose numeric column differs from value. Used to
// drop the zero placeholders (e.g. reports without setup time).
func FilterNotEqual(t Table, name string, value float64) (Table, error) {
	get, err := numericColumn(name)
	if err != nil {
		return Table{}, err
	}

	rows := make([]Row, 0)
	for i := range t.Rows {
		if get(&t.Rows[i]) != value {
			rows = append(rows, t.Rows[i])
		}
	}
	return Table{Rows: rows}, nil
}

// FilterByYearMonth keeps rows whose completion timestamp falls in the given
// calendar month. Rows with a missing completion never match.
func FilterByYearMonth(t Table, year, month int) Table {
	rows := make([]Row, 0)
	for i := range t.Rows {
		r := &t.Rows[i]
		if r.Terminado.IsZero() {
			continue
		}
		if r.Terminado.Year() == year && int(r.Terminado.Month()) == month {
			rows = append(rows, *r)
		}
	}
	return Table{Rows: rows}
}

// FilterByYearMonthBusiness is FilterByYearMonth ANDed with a business match.
func FilterByYearMonthBusiness(t Table, year, month int, business string) Table {
	rows := make([]Row, 0)
	for i := range t.Rows {
		r := &t.Rows[i]
		if r.Terminado.IsZero() || r.Negocio != business {
			continue
		}
		if r.Terminado.Year() == year && int(r.Terminado.Month()) == month {
			rows = append(rows, *r)
		}
	}
	return Table{Rows: rows}
}
