package storage

import "github.com/shopspring/decimal"

// MachineMetrics is the per-machine KPI card.
type MachineMetrics struct {
	Machine     string  `json:"machine"`
	AvgMMPerDay float64 `json:"avg_mm_per_day"`
	TotalMM     float64 `json:"total_mm"`
	Reports     int     `json:"reports"`
	TotalDrills float64 `json:"total_drills"`
}

// ProfileRow is one line of a drill-type/thickness production profile.
type ProfileRow struct {
	TipoMecanizado string  `json:"tipoMecanizado"`
	Espesor        float64 `json:"espesor"`
	PerforaTotal   float64 `json:"perforaTotal"`
}

// GridRow is one row of the perforation grid: a (espesor, maquina) pair with
// one "(max,avg)" cell per drill type. Empty cells mean no data, not zero.
type GridRow struct {
	Espesor float64  `json:"espesor"`
	Maquina string   `json:"maquina"`
	Cells   []string `json:"cells"`
	Band    int      `json:"band"`
}

type Grid struct {
	Columns []string  `json:"columns"`
	Rows    []GridRow `json:"rows"`
}

// BusinessSummary carries the billing-relevant totals for one client. TotalMM
// and Cost are exact decimals end to end.
type BusinessSummary struct {
	Business    string          `json:"business"`
	TotalDrills float64         `json:"total_drills"`
	TotalMM     decimal.Decimal `json:"total_mm"`
	Cost        decimal.Decimal `json:"cost"`
}

// PlateGroup is chart input: plates delivered per (pv, espesor).
type PlateGroup struct {
	PV      string  `json:"pv"`
	Espesor float64 `json:"espesor"`
	Placas  float64 `json:"placas"`
}

// ProcessTime is chart input: elapsed in-process days per work order.
type ProcessTime struct {
	PV   string  `json:"pv"`
	Dias float64 `json:"process_days"`
}

type BusinessAnalysis struct {
	Summary      BusinessSummary `json:"summary"`
	PlateGroups  []PlateGroup    `json:"plate_groups"`
	ProcessTimes []ProcessTime   `json:"process_times"`
}

// SetupTimeRow is sunburst input: mean operation and setup minutes per
// (negocio, maquina, tipoMecanizado, espesor).
type SetupTimeRow struct {
	Negocio        string  `json:"negocio"`
	Maquina        string  `json:"maquina"`
	TipoMecanizado string  `json:"tipoMecanizado"`
	Espesor        float64 `json:"espesor"`
	Tiempo         float64 `json:"tiempo"`
	TiempoSeteo    float64 `json:"tiempo_seteo"`
}

// DashboardReport is the full bundle for one selected period.
type DashboardReport struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	Machines        []MachineMetrics        `json:"machines"`
	Totals          MachineMetrics          `json:"totals"`
	MachineProfiles map[string][]ProfileRow `json:"machine_profiles"`
	GeneralProfile  []ProfileRow            `json:"general_profile"`
	Grid            Grid                    `json:"grid"`
	Businesses      []BusinessAnalysis      `json:"businesses"`
	SetupTimes      []SetupTimeRow          `json:"setup_times"`
}

// Periods lists the selectable months and years since the first recorded
// month, plus the defaults the UI should preselect.
type Periods struct {
	Months       []int `json:"months"`
	Years        []int `json:"years"`
	CurrentMonth int   `json:"current_month"`
	CurrentYear  int   `json:"current_year"`
}
