package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"cnc-dashboard/internal/constants"
	"cnc-dashboard/internal/service/pipeline"
	"cnc-dashboard/internal/storage"
)

type Scanner interface {
	ScanAll(ctx context.Context) ([]storage.Item, error)
}

// Service recomputes the dashboard from the full history on every call; the
// system keeps no state of its own.
type Service struct {
	log     *slog.Logger
	scanner Scanner

	// prices is injected configuration, one unit price per business.
	prices map[string]decimal.Decimal

	historyStart time.Time
}

func New(log *slog.Logger, scanner Scanner, prices map[string]decimal.Decimal, historyStart time.Time) *Service {
	return &Service{
		log:          log,
		scanner:      scanner,
		prices:       prices,
		historyStart: historyStart,
	}
}

// Dashboard builds the full report bundle for one calendar month. The
// per-machine and per-business branches are independent, so they fan out.
func (s *Service) Dashboard(ctx context.Context, year, month int) (*storage.DashboardReport, error) {
	const op = "service.report.Dashboard"

	items, err := s.scanner.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	flat, skipped := pipeline.Flatten(items)
	if skipped > 0 {
		s.log.Info("orders without progress dropped from analysis", slog.Int("count", skipped))
	}

	period := pipeline.FilterByYearMonth(flat, year, month)
	if period.Len() == 0 {
		s.log.Info("no data for selected period", slog.Int("year", year), slog.Int("month", month))
	}

	progreso, err := pipeline.FilterEqual(period, pipeline.ColOrigen, constants.OrigenProgreso)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	total, err := pipeline.ExpandDatetime(progreso, pipeline.ColProgressCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report := &storage.DashboardReport{
		Year:            year,
		Month:           month,
		Machines:        make([]storage.MachineMetrics, len(constants.Machines)),
		MachineProfiles: make(map[string][]storage.ProfileRow, len(constants.Machines)),
		Businesses:      make([]storage.BusinessAnalysis, len(constants.Businesses)),
	}

	profiles := make([][]storage.ProfileRow, len(constants.Machines))
	setups := make([][]storage.SetupTimeRow, len(constants.Businesses))

	var g errgroup.Group

	for i, machine := range constants.Machines {
		g.Go(func() error {
			metrics, profile, err := machineBundle(total, machine)
			if err != nil {
				return err
			}
			report.Machines[i] = metrics
			profiles[i] = profile
			return nil
		})
	}

	for i, business := range constants.Businesses {
		g.Go(func() error {
			analysis, setup, err := s.businessAnalysis(flat, year, month, business)
			if err != nil {
				return err
			}
			report.Businesses[i] = analysis
			setups[i] = setup
			return nil
		})
	}

	g.Go(func() error {
		profile, err := generalProfile(total)
		if err != nil {
			return err
		}
		report.GeneralProfile = profile
		return nil
	})

	g.Go(func() error {
		// Keep-first here: every row of a pv shares one duration, so the
		// strict mode would erase whole multi-event jobs from the grid.
		deduped := pipeline.KeepFirstByDuration(total)
		report.Grid = pipeline.BuildGrid(pipeline.AggregateMaxMean(deduped))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, machine := range constants.Machines {
		report.MachineProfiles[machine] = profiles[i]
	}
	for _, setup := range setups {
		report.SetupTimes = append(report.SetupTimes, setup...)
	}
	report.Totals = totals(report.Machines)

	return report, nil
}

func machineBundle(total pipeline.Table, machine string) (storage.MachineMetrics, []storage.ProfileRow, error) {
	rows, err := pipeline.FilterEqual(total, pipeline.ColMaquina, machine)
	if err != nil {
		return storage.MachineMetrics{}, nil, err
	}

	grouped, err := pipeline.Aggregate(rows,
		[]string{pipeline.ColTipoMecanizado, pipeline.ColEspesor},
		pipeline.ColPerforaTotal, pipeline.AggSum)
	if err != nil {
		return storage.MachineMetrics{}, nil, err
	}
	profile := profileRows(pipeline.SortGroupsByValueDesc(grouped))

	var mmSum, drills float64
	for i := range rows.Rows {
		r := &rows.Rows[i]
		mmSum += r.EspesorF * r.PerforaTotal
		drills += r.PerforaTotal
	}
	avg := 0.0
	if rows.Len() > 0 {
		avg = mmSum / float64(rows.Len())
	}

	return storage.MachineMetrics{
		Machine:     machine,
		AvgMMPerDay: round2(avg),
		TotalMM:     round2(mmSum),
		Reports:     rows.Len(),
		TotalDrills: drills,
	}, profile, nil
}

func generalProfile(total pipeline.Table) ([]storage.ProfileRow, error) {
	daily, err := pipeline.Aggregate(total,
		[]string{pipeline.ColYear, pipeline.ColMonth, pipeline.ColDay, pipeline.ColTipoMecanizado, pipeline.ColEspesor},
		pipeline.ColPerforaTotal, pipeline.AggSum)
	if err != nil {
		return nil, err
	}

	noDup := pipeline.DropAllDuplicateDates(daily)

	grouped, err := pipeline.AggregateGroups(noDup,
		[]string{pipeline.ColTipoMecanizado, pipeline.ColEspesor}, pipeline.AggMean)
	if err != nil {
		return nil, err
	}
	return profileRows(pipeline.SortGroupsByValueDesc(grouped)), nil
}

func (s *Service) businessAnalysis(flat pipeline.Table, year, month int, business string) (storage.BusinessAnalysis, []storage.SetupTimeRow, error) {
	rows := pipeline.FilterByYearMonthBusiness(flat, year, month, business)

	// Billing totals are exact: espesor never left decimal, and the
	// product goes straight into the cost formula.
	totalMM := decimal.Zero
	var drills float64
	for i := range rows.Rows {
		r := &rows.Rows[i]
		totalMM = totalMM.Add(r.Espesor.Mul(decimal.NewFromFloat(r.PerforaTotal)))
		drills += r.PerforaTotal
	}
	cost := decimal.Zero
	if price, ok := s.prices[business]; ok {
		cost = totalMM.Mul(price).Round(2)
	}

	analysis := storage.BusinessAnalysis{
		Summary: storage.BusinessSummary{
			Business:    business,
			TotalDrills: drills,
			TotalMM:     totalMM.Round(2),
			Cost:        cost,
		},
	}

	// Several delivery rows can exist per (pv, posicion); collapse them to
	// one row each before grouping plates per order.
	firsts, err := pipeline.AggregateFirstSum(rows,
		[]string{pipeline.ColPV, pipeline.ColPosicion}, pipeline.ColPlacas)
	if err != nil {
		return storage.BusinessAnalysis{}, nil, err
	}
	grouped, err := pipeline.Aggregate(firsts,
		[]string{pipeline.ColPV, pipeline.ColEspesor},
		pipeline.ColPlacas, pipeline.AggSum)
	if err != nil {
		return storage.BusinessAnalysis{}, nil, err
	}
	for _, group := range pipeline.SortGroupsByValueDesc(grouped) {
		if math.IsNaN(group.Value) {
			continue
		}
		espesor, _ := group.Keys[pipeline.ColEspesor].(float64)
		pv, _ := group.Keys[pipeline.ColPV].(string)
		analysis.PlateGroups = append(analysis.PlateGroups, storage.PlateGroup{
			PV:      pv,
			Espesor: espesor,
			Placas:  group.Value,
		})
	}

	analysis.ProcessTimes = processTimes(rows)

	setup, err := setupTimes(rows, business)
	if err != nil {
		return storage.BusinessAnalysis{}, nil, err
	}

	return analysis, setup, nil
}

// processTimes sums in-process days per work order, one representative row
// per duration value.
func processTimes(rows pipeline.Table) []storage.ProcessTime {
	deduped := pipeline.KeepFirstByDuration(rows)

	days := make(map[string]float64)
	var order []string
	for i := range deduped.Rows {
		r := &deduped.Rows[i]
		if math.IsNaN(r.TiempoProcesoMin) {
			continue
		}
		if _, ok := days[r.PV]; !ok {
			order = append(order, r.PV)
		}
		days[r.PV] += round2(r.TiempoProcesoMin / (60 * 24))
	}

	out := make([]storage.ProcessTime, 0, len(order))
	for _, pv := range order {
		out = append(out, storage.ProcessTime{PV: pv, Dias: round2(days[pv])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Dias > out[j].Dias })
	return out
}

func setupTimes(rows pipeline.Table, business string) ([]storage.SetupTimeRow, error) {
	withSetup, err := pipeline.FilterNotEqual(rows, pipeline.ColTiempoSeteo, 0)
	if err != nil {
		return nil, err
	}

	keys := []string{pipeline.ColMaquina, pipeline.ColTipoMecanizado, pipeline.ColEspesor}
	tiempo, err := pipeline.Aggregate(withSetup, keys, pipeline.ColTiempo, pipeline.AggMean)
	if err != nil {
		return nil, err
	}
	seteo, err := pipeline.Aggregate(withSetup, keys, pipeline.ColTiempoSeteo, pipeline.AggMean)
	if err != nil {
		return nil, err
	}

	// Both aggregations walk the same table, so group order matches.
	out := make([]storage.SetupTimeRow, 0, len(tiempo))
	for i, group := range tiempo {
		espesor, _ := group.Keys[pipeline.ColEspesor].(float64)
		maquina, _ := group.Keys[pipeline.ColMaquina].(string)
		tipo, _ := group.Keys[pipeline.ColTipoMecanizado].(string)
		out = append(out, storage.SetupTimeRow{
			Negocio:        business,
			Maquina:        maquina,
			TipoMecanizado: tipo,
			Espesor:        espesor,
			Tiempo:         group.Value,
			TiempoSeteo:    seteo[i].Value,
		})
	}
	return out, nil
}

func profileRows(groups []pipeline.GroupRow) []storage.ProfileRow {
	out := make([]storage.ProfileRow, 0, len(groups))
	for _, group := range groups {
		if math.IsNaN(group.Value) {
			continue
		}
		espesor, _ := group.Keys[pipeline.ColEspesor].(float64)
		tipo, _ := group.Keys[pipeline.ColTipoMecanizado].(string)
		out = append(out, storage.ProfileRow{
			TipoMecanizado: tipo,
			Espesor:        espesor,
			PerforaTotal:   group.Value,
		})
	}
	return out
}

func totals(machines []storage.MachineMetrics) storage.MachineMetrics {
	var t storage.MachineMetrics
	t.Machine = "total"
	for _, m := range machines {
		t.AvgMMPerDay += m.AvgMMPerDay
		t.TotalMM += m.TotalMM
		t.Reports += m.Reports
		t.TotalDrills += m.TotalDrills
	}
	if len(machines) > 0 {
		t.AvgMMPerDay = round2(t.AvgMMPerDay / float64(len(machines)))
	}
	t.TotalMM = round2(t.TotalMM)
	return t
}

// Periods lists every month and year between the first recorded month and
// now, for the period selectors.
func (s *Service) Periods(now time.Time) storage.Periods {
	monthSet := make(map[int]bool)
	yearSet := make(map[int]bool)

	for cursor := s.historyStart; !cursor.After(now); cursor = addMonths(cursor, 1) {
		monthSet[int(cursor.Month())] = true
		yearSet[cursor.Year()] = true
	}

	periods := storage.Periods{
		CurrentMonth: int(now.Month()),
		CurrentYear:  now.Year(),
	}
	for m := 1; m <= 12; m++ {
		if monthSet[m] {
			periods.Months = append(periods.Months, m)
		}
	}
	for y := s.historyStart.Year(); y <= now.Year(); y++ {
		if yearSet[y] {
			periods.Years = append(periods.Years, y)
		}
	}
	return periods
}

func addMonths(date time.Time, months int) time.Time {
	month := int(date.Month()) - 1 + months
	year := date.Year() + month/12
	month = month%12 + 1

	day := date.Day()
	// day 0 of the next month is the last day of this one
	if last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, date.Location()).Day(); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, date.Location())
}

func round2(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*100) / 100
}
