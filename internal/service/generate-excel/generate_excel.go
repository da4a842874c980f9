package generate_excel

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"cnc-dashboard/internal/service/pipeline"
	"cnc-dashboard/internal/storage"
)

type GenerateExcelStorage interface {
	ScanAll(ctx context.Context) ([]storage.Item, error)
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

var exportColumns = []string{
	pipeline.ColPV,
	pipeline.ColInicio,
	pipeline.ColCantidadPerforacionesTotal,
	pipeline.ColTerminado,
	pipeline.ColCantidadPerforacionesPlacas,
	pipeline.ColKg,
	pipeline.ColTipoMecanizado,
	pipeline.ColProgressCreatedAt,
	pipeline.ColOrigen,
	pipeline.ColMaquina,
	pipeline.ColPlacas,
	pipeline.ColHoraReporte,
	pipeline.ColTiempo,
	pipeline.ColTiempoSeteo,
	pipeline.ColEspesor,
	pipeline.ColNegocio,
	pipeline.ColPerforaTotal,
	pipeline.ColTiempoProceso,
}

// GenerateExcel builds the downloadable month sheet: the period's flat rows,
// one representative row per process duration (keep-first, the export dedup
// mode, not the strict one), values only. Returns the file bytes and the
// cnc_<year>_<month>.xlsx filename.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, year, month int) ([]byte, string, error) {
	const op = "service.generate-excel.GenerateExcel"

	items, err := g.storage.ScanAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%s: fetch data: %w", op, err)
	}

	flat, _ := pipeline.Flatten(items)
	rows := pipeline.KeepFirstByDuration(pipeline.FilterByYearMonth(flat, year, month))

	f := excelize.NewFile()
	defer f.Close()
	sheet := "CNC"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	for i, name := range exportColumns {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	for rowIdx := range rows.Rows {
		r := &rows.Rows[rowIdx]
		rowNum := rowIdx + 2

		f.SetCellValue(sheet, cellName(1, rowNum), r.PV)
		setTime(f, sheet, cellName(2, rowNum), r.Inicio)
		f.SetCellValue(sheet, cellName(3, rowNum), r.CantidadPerforacionesTotal)
		setTime(f, sheet, cellName(4, rowNum), r.Terminado)
		f.SetCellValue(sheet, cellName(5, rowNum), r.CantidadPerforacionesPlacas)
		f.SetCellValue(sheet, cellName(6, rowNum), r.Kg)
		f.SetCellValue(sheet, cellName(7, rowNum), r.TipoMecanizado)
		setTime(f, sheet, cellName(8, rowNum), r.ProgressCreatedAt)
		f.SetCellValue(sheet, cellName(9, rowNum), r.Origen)
		f.SetCellValue(sheet, cellName(10, rowNum), r.Maquina)
		f.SetCellValue(sheet, cellName(11, rowNum), r.Placas)
		f.SetCellValue(sheet, cellName(12, rowNum), r.HoraReporte)
		f.SetCellValue(sheet, cellName(13, rowNum), r.Tiempo)
		f.SetCellValue(sheet, cellName(14, rowNum), r.TiempoSeteo)
		// espesor goes out as its exact decimal text
		f.SetCellValue(sheet, cellName(15, rowNum), r.Espesor.String())
		f.SetCellValue(sheet, cellName(16, rowNum), r.Negocio)
		f.SetCellValue(sheet, cellName(17, rowNum), r.PerforaTotal)
		if !math.IsNaN(r.TiempoProcesoMin) {
			f.SetCellValue(sheet, cellName(18, rowNum), r.TiempoProcesoMin)
		}
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(sheet, "A", "R", 15)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), fmt.Sprintf("cnc_%d_%d.xlsx", year, month), nil
}

// setTime leaves the cell empty for the missing-timestamp sentinel.
func setTime(f *excelize.File, sheet, cell string, ts time.Time) {
	if ts.IsZero() {
		return
	}
	f.SetCellValue(sheet, cell, ts.Format("2006-01-02 15:04:05"))
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
