package generate_excel

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, year, month int) ([]byte, string, error)
}

func GenerateReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.generate-report.GenerateReportExcel"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		yearStr := r.URL.Query().Get("year")
		monthStr := r.URL.Query().Get("month")

		year, err := strconv.Atoi(yearStr)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		month, err := strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			http.Error(w, "invalid month", http.StatusBadRequest)
			return
		}

		// Scan plus workbook generation; slower than a JSON endpoint.
		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		excelBytes, fileName, err := gen.GenerateExcel(ctx, year, month)
		if err != nil {
			log.Error("failed to generate excel", slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
