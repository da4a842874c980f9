package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"cnc-dashboard/internal/storage"
)

type ResponseDashboard struct {
	Report *storage.DashboardReport `json:"report,omitempty"`
	Status string                   `json:"status"`
	Error  string                   `json:"error,omitempty"`
}

type DashboardProvider interface {
	Dashboard(ctx context.Context, year, month int) (*storage.DashboardReport, error)
}

func GetDashboard(log *slog.Logger, provider DashboardProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.dashboard.get.GetDashboard"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		year, month, ok := parsePeriod(log, w, r)
		if !ok {
			return
		}

		// Full-history scan plus recompute; give it more room than a
		// plain lookup would get.
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		report, err := provider.Dashboard(ctx, year, month)
		if err != nil {
			log.Error("failed to build dashboard", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseDashboard{Error: "No se pudo generar el reporte"})
			return
		}

		render.JSON(w, r, ResponseDashboard{
			Report: report,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}

// parsePeriod validates the year/month selectors shared by the report
// endpoints. An invalid period is a client error, not an empty report.
func parsePeriod(log *slog.Logger, w http.ResponseWriter, r *http.Request) (int, int, bool) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")

	if yearStr == "" || monthStr == "" {
		log.Error("Missing year or month in query parameters")
		http.Error(w, "Missing year or month", http.StatusBadRequest)
		return 0, 0, false
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		log.Error("Invalid year", slog.String("error", err.Error()))
		http.Error(w, "Invalid year", http.StatusBadRequest)
		return 0, 0, false
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		log.Error("Invalid month", slog.String("month", monthStr))
		http.Error(w, "Invalid month", http.StatusBadRequest)
		return 0, 0, false
	}

	return year, month, true
}
