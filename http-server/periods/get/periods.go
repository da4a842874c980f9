package get

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"cnc-dashboard/internal/storage"
)

type ResponsePeriods struct {
	Periods storage.Periods `json:"periods"`
	Status  string          `json:"status"`
}

type PeriodsProvider interface {
	Periods(now time.Time) storage.Periods
}

// GetPeriods returns the selectable months/years for the sidebar selectors.
func GetPeriods(log *slog.Logger, provider PeriodsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.periods.get.GetPeriods"

		log.Debug("periods requested",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		render.JSON(w, r, ResponsePeriods{
			Periods: provider.Periods(time.Now()),
			Status:  strconv.Itoa(http.StatusOK),
		})
	}
}
