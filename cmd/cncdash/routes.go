package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getdashboard "cnc-dashboard/http-server/dashboard/get"
	generate_excel "cnc-dashboard/http-server/generate-report/generate-excel"
	getperiods "cnc-dashboard/http-server/periods/get"
	"cnc-dashboard/internal/config"
	generate_excel2 "cnc-dashboard/internal/service/generate-excel"
	"cnc-dashboard/internal/service/report"
)

func routes(cfg config.Config, log *slog.Logger, reportService *report.Service, genService *generate_excel2.GenerateExcelService) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.FrontendOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// selectors for the sidebar
	router.Get("/api/periods", getperiods.GetPeriods(log, reportService))

	// the full KPI/grid/business bundle for one month
	router.Get("/api/dashboard", getdashboard.GetDashboard(log, reportService))

	// downloadable month sheet
	router.Get("/api/report/excel", generate_excel.GenerateReportExcel(log, genService))

	return router
}
