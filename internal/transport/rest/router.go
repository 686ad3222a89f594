package rest

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/revolv-ledger/internal/auth"
	"github.com/frahmantamala/revolv-ledger/internal/ledger"
	"github.com/frahmantamala/revolv-ledger/internal/project"
	"github.com/frahmantamala/revolv-ledger/internal/transport/middleware"
	"github.com/frahmantamala/revolv-ledger/internal/transport/swagger"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins string
	MetricsEnabled bool
	MetricsPath    string
	OpenAPIPath    string
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg RouterConfig, authHandler *auth.Handler, projectHandler *project.Handler, ledgerHandler *ledger.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	admin := middleware.RequireAdmin(logger)

	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	openAPIPath := cfg.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	if _, err := swagger.Load(context.Background(), openAPIPath); err != nil {
		logger.Warn("openapi document unavailable", "path", openAPIPath, "error", err)
	}
	router.Get(swagger.SpecURL, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	if cfg.MetricsEnabled {
		metricsPath := cfg.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		router.Handle(metricsPath, promhttp.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/projects", func(p chi.Router) {
				p.Get("/", projectHandler.ListProjects)
				p.Get("/{id}", projectHandler.GetProject)
				p.Get("/{id}/totals", ledgerHandler.ProjectTotals)
				p.Get("/{id}/proportion/{userID}", ledgerHandler.ProjectProportion)

				p.Group(func(ap chi.Router) {
					ap.Use(admin)
					ap.Post("/", projectHandler.CreateProject)
					ap.Patch("/{id}/propose", projectHandler.ProposeProject)
					ap.Patch("/{id}/deny", projectHandler.DenyProject)
					ap.Patch("/{id}/approve", projectHandler.ApproveProject)
					ap.Patch("/{id}/unapprove", projectHandler.UnapproveProject)
					ap.Patch("/{id}/complete", projectHandler.CompleteProject)
					ap.Patch("/{id}/incomplete", projectHandler.MarkProjectIncomplete)
				})
			})

			pr.Post("/payments", ledgerHandler.RecordPayment)
			pr.Get("/payments/{id}", ledgerHandler.GetPayment)
			pr.With(admin).Delete("/payments/{id}", ledgerHandler.DeletePayment)

			pr.Route("/users/{id}", func(u chi.Router) {
				u.Get("/payments", ledgerHandler.UserPayments)
				u.Get("/donations", ledgerHandler.UserDonations)
				u.Get("/reinvestments", ledgerHandler.UserReinvestments)
				u.Get("/repayments", ledgerHandler.UserRepayments)
				u.Get("/pool", ledgerHandler.UserPool)
			})

			pr.Get("/stats/donors", ledgerHandler.DonorCount)

			pr.Route("/admin", func(ar chi.Router) {
				ar.Use(admin)
				ar.Get("/pools", ledgerHandler.ListPools)

				ar.Post("/repayments", ledgerHandler.CreateAdminRepayment)
				ar.Get("/repayments", ledgerHandler.ListAdminRepayments)
				ar.Get("/repayments/{id}", ledgerHandler.GetAdminRepayment)
				ar.Delete("/repayments/{id}", ledgerHandler.DeleteAdminRepayment)

				ar.Post("/reinvestments", ledgerHandler.CreateAdminReinvestment)
				ar.Get("/reinvestments", ledgerHandler.ListAdminReinvestments)
				ar.Get("/reinvestments/{id}", ledgerHandler.GetAdminReinvestment)
				ar.Delete("/reinvestments/{id}", ledgerHandler.DeleteAdminReinvestment)
			})
		})
	})
}
