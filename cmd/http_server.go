package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/revolv-ledger/internal/auth"
	"github.com/frahmantamala/revolv-ledger/internal/ledger"
	"github.com/frahmantamala/revolv-ledger/internal/project"
	"github.com/frahmantamala/revolv-ledger/internal/transport"
	"github.com/frahmantamala/revolv-ledger/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	app, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	setupRoutes(app, router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			_ = app.Close()
			os.Exit(1)
		}
	}

	if err := app.Close(); err != nil {
		slog.Error("Database close error", "error", err)
	}
	slog.Info("Server stopped")
}

func setupRoutes(app *App, router *chi.Mux) {
	tokens := auth.NewJWTTokenGenerator(app.Config.Security.JWTSecret, app.Config.Security.AccessTokenDuration)
	base := transport.NewBaseHandler(app.Logger)

	rest.RegisterAllRoutes(router, app.DB.DB,
		rest.RouterConfig{
			AllowedOrigins: app.Config.Server.AllowedOrigins,
			MetricsEnabled: app.Config.Observability.Metrics.Enabled,
			MetricsPath:    app.Config.Observability.Metrics.Path,
		},
		auth.NewHandler(tokens),
		project.NewHandler(base, app.Projects),
		ledger.NewHandler(app.Ledger),
		app.Logger,
	)
}
