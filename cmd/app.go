package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/core/events"
	"github.com/frahmantamala/revolv-ledger/internal/ledger"
	ledgerPostgres "github.com/frahmantamala/revolv-ledger/internal/ledger/postgres"
	"github.com/frahmantamala/revolv-ledger/internal/project"
	projectPostgres "github.com/frahmantamala/revolv-ledger/internal/project/postgres"
	"github.com/frahmantamala/revolv-ledger/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// App holds the wired services shared by the server, seed and pool commands.
type App struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	EventBus *events.EventBus
	Logger   *slog.Logger

	Projects *project.Service
	Ledger   *ledger.Service
}

func newApp(cfg *internal.Config) (*App, error) {
	lg := logger.L()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := openGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	subscribeLedgerEvents(bus, lg)

	projects := project.NewService(projectPostgres.NewProjectRepository(gdb), lg)
	ledgerSvc := ledger.NewService(
		ledgerPostgres.NewLedgerRepository(gdb),
		projects,
		bus,
		lg,
		ledger.Config{
			RejectOverdrawnReinvestment: cfg.Ledger.RejectOverdrawnReinvestment,
			OperationTimeout:            cfg.Ledger.OperationTimeout,
		},
	)

	return &App{
		Config:   cfg,
		DB:       db,
		Gorm:     gdb,
		EventBus: bus,
		Logger:   lg,
		Projects: projects,
		Ledger:   ledgerSvc,
	}, nil
}

// Close drains pending event handlers before closing the pool.
func (a *App) Close() error {
	a.EventBus.Wait()
	return a.DB.Close()
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// openGorm shares the sqlx pool with gorm so both see one set of limits.
func openGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}

func subscribeLedgerEvents(bus *events.EventBus, lg *slog.Logger) {
	bus.SubscribeMany(func(ctx context.Context, event events.Event) error {
		lg.Info("ledger event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	}, events.LedgerEventTypes...)
}
