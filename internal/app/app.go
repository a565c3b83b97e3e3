package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/graduation-masterpiece/demo-repository/internal/data/db"
	apphttp "github.com/graduation-masterpiece/demo-repository/internal/http"
	"github.com/graduation-masterpiece/demo-repository/internal/observability"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	return NewWithConfig(ctx, log, LoadConfig(log))
}

// NewWithConfig wires the app from an already loaded config. The database
// schema is migrated before any client is dialed.
func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	shutdown := observability.InitOTel(ctx, log, cfg.Otel)
	observability.Init(cfg.MetricsEnabled)

	dbService, err := db.NewService(cfg.DB, log)
	if err != nil {
		_ = shutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.Migrate(ctx, dbService.DB(), dbService.Driver()); err != nil {
		_ = dbService.Close()
		_ = shutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	theDB := dbService.DB()

	clientset, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbService.Close()
		_ = shutdown(ctx)
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, clientset, reposet)
	server := wireServer(log, cfg, theDB, clientset, serviceset)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Clients:      clientset,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		dbService:    dbService,
		otelShutdown: shutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := listenAddress(a.Cfg.Port)
	a.Log.Info("Starting HTTP server", "address", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Services.Close()
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
