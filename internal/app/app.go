package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/data/db"
	apphttp "github.com/yungbote/brandlens-backend/internal/http"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    Repos
	Services Services

	dbService    *db.Service
	flushSentry  func()
	shutdownOtel func(context.Context) error
	cancel       context.CancelFunc
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
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	a := &App{Log: log, Cfg: cfg}
	a.flushSentry = observability.InitSentry(log, cfg.Sentry)
	a.shutdownOtel = observability.InitOTel(ctx, log, cfg.Otel)
	a.Metrics = observability.Init(log)

	a.dbService, err = db.NewService(cfg.DB, log)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(a.dbService.DB()); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	a.DB = a.dbService.DB()

	a.Clients, err = wireClients(ctx, log, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Repos = wireRepos(a.DB, log)
	a.Services, err = wireServices(a.DB, log, cfg, a.Metrics, a.Clients, a.Repos)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Server = wireServer(a.DB, log, cfg, a.Metrics, a.Services)
	return a, nil
}

// Start launches the scheduler. Scheduled cycles run under a context that is
// cancelled by Close.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if err := a.Services.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	return nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	a.Log.Info("server listening", "addr", addr)
	return a.Server.Run(addr)
}

// Close stops intake first, then waits for running cycles before releasing
// clients and the database. ctx bounds the whole shutdown.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown failed", "error", err)
		}
	}
	if a.Services.Scheduler != nil {
		stopped := a.Services.Scheduler.Stop()
		select {
		case <-stopped.Done():
		case <-ctx.Done():
			a.Log.Warn("scheduler did not drain before shutdown deadline")
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.shutdownOtel != nil {
		_ = a.shutdownOtel(ctx)
	}
	if a.flushSentry != nil {
		a.flushSentry()
	}
	a.Log.Sync()
}
