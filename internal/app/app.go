package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/learnsphere-backend/internal/data/db"
	"github.com/yungbote/learnsphere-backend/internal/http"
	"github.com/yungbote/learnsphere-backend/internal/jobs"
	"github.com/yungbote/learnsphere-backend/internal/observability"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
)

// Base is what every command needs: a logger, the loaded config and an open database.
type Base struct {
	Log *logger.Logger
	Cfg Config
	db  *db.Service
}

// Bootstrap builds the logger, loads config and opens the configured database.
func Bootstrap() (*Base, error) {
	mode := strings.TrimSpace(os.Getenv("LOG_MODE"))
	if mode == "" {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg := LoadConfig(log)
	if !strings.EqualFold(cfg.LogMode, mode) {
		if relog, err := logger.New(cfg.LogMode); err == nil {
			log.Sync()
			log = relog
		}
	}

	dbs, err := db.NewService(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	return &Base{Log: log, Cfg: cfg, db: dbs}, nil
}

func (b *Base) DB() *gorm.DB { return b.db.DB() }

func (b *Base) Migrate() error {
	b.Log.Info("Running auto-migrations...")
	return db.AutoMigrateAll(b.db.DB())
}

func (b *Base) Close() {
	if b == nil {
		return
	}
	if err := b.db.Close(); err != nil {
		b.Log.Warn("Failed to close database", "error", err)
	}
	b.Log.Sync()
}

type App struct {
	*Base
	Repos    Repos
	Services Services
	Clients  Clients
	Server   *http.Server
	Jobs     *jobs.Runner

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	base, err := Bootstrap()
	if err != nil {
		return nil, err
	}
	log, cfg := base.Log, base.Cfg

	if err := base.Migrate(); err != nil {
		base.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		base.Close()
		return nil, err
	}

	theDB := base.DB()
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients)
	handlerset := wireHandlers(log, theDB, cfg, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	runner := jobs.NewRunner(log,
		jobs.NewTokenPurge(log, reposet.UserToken),
		jobs.NewOrphanSweep(log, clients.Store, reposet.Document),
	)

	return &App{
		Base:         base,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Server:       server,
		Jobs:         runner,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the scheduled maintenance jobs.
func (a *App) Start(ctx context.Context) error {
	return a.Jobs.Start(ctx)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context, addr string) error {
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Jobs.Stop()
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Base.Close()
}
