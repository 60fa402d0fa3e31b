// Package app initializes and holds long-lived application services,
// acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dharani043/result-bot/internal/bot"
	"github.com/dharani043/result-bot/internal/config"
	"github.com/dharani043/result-bot/internal/cursor"
	"github.com/dharani043/result-bot/internal/fetch"
	"github.com/dharani043/result-bot/internal/metrics"
	"github.com/dharani043/result-bot/internal/monitor"
	"github.com/dharani043/result-bot/internal/portal"
	"github.com/dharani043/result-bot/internal/registry"
	"github.com/dharani043/result-bot/internal/telegram"
)

// App holds the shared, long-lived services. It is initialized once at
// startup and handed to the commands that need it.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	store    monitor.Store
	registry *registry.Registry
	prober   *portal.Prober
	pinger   *portal.Pinger
	client   *telegram.Client
	cursor   *cursor.FileStore
	stop     *monitor.StopSignal
}

// New builds every service from config, failing fast if any critical
// one cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	prober, err := portal.NewProber(portal.Config{
		URL:         cfg.Portal.URL,
		Timeout:     cfg.ProbeTimeout(),
		SettleDelay: cfg.SettleDelay(),
		UserAgent:   cfg.Portal.UserAgent,
	}, logger.Named("portal"))
	if err != nil {
		store.Close() //nolint:errcheck
		return nil, fmt.Errorf("init prober: %w", err)
	}

	pinger, err := portal.NewPinger(portal.PingConfig{
		URL:       cfg.Portal.URL,
		Timeout:   time.Duration(cfg.Portal.PingTimeout) * time.Second,
		UserAgent: cfg.Portal.UserAgent,
	})
	if err != nil {
		prober.Close()
		store.Close() //nolint:errcheck
		return nil, fmt.Errorf("init pinger: %w", err)
	}

	client, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		BaseURL:     cfg.Telegram.BaseURL,
		SendTimeout: time.Duration(cfg.Telegram.SendTimeoutSec) * time.Second,
		PollTimeout: time.Duration(cfg.Telegram.PollTimeoutSec) * time.Second,
	}, logger.Named("telegram"))
	if err != nil {
		prober.Close()
		store.Close() //nolint:errcheck
		return nil, fmt.Errorf("init telegram client: %w", err)
	}

	cur, err := cursor.NewFileStore(cfg.Registry.CursorPath)
	if err != nil {
		prober.Close()
		store.Close() //nolint:errcheck
		return nil, fmt.Errorf("init cursor store: %w", err)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: registry.New(store),
		prober:   prober,
		pinger:   pinger,
		client:   client,
		cursor:   cur,
		stop:     &monitor.StopSignal{},
	}, nil
}

func newStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (monitor.Store, error) {
	switch cfg.Registry.Store {
	case "file":
		logger.Info("using file registry store", zap.String("path", cfg.Registry.Path))
		store, err := registry.NewFileStore(cfg.Registry.Path)
		if err != nil {
			return nil, fmt.Errorf("init file store: %w", err)
		}
		return store, nil
	case "postgres":
		logger.Info("using postgres registry store", zap.String("table", cfg.Registry.Table))
		store, err := registry.NewPostgresStore(ctx, registry.PostgresConfig{
			DSN:   cfg.Registry.DSN,
			Table: cfg.Registry.Table,
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown registry store: %s", cfg.Registry.Store)
	}
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Registry exposes the subscriber registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Notifier returns the chat transport used for outbound messages.
func (a *App) Notifier() monitor.Notifier { return a.client }

// Sweeper assembles the sweep controller.
func (a *App) Sweeper() *bot.Sweeper {
	orchestrator := fetch.New(a.prober, a.cfg.Fetch.Concurrency, a.logger.Named("fetch"))
	return bot.NewSweeper(
		a.registry,
		orchestrator,
		a.client,
		a.stop,
		a.cfg.Telegram.AdminChatID,
		a.cfg.Fetch.BatchSize,
		a.logger.Named("sweep"),
	)
}

// Dispatcher assembles the command dispatcher around the sweeper.
func (a *App) Dispatcher(sweeper *bot.Sweeper) (*bot.Dispatcher, error) {
	health := bot.NewHealthChecker(a.registry, a.prober, a.pinger, a.logger.Named("health"))
	return bot.NewDispatcher(
		a.client,
		a.cursor,
		a.registry,
		a.client,
		sweeper,
		health,
		a.stop,
		a.cfg.Telegram.AdminChatID,
		a.cfg.SweepInterval(),
		a.logger.Named("commands"),
	)
}

// Runner assembles the outer loop.
func (a *App) Runner() (*bot.Runner, error) {
	sweeper := a.Sweeper()
	dispatcher, err := a.Dispatcher(sweeper)
	if err != nil {
		return nil, fmt.Errorf("init dispatcher: %w", err)
	}
	return bot.NewRunner(
		dispatcher,
		sweeper,
		a.cfg.SweepInterval(),
		a.cfg.DrainInterval(),
		a.logger.Named("runner"),
	), nil
}

// Close releases browser and store resources.
func (a *App) Close() {
	if a.prober != nil {
		a.prober.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store failed", zap.Error(err))
		}
	}
}
