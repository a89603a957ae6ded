// Package app builds the service graph shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/edwinlov3tt/report-ai-sub000/internal/cache"
	"github.com/edwinlov3tt/report-ai-sub000/internal/config"
	"github.com/edwinlov3tt/report-ai-sub000/internal/llm"
	"github.com/edwinlov3tt/report-ai-sub000/internal/lumina"
	"github.com/edwinlov3tt/report-ai-sub000/internal/matcher"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
	"github.com/edwinlov3tt/report-ai-sub000/internal/report"
	"github.com/edwinlov3tt/report-ai-sub000/internal/resolver"
	"github.com/edwinlov3tt/report-ai-sub000/internal/schema"
	"github.com/edwinlov3tt/report-ai-sub000/internal/sections"
	"github.com/edwinlov3tt/report-ai-sub000/internal/settings"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// Options tune how the graph is built.
type Options struct {
	// Migrate applies pending migrations after opening the database.
	Migrate bool
	// Lookup overrides how provider keys are read. Defaults to the process
	// environment.
	Lookup llm.LookupFunc
}

// App holds every service. Store, Settings and Schema are nil when no
// database is configured.
type App struct {
	Config   *config.Config
	Logger   *observability.Logger
	Store    *storage.Store
	Cache    cache.Client
	Settings *settings.Service
	Sections sections.Store
	Resolver *resolver.Resolver
	Schema   *schema.Service
	Models   *llm.Registry
	LLM      *llm.Client
	Pipeline *report.Pipeline
	Lumina   *lumina.Service

	closers []func() error
}

// New wires the services described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *observability.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	a := &App{Config: cfg, Logger: logger}

	if err := a.openStore(ctx, opts.Migrate); err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.openCache(); err != nil {
		_ = a.Close()
		return nil, err
	}

	var settingsSrc resolver.SettingsSource
	if a.Store != nil {
		a.Settings = settings.NewService(a.Store.Settings, a.Cache, cfg.Cache.TTL, logger)
		a.Schema = schema.NewService(a.Store, logger)
		a.Sections = sections.NewDBStore(a.Store)
		settingsSrc = a.Settings
	} else {
		a.Sections = sections.NewFileStore(cfg.Sections.FilePath)
		logger.Warn().Str("path", cfg.Sections.FilePath).Msg("No database configured, report sections use the file store")
	}
	a.Resolver = resolver.New(a.Sections, settingsSrc, a.Store)

	a.Models = llm.NewRegistry(llm.DefaultModels(), opts.Lookup)
	a.LLM = llm.NewClient(llm.Config{
		DefaultModel:      cfg.AI.DefaultModel,
		Timeout:           cfg.AI.RequestTimeout,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		AnthropicEndpoint: cfg.AI.AnthropicEndpoint,
		GoogleEndpoint:    cfg.AI.GoogleEndpoint,
		OpenAIEndpoint:    cfg.AI.OpenAIEndpoint,
	}, a.Models, logger)

	a.Pipeline = report.NewPipeline(report.Options{
		LLM:      a.LLM,
		Resolver: a.Resolver,
		Tables:   a.Tables,
		Store:    a.Store,
		Defaults: report.Defaults{
			Tone:        cfg.AI.DefaultTone,
			Temperature: cfg.AI.Temperature,
		},
		Logger: logger,
	})

	luminaClient, err := lumina.NewClient(lumina.Config{
		BaseURL: cfg.Lumina.BaseURL,
		APIKey:  cfg.Lumina.APIKey,
		Timeout: cfg.Lumina.Timeout,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Lumina client disabled")
	} else {
		a.Lumina = lumina.NewService(luminaClient, a.Store, logger)
	}

	for _, m := range a.Models.Statuses() {
		logger.Debug().Str("model", m.ID).Bool("configured", m.Configured).Msg("Model registered")
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context, migrate bool) error {
	cfg := a.Config
	if !cfg.HasDatabase() {
		return nil
	}

	pool := storage.PoolConfig{MaxOpenConns: cfg.Database.SQLite.MaxOpenConns}
	if cfg.Database.Driver == "postgres" {
		pool = storage.PoolConfig{
			MaxOpenConns:    cfg.Database.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Database.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.Postgres.ConnMaxLifetime,
		}
	}

	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN(), pool)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.Database.Driver, err)
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	if !migrate {
		return nil
	}
	status, err := storage.NewMigrator(store).Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.Logger.Info().
		Str("driver", cfg.Database.Driver).
		Int("applied", len(status.Applied)).
		Int("total", status.Total).
		Msg("Database ready")
	return nil
}

func (a *App) openCache() error {
	if a.Config.Cache.Driver == "redis" {
		rc := a.Config.Cache.Redis
		c, err := cache.NewRedisClient(cache.RedisConfig{
			URL:      rc.URL,
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			PoolSize: rc.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		a.Cache = c
	} else {
		a.Cache = cache.NewMemoryClient(0, 0)
	}
	a.closers = append(a.closers, a.Cache.Close)
	return nil
}

// Tables lists configured tactic tables for file matching. Without a
// database there is nothing to match against.
func (a *App) Tables(ctx context.Context) ([]matcher.ProductTables, error) {
	if a.Schema == nil {
		return nil, nil
	}
	tree, err := a.Schema.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return matcher.TablesFromTree(tree), nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
