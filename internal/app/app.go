// Package app assembles the core components from configuration. Both the CLI
// and the worker manager start from here.
package app

import (
	"context"
	"fmt"

	"foodlens/internal/analysis"
	"foodlens/internal/common/aws"
	"foodlens/internal/common/config"
	"foodlens/internal/common/http"
	"foodlens/internal/common/logger"
	"foodlens/internal/completion"
	"foodlens/internal/credentials"
	"foodlens/internal/enrichment"
	"foodlens/internal/profile"
	"foodlens/internal/search"
	"foodlens/internal/session"
	"foodlens/internal/store"
)

type App struct {
	Config      *config.Config
	Store       store.KeyValueStore
	FirstRun    bool
	Credentials *credentials.Manager
	Keys        credentials.Keys

	Backend      search.Backend
	Completer    completion.Completer
	Orchestrator *analysis.Orchestrator
	Records      *enrichment.Repository
	Profiles     *session.ProfileService

	// Mailer is nil unless notifications.ses.enabled is set.
	Mailer *aws.Mailer

	logger logger.Logger
}

// Build opens the store, resolves API keys and wires every component.
// Backends are constructed even without keys so that profile management
// keeps working; KeysConfigured reports whether analysis can run.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	kv, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	firstRun, err := store.EnsureInitialized(ctx, kv)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	if firstRun {
		log.Info("first run, store initialized", map[string]interface{}{"backend": cfg.Storage.Backend})
	}

	creds := credentials.NewManager(kv, credentials.Keys{
		OpenAI:  cfg.APIs.GenAI.APIKey,
		SerpAPI: cfg.APIs.WebSearch.APIKey,
	}, cfg.APIs.WebSearch.Backend == config.SearchSerpAPI, log)

	keys, err := creds.Load(ctx)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	a := &App{
		Config:      cfg,
		Store:       kv,
		FirstRun:    firstRun,
		Credentials: creds,
		Keys:        keys,
		Records:     enrichment.NewRepository(kv),
		logger:      log,
	}
	if err := a.wire(ctx, keys); err != nil {
		_ = kv.Close()
		return nil, err
	}

	if cfg.Notifications.SES.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.Notifications.SES.Region)
		if err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("ses client: %w", err)
		}
		a.Mailer = aws.NewMailer(client, cfg.Notifications.SES.FromEmail, log)
	}
	return a, nil
}

// wire (re)builds the key-dependent components.
func (a *App) wire(ctx context.Context, keys credentials.Keys) error {
	cfg := a.Config

	backend, err := search.NewBackend(ctx, cfg, keys.SerpAPI)
	if err != nil {
		return fmt.Errorf("search backend: %w", err)
	}
	searcher := search.NewSearcherForBackend(cfg, backend, a.logger)

	a.Keys = keys
	a.Backend = backend
	a.Completer = completion.NewClient(
		http.NewClient(config.GetDuration(cfg.APIs.GenAI.Timeout)),
		cfg.APIs.GenAI.BaseURL, keys.OpenAI, cfg.APIs.GenAI.Model,
	)
	a.Orchestrator = analysis.NewOrchestrator(a.Completer, a.logger)

	pipeline := enrichment.NewPipeline(searcher, a.Records, cfg.Search.AllergySuffix, a.logger)
	a.Profiles = session.NewProfileService(profile.NewRepository(a.Store, a.logger), a.Records, pipeline, a.logger)
	return nil
}

// UseKeys swaps in new API keys without reopening the store.
func (a *App) UseKeys(ctx context.Context, keys credentials.Keys) error {
	return a.wire(ctx, keys)
}

func (a *App) KeysConfigured() bool {
	return a.Credentials.Configured(a.Keys)
}

// NewController starts an interactive session over the wired components.
func (a *App) NewController() *session.Controller {
	return session.NewController(a.Profiles, a.Orchestrator, a.KeysConfigured(), a.logger)
}

func (a *App) Close() error {
	return a.Store.Close()
}
