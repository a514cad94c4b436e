package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/novadlp/nova-console/internal/admin"
	"github.com/novadlp/nova-console/internal/catalog"
	"github.com/novadlp/nova-console/internal/config"
	httpapp "github.com/novadlp/nova-console/internal/http"
	"github.com/novadlp/nova-console/internal/http/handlers"
	"github.com/novadlp/nova-console/internal/integrations"
	"github.com/novadlp/nova-console/internal/labels"
	"github.com/novadlp/nova-console/internal/logging"
	"github.com/novadlp/nova-console/internal/metrics"
	"github.com/novadlp/nova-console/internal/rules/store"
	"github.com/novadlp/nova-console/internal/seed"
	"github.com/novadlp/nova-console/internal/tags"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const sessionCookieName = "nova_session"

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the console HTTP server.",
	Args:        cobra.NoArgs,
	Annotations: structuredLogging(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := buildHandlers(cfg)
	if err != nil {
		return err
	}
	h.ObserveRuleCounts()

	var watcher *catalog.Watcher
	if cfg.CatalogPath != "" {
		watcher, err = catalog.NewWatcher(h.Catalog, cfg.CatalogPath, logging.Component(logger, "catalog"))
		if err != nil {
			return err
		}
	}

	srv := httpapp.NewEchoServer(h, logging.Component(logger, "http"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTPAddr, "seed_data", cfg.SeedData)
		return srv.Run(gctx, cfg.HTTPAddr)
	})
	if cfg.MetricsEnabled() {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.MetricsAddr, logging.Component(logger, "metrics"))
		})
	}
	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	return g.Wait()
}

func buildHandlers(cfg config.Config) (*handlers.Handlers, error) {
	load := seed.Empty
	if cfg.SeedData {
		load = seed.Load
	}
	data, err := load()
	if err != nil {
		return nil, err
	}

	labelStore, err := labels.New(data.Labels)
	if err != nil {
		return nil, err
	}
	tagStore, err := tags.New(data.Tags)
	if err != nil {
		return nil, err
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
	}

	return &handlers.Handlers{
		Cfg:          cfg,
		Rules:        store.New(data.Rules),
		Labels:       labelStore,
		Tags:         tagStore,
		Catalog:      catalog.NewHolder(cat),
		Integrations: integrations.New(data.Integrations),
		Consent:      integrations.GrantAll(),
		Sites:        integrations.StaticSites(data.SharePointSites),
		Admin:        admin.NewDirectory(data.Roles, data.Admins),
		Sessions:     newSessionManager(cfg),
		Now:          time.Now,
	}, nil
}

func newSessionManager(cfg config.Config) *scs.SessionManager {
	sessions := scs.New()
	sessions.Lifetime = cfg.SessionLifetime
	sessions.Cookie.Name = sessionCookieName
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.Secure = cfg.SessionCookieSecure
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	return sessions
}
