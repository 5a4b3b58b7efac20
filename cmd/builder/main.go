package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go-page-builder/internal/catalog"
	"go-page-builder/internal/componentmanager"
	"go-page-builder/internal/composer"
	"go-page-builder/internal/config"
	"go-page-builder/internal/renderer"
	"go-page-builder/internal/storage"
	"go-page-builder/internal/templating"
)

// builderApplication holds the application-wide dependencies for the
// editing API.
type builderApplication struct {
	logger     *slog.Logger
	cfg        *config.Config
	pages      *storage.SQLiteStore
	components *componentmanager.Manager
	renderer   *renderer.Renderer
	pageEngine *templating.Engine
	builtins   catalog.BuiltinSource
	funnels    *composer.FunnelSet

	catalogMu sync.RWMutex
	catalog   *catalog.Catalog

	sessionsMu sync.Mutex
	sessions   map[string]*editSession
}

func main() {
	configPath := flag.String("config", "", "Path to the config file (default ./pagebuilder.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stdout)

	store, err := storage.NewJSONStore(cfg.Storage.MetadataDir, logger)
	if err != nil {
		logger.Error("Failed to initialize component store", "error", err)
		os.Exit(1)
	}
	pages, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to open page database", "path", cfg.Storage.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer pages.Close()

	app, err := newBuilderApplication(cfg, logger, store, pages)
	if err != nil {
		logger.Error("Failed to initialize builder", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.reloadCatalog(ctx)

	srv := &http.Server{
		Addr:              cfg.Builder.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Builder shutdown failed", "error", err)
		}
	}()

	logger.Info("Starting builder server", "address", cfg.Builder.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Builder server failed", "error", err)
		os.Exit(1)
	}
	app.closeSessions()
	logger.Info("Builder server stopped")
}

func newBuilderApplication(cfg *config.Config, logger *slog.Logger, store storage.ComponentStore, pages *storage.SQLiteStore) (*builderApplication, error) {
	builtins, err := catalog.NewEmbeddedSource()
	if err != nil {
		return nil, err
	}
	app := &builderApplication{
		logger:     logger,
		cfg:        cfg,
		pages:      pages,
		components: componentmanager.NewManager(store, logger, cfg.Storage.ComponentsDir),
		renderer:   renderer.New(logger),
		builtins:   builtins,
		funnels:    composer.DefaultFunnels(),
		catalog:    catalog.Empty(),
		sessions:   map[string]*editSession{},
	}
	app.pageEngine, err = templating.NewEngine(pages, app.definitions, app.renderer, logger)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (app *builderApplication) currentCatalog() *catalog.Catalog {
	app.catalogMu.RLock()
	defer app.catalogMu.RUnlock()
	return app.catalog
}

func (app *builderApplication) definitions() templating.Definitions {
	return app.currentCatalog()
}

func (app *builderApplication) customSource() catalog.CustomSource {
	return catalog.StoreSource{Store: app.components.Store()}
}

// reloadCatalog refetches both component lists and pushes them into every
// open editing session.
func (app *builderApplication) reloadCatalog(ctx context.Context) *catalog.Catalog {
	c := catalog.Load(ctx, app.builtins, app.customSource(), app.logger)
	app.catalogMu.Lock()
	app.catalog = c
	app.catalogMu.Unlock()

	for _, s := range app.openSessions() {
		s.engine.LoadCatalog(ctx, app.builtins, app.customSource())
		s.resetPanel()
	}
	app.logger.Info("Component catalog loaded", "builtin", len(c.Builtins()), "custom", len(c.Customs()))
	return c
}
