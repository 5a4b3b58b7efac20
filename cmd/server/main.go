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
	"go-page-builder/internal/config"
	"go-page-builder/internal/exitintent"
	"go-page-builder/internal/renderer"
	"go-page-builder/internal/storage"
	"go-page-builder/internal/templating"
)

// application holds the application-wide dependencies of the page server.
type application struct {
	logger     *slog.Logger
	cfg        *config.Config
	pageEngine *templating.Engine
	builtins   catalog.BuiltinSource
	customs    catalog.CustomSource
	clock      exitintent.Clock

	catalogMu sync.RWMutex
	catalog   *catalog.Catalog

	visitorsMu sync.Mutex
	visitors   map[string]*visitor
}

func main() {
	configPath := flag.String("config", "", "Path to the config file (default ./pagebuilder.yaml)")
	addr := flag.String("addr", "", "Listen address, overrides server.addr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
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

	app, err := newApplication(cfg, logger, pages, catalog.StoreSource{Store: store}, exitintent.SystemClock)
	if err != nil {
		logger.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.refreshCatalog(ctx)
	go app.janitor(ctx, cfg.Server.SessionTTL/2)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
	}()

	logger.Info("Starting page server", "address", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
	logger.Info("Page server stopped", "evicted", app.sweep(time.Time{}))
}

func newApplication(cfg *config.Config, logger *slog.Logger, pages storage.PageStore, customs catalog.CustomSource, clock exitintent.Clock) (*application, error) {
	builtins, err := catalog.NewEmbeddedSource()
	if err != nil {
		return nil, err
	}
	app := &application{
		logger:   logger,
		cfg:      cfg,
		builtins: builtins,
		customs:  customs,
		clock:    clock,
		catalog:  catalog.Empty(),
		visitors: map[string]*visitor{},
	}
	app.pageEngine, err = templating.NewEngine(pages, app.definitions, renderer.New(logger), logger)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (app *application) definitions() templating.Definitions {
	app.catalogMu.RLock()
	defer app.catalogMu.RUnlock()
	return app.catalog
}

// refreshCatalog reloads the component definitions used for rendering.
func (app *application) refreshCatalog(ctx context.Context) {
	c := catalog.Load(ctx, app.builtins, app.customs, app.logger)
	app.catalogMu.Lock()
	app.catalog = c
	app.catalogMu.Unlock()
	app.logger.Debug("Catalog refreshed", "components", c.Len())
}

// janitor evicts idle visitors and refreshes the catalog every interval
// until ctx is done.
func (app *application) janitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.sweep(app.clock.Now()); n > 0 {
				app.logger.Info("Evicted idle visitors", "count", n)
			}
			app.refreshCatalog(ctx)
		}
	}
}
