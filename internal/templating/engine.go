package templating

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"

	"go-page-builder/internal/model"
	"go-page-builder/internal/renderer"
	"go-page-builder/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static serves the browser assets the page layout references, rooted so
// that "exit-intent.js" is at the top level.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// ErrNotPublished is returned when a published page was required.
var ErrNotPublished = errors.New("page is not published")

// Definitions resolves catalog ids. *catalog.Catalog satisfies it.
type Definitions interface {
	Lookup(id string) (*model.ComponentDefinition, bool)
}

// PageData is the data the "page" layout executes with.
type PageData struct {
	Page *model.Page
	Body template.HTML
	// Preview marks editor previews, which may show unpublished pages.
	Preview   bool
	SessionID string
	// ScriptURL and ExitIntentURL wire the exit-intent shim. Both empty
	// renders a static page.
	ScriptURL     string
	ExitIntentURL string
}

// Engine assembles full pages from stored content structures.
type Engine struct {
	pages    storage.PageStore
	defs     func() Definitions
	renderer *renderer.Renderer
	layout   *template.Template
	logger   *slog.Logger
}

// NewEngine creates a page engine. defs is called on every render so a
// reloaded catalog is picked up.
func NewEngine(pages storage.PageStore, defs func() Definitions, r *renderer.Renderer, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	layout, err := template.New("layout").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page layout: %w", err)
	}
	return &Engine{pages: pages, defs: defs, renderer: r, layout: layout, logger: logger}, nil
}

func (e *Engine) Renderer() *renderer.Renderer { return e.renderer }

// LoadPage fetches a page, refusing unpublished pages when
// requirePublished is set.
func (e *Engine) LoadPage(ctx context.Context, pageID string, requirePublished bool) (*model.Page, error) {
	page, err := e.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", pageID, err)
	}
	if requirePublished && !page.IsPublished {
		return nil, fmt.Errorf("cannot render page %s: %w", pageID, ErrNotPublished)
	}
	return page, nil
}

// Resolve pairs each instance with its definition. Instances whose
// definition is gone are dropped from the published output.
func (e *Engine) Resolve(content model.ContentStructure) []renderer.ResolvedInstance {
	defs := e.defs()
	out := make([]renderer.ResolvedInstance, 0, len(content.Components))
	for _, inst := range content.Components {
		def, ok := defs.Lookup(inst.ComponentID)
		if !ok {
			e.logger.Warn("Skipping instance with unknown component", "instance", inst.ID, "component", inst.ComponentID)
			continue
		}
		out = append(out, renderer.ResolvedInstance{Instance: inst, Definition: def})
	}
	return out
}

// RenderPage renders a page as a static document. Exit-intent detectors
// are not attached; use Mount for a live page.
func (e *Engine) RenderPage(ctx context.Context, pageID string, requirePublished bool) (string, error) {
	page, err := e.LoadPage(ctx, pageID, requirePublished)
	if err != nil {
		return "", err
	}
	m := e.Mount(page, renderer.MountOptions{})
	defer m.Unmount()
	return e.Document(PageData{Page: page, Body: m.Render(), Preview: !requirePublished})
}

// Mount resolves and mounts a page's content with live detectors.
func (e *Engine) Mount(page *model.Page, opts renderer.MountOptions) *renderer.Mount {
	return e.renderer.Mount(e.Resolve(page.Content), opts)
}

// Document executes the "page" layout.
func (e *Engine) Document(data PageData) (string, error) {
	var buf bytes.Buffer
	if err := e.layout.ExecuteTemplate(&buf, "page", data); err != nil {
		return "", fmt.Errorf("failed to execute template 'page' for page %s: %w", data.Page.ID, err)
	}
	return buf.String(), nil
}
