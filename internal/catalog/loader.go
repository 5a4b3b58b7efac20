package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go-page-builder/internal/model"
	"go-page-builder/internal/storage"

	"github.com/sourcegraph/conc"
)

// BuiltinSource lists the built-in definitions.
type BuiltinSource interface {
	ListBuiltin(ctx context.Context) ([]model.ComponentDefinition, error)
}

// CustomSource lists the user's custom definitions.
type CustomSource interface {
	ListCustom(ctx context.Context) ([]model.ComponentDefinition, error)
}

// Load fetches both lists concurrently and waits for both. A failing source
// is logged and contributes an empty list; the other list is unaffected.
func Load(ctx context.Context, builtins BuiltinSource, customs CustomSource, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var (
		wg          conc.WaitGroup
		builtinDefs []model.ComponentDefinition
		customDefs  []model.ComponentDefinition
	)
	wg.Go(func() {
		if builtins == nil {
			return
		}
		defs, err := builtins.ListBuiltin(ctx)
		if err != nil {
			logger.Error("Failed to load built-in components", "error", err)
			return
		}
		builtinDefs = defs
	})
	wg.Go(func() {
		if customs == nil {
			return
		}
		defs, err := customs.ListCustom(ctx)
		if err != nil {
			logger.Error("Failed to load custom components", "error", err)
			return
		}
		customDefs = defs
	})
	wg.Wait()

	logger.Debug("Component catalog loaded", "builtin", len(builtinDefs), "custom", len(customDefs))
	return New(builtinDefs, customDefs)
}

// StoreSource lists active custom definitions from a component store.
type StoreSource struct {
	Store storage.ComponentStore
}

func (s StoreSource) ListCustom(ctx context.Context) ([]model.ComponentDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defs, err := s.Store.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("listing custom components: %w", err)
	}
	out := make([]model.ComponentDefinition, 0, len(defs))
	for _, d := range defs {
		if !d.IsActive {
			continue
		}
		d.Kind = model.KindCustom
		out = append(out, *d)
	}
	return out, nil
}
