// Package componentmanager handles the lifecycle of user-authored custom
// components: boilerplate generation, metadata updates, deletion and
// re-reading source files edited on disk.
package componentmanager

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-page-builder/internal/generator"
	"go-page-builder/internal/model"
	"go-page-builder/internal/storage"
	"go-page-builder/pkg/fsutils"

	"github.com/google/uuid"
)

// ErrBuiltinReadOnly is returned for write operations that target a
// built-in component id.
var ErrBuiltinReadOnly = errors.New("built-in components are read-only")

// ErrInvalidCode is returned when component code fails validation.
var ErrInvalidCode = errors.New("invalid component code")

// Manager provides methods for managing custom components.
type Manager struct {
	store         storage.ComponentStore
	logger        *slog.Logger
	componentsDir string // Base directory holding one source folder per component
	now           func() time.Time
}

// NewManager creates a new Manager instance.
func NewManager(store storage.ComponentStore, logger *slog.Logger, componentsDir string) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		store:         store,
		logger:        logger,
		componentsDir: componentsDir,
		now:           time.Now,
	}
}

func (m *Manager) Store() storage.ComponentStore { return m.store }
func (m *Manager) ComponentsDir() string         { return m.componentsDir }

// CreateComponent generates the boilerplate for a new custom component and
// saves its metadata.
func (m *Manager) CreateComponent(name, category string) (*model.ComponentDefinition, error) {
	m.logger.Info("Creating component", "name", name, "category", category)

	id := uuid.New().String()
	def, err := generator.GenerateComponentBoilerplate(generator.DefaultGeneratorConfig(m.componentsDir), name, id, category)
	if err != nil {
		m.logger.Error("Error generating component boilerplate", "error", err, "name", name, "id", id)
		return nil, fmt.Errorf("generating component boilerplate failed: %w", err)
	}

	if err := m.store.SaveComponent(def); err != nil {
		m.logger.Error("Error saving component metadata", "error", err, "name", name, "id", id)
		return nil, fmt.Errorf("saving component metadata failed: %w", err)
	}

	m.logger.Info("Successfully created component", "name", name, "id", id, "directory", def.Directory)
	return def, nil
}

// Update lists the fields to change. Nil fields are left alone.
type Update struct {
	Name        *string
	Description *string
	Category    *string
	Code        *string
	Styles      *string
	Schema      *model.Schema
	IsPublic    *bool
}

// UpdateComponent applies u to component id. New code must pass validation;
// code and styles are also written back to the component's source files.
func (m *Manager) UpdateComponent(id string, u Update) (*model.ComponentDefinition, error) {
	if isBuiltin(id) {
		return nil, fmt.Errorf("updating %s: %w", id, ErrBuiltinReadOnly)
	}
	m.logger.Info("Updating component", "id", id)

	def, err := m.store.LoadComponent(id)
	if err != nil {
		m.logger.Error("Error loading component metadata for update", "id", id, "error", err)
		return nil, fmt.Errorf("loading component metadata failed for ID %s: %w", id, err)
	}

	if u.Code != nil {
		if res := ValidateCode(*u.Code); !res.Valid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCode, strings.Join(res.Errors, "; "))
		}
	}

	updated := false
	set := func(field *string, v *string) {
		if v != nil && *v != *field {
			*field = *v
			updated = true
		}
	}
	set(&def.Name, u.Name)
	set(&def.Description, u.Description)
	set(&def.Category, u.Category)
	set(&def.Code, u.Code)
	set(&def.Styles, u.Styles)
	if u.Schema != nil {
		def.Schema = *u.Schema
		updated = true
	}
	if u.IsPublic != nil && *u.IsPublic != def.IsPublic {
		def.IsPublic = *u.IsPublic
		updated = true
	}

	if !updated {
		m.logger.Info("No update values provided, nothing to change.", "id", id)
		return def, nil
	}

	if def.Directory != "" {
		if u.Code != nil {
			if err := fsutils.WriteToFile(filepath.Join(def.Directory, generator.CodeFile), []byte(def.Code)); err != nil {
				return nil, fmt.Errorf("writing component code: %w", err)
			}
		}
		if u.Styles != nil {
			if err := fsutils.WriteToFile(filepath.Join(def.Directory, generator.StyleFile), []byte(def.Styles)); err != nil {
				return nil, fmt.Errorf("writing component styles: %w", err)
			}
		}
	}

	def.Version = bumpPatch(def.Version)
	def.UpdatedAt = m.now()
	if err := m.store.SaveComponent(def); err != nil {
		m.logger.Error("Error saving updated component metadata", "id", id, "error", err)
		return nil, fmt.Errorf("saving updated component metadata failed for ID %s: %w", id, err)
	}

	m.logger.Info("Successfully updated component metadata", "id", id, "version", def.Version)
	return def, nil
}

// DeleteComponent removes a component from the library. A soft delete marks
// it inactive and keeps its files; force removes the source folder and the
// metadata.
func (m *Manager) DeleteComponent(id string, force bool) error {
	if isBuiltin(id) {
		return fmt.Errorf("deleting %s: %w", id, ErrBuiltinReadOnly)
	}
	m.logger.Info("Processing delete request", "id", id, "force", force)

	def, err := m.store.LoadComponent(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("Component metadata not found, cannot delete.", "id", id)
		}
		return fmt.Errorf("loading component metadata failed for ID %s: %w", id, err)
	}

	if !force {
		if !def.IsActive {
			m.logger.Info("Component is already inactive, skipping soft delete.", "id", id)
			return nil
		}
		def.IsActive = false
		def.UpdatedAt = m.now()
		if err := m.store.SaveComponent(def); err != nil {
			m.logger.Error("Error marking component inactive", "id", id, "error", err)
			return fmt.Errorf("failed to update component metadata for ID %s: %w", id, err)
		}
		m.logger.Info("Successfully marked component as removed", "id", id, "name", def.Name)
		return nil
	}

	m.logger.Warn("Performing force delete", "id", id, "name", def.Name)
	var dirErr error
	if def.Directory != "" {
		if err := fsutils.RemoveDir(def.Directory); err != nil {
			m.logger.Error("Failed to delete component directory", "path", def.Directory, "error", err)
			dirErr = err
		}
	}
	// Metadata goes even when the folder could not be removed.
	if err := m.store.DeleteComponent(id); err != nil {
		m.logger.Error("Error force deleting component metadata", "id", id, "error", err)
		return errors.Join(dirErr, fmt.Errorf("failed to delete metadata: %w", err))
	}
	if dirErr != nil {
		return dirErr
	}
	m.logger.Info("Successfully force deleted component", "id", id)
	return nil
}

// PurgeInactive force deletes every inactive component and returns how
// many were purged. Individual failures are logged and skipped.
func (m *Manager) PurgeInactive() (int, error) {
	defs, err := m.store.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("reading component metadata failed: %w", err)
	}
	purged := 0
	for _, def := range defs {
		if def.IsActive {
			continue
		}
		if err := m.DeleteComponent(def.ID, true); err != nil {
			m.logger.Error("Failed to purge component", "id", def.ID, "error", err)
			continue
		}
		purged++
	}
	m.logger.Info("Purge complete", "purged", purged)
	return purged, nil
}

// SyncSources reloads the code and styles of component id from its source
// folder, for components edited outside the builder.
func (m *Manager) SyncSources(id string) (*model.ComponentDefinition, error) {
	if isBuiltin(id) {
		return nil, fmt.Errorf("syncing %s: %w", id, ErrBuiltinReadOnly)
	}
	def, err := m.store.LoadComponent(id)
	if err != nil {
		return nil, fmt.Errorf("loading component metadata failed for ID %s: %w", id, err)
	}
	if def.Directory == "" {
		return nil, fmt.Errorf("component %s has no source directory", id)
	}

	code, styles, err := generator.ReadSources(def.Directory)
	if err != nil {
		return nil, fmt.Errorf("syncing component %s: %w", id, err)
	}
	res := ValidateCode(code)
	for _, w := range res.Warnings {
		m.logger.Warn("Component code warning", "id", id, "warning", w)
	}
	if !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCode, strings.Join(res.Errors, "; "))
	}
	if code == def.Code && styles == def.Styles {
		m.logger.Info("Component sources unchanged", "id", id)
		return def, nil
	}

	def.Code, def.Styles = code, styles
	def.Version = bumpPatch(def.Version)
	def.UpdatedAt = m.now()
	if err := m.store.SaveComponent(def); err != nil {
		return nil, fmt.Errorf("saving synced component %s: %w", id, err)
	}
	m.logger.Info("Synced component sources", "id", id, "version", def.Version)
	return def, nil
}

func isBuiltin(id string) bool {
	_, ok := model.ParseBuiltinKind(id)
	return ok
}

// bumpPatch increments the last dotted component of a version, starting
// from 1.0.0 when the version is missing or unparsable.
func bumpPatch(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "1.0.1"
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "1.0.1"
	}
	parts[2] = strconv.Itoa(n + 1)
	return strings.Join(parts, ".")
}
