package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go-page-builder/internal/model"
)

// JSONStore implements ComponentStore with one JSON file per definition.
type JSONStore struct {
	// BasePath is the directory holding the *.json metadata files.
	BasePath string
	logger   *slog.Logger
}

// NewJSONStore creates the base directory if needed.
func NewJSONStore(basePath string, logger *slog.Logger) (*JSONStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", basePath, err)
	}
	return &JSONStore{BasePath: basePath, logger: logger}, nil
}

// GetBasePath returns the base path of the JSON store.
func (js *JSONStore) GetBasePath() string {
	return js.BasePath
}

func (js *JSONStore) path(id string) string {
	return filepath.Join(js.BasePath, id+".json")
}

// SaveComponent writes the definition to <id>.json.
func (js *JSONStore) SaveComponent(def *model.ComponentDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("component ID cannot be empty")
	}
	if def.Kind == model.KindBuiltin {
		return fmt.Errorf("component %s is built-in and cannot be stored", def.ID)
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal component %s: %w", def.ID, err)
	}
	filePath := js.path(def.ID)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write component file %s: %w", filePath, err)
	}
	js.logger.Debug("Saved component metadata", "path", filePath)
	return nil
}

// LoadComponent reads <id>.json. A missing file yields an error matching
// both ErrNotFound and os.ErrNotExist.
func (js *JSONStore) LoadComponent(id string) (*model.ComponentDefinition, error) {
	if id == "" {
		return nil, fmt.Errorf("component ID cannot be empty")
	}
	filePath := js.path(id)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("component %s %w: %w", id, ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to read component file %s: %w", filePath, err)
	}

	var def model.ComponentDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal component data from %s: %w", filePath, err)
	}
	def.Kind = model.KindCustom
	return &def, nil
}

// GetAllComponentIDs scans BasePath for *.json files.
func (js *JSONStore) GetAllComponentIDs() ([]string, error) {
	files, err := os.ReadDir(js.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read storage directory %s: %w", js.BasePath, err)
	}

	ids := []string{}
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".json") {
			ids = append(ids, strings.TrimSuffix(file.Name(), ".json"))
		}
	}
	return ids, nil
}

// DeleteComponent removes <id>.json. It does not touch the source directory.
func (js *JSONStore) DeleteComponent(id string) error {
	if id == "" {
		return fmt.Errorf("component ID cannot be empty")
	}
	filePath := js.path(id)

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			js.logger.Debug("Component metadata already gone", "path", filePath)
			return nil
		}
		return fmt.Errorf("failed to delete component file %s: %w", filePath, err)
	}
	js.logger.Debug("Deleted component metadata", "path", filePath)
	return nil
}

// ReadAll loads every definition. Files that vanish between listing and
// reading are skipped; any other failure aborts.
func (js *JSONStore) ReadAll() ([]*model.ComponentDefinition, error) {
	ids, err := js.GetAllComponentIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to get component IDs: %w", err)
	}

	defs := make([]*model.ComponentDefinition, 0, len(ids))
	for _, id := range ids {
		def, err := js.LoadComponent(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load component %s during ReadAll: %w", id, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
