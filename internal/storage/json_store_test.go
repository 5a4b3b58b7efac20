package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go-page-builder/internal/model"
)

// Helper function to create a sample custom definition for testing
func createSampleComponent(id, name string) *model.ComponentDefinition {
	ts := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return &model.ComponentDefinition{
		ID:          id,
		Name:        name,
		Description: "A pricing table",
		Category:    "custom",
		Kind:        model.KindCustom,
		Schema: model.Schema{
			{Key: "title", Spec: model.PropertySpec{Type: "string", Default: model.StringValue("Plans"), Required: true}},
			{Key: "columns", Spec: model.PropertySpec{Type: "number", Default: model.NumberValue(3)}},
			{Key: "highlight", Spec: model.PropertySpec{Type: "boolean", Default: model.BoolValue(true)}},
		},
		Code:      "export default function Pricing({ title }) { return <h2>{title}</h2> }",
		Styles:    ".pricing { display: grid; }",
		Directory: filepath.Join("components", id),
		Version:   "1.0.0",
		IsActive:  true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestNewJSONStore(t *testing.T) {
	tempDir := t.TempDir()
	metadataPath := filepath.Join(tempDir, ".test_metadata")

	store, err := NewJSONStore(metadataPath, nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	if store == nil {
		t.Fatal("NewJSONStore() returned nil store")
	}

	if _, err := os.Stat(metadataPath); os.IsNotExist(err) {
		t.Errorf("NewJSONStore() did not create the base directory: %s", metadataPath)
	}
	if store.GetBasePath() != metadataPath {
		t.Errorf("GetBasePath() returned %q, want %q", store.GetBasePath(), metadataPath)
	}
}

func TestSaveLoadComponent(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), ".test_metadata"), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}

	original := createSampleComponent("pricing-123", "Pricing Table")
	if err := store.SaveComponent(original); err != nil {
		t.Fatalf("SaveComponent() failed: %v", err)
	}

	expectedFilePath := filepath.Join(store.GetBasePath(), "pricing-123.json")
	if _, err := os.Stat(expectedFilePath); os.IsNotExist(err) {
		t.Fatalf("SaveComponent() did not create the expected file: %s", expectedFilePath)
	}

	loaded, err := store.LoadComponent("pricing-123")
	if err != nil {
		t.Fatalf("LoadComponent() failed: %v", err)
	}
	if !reflect.DeepEqual(original, loaded) {
		t.Errorf("LoadComponent() does not match original.\nOriginal: %+v\nLoaded:   %+v", original, loaded)
	}
}

func TestSaveComponent_RejectsBuiltin(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	def := createSampleComponent("heading", "Heading")
	def.Kind = model.KindBuiltin
	if err := store.SaveComponent(def); err == nil {
		t.Error("SaveComponent() accepted a built-in definition")
	}
	if err := store.SaveComponent(&model.ComponentDefinition{}); err == nil {
		t.Error("SaveComponent() accepted an empty ID")
	}
}

func TestLoadComponent_NotFound(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}

	_, err = store.LoadComponent("does-not-exist-456")
	if err == nil {
		t.Fatal("LoadComponent() succeeded for non-existent ID, expected error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadComponent() returned %q, expected an error wrapping os.ErrNotExist", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadComponent() returned %q, expected an error wrapping ErrNotFound", err)
	}
}

func TestDeleteComponent(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}

	def := createSampleComponent("test-delete-789", "Delete Me")
	if err := store.SaveComponent(def); err != nil {
		t.Fatalf("Setup failed: SaveComponent() failed: %v", err)
	}

	if err := store.DeleteComponent(def.ID); err != nil {
		t.Fatalf("DeleteComponent() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.GetBasePath(), def.ID+".json")); !os.IsNotExist(err) {
		t.Fatalf("DeleteComponent() did not remove the file (stat err: %v)", err)
	}

	// Deleting again is a no-op.
	if err := store.DeleteComponent(def.ID); err != nil {
		t.Errorf("second DeleteComponent() returned %v, want nil", err)
	}
}

func TestReadAll(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}

	saved := map[string]*model.ComponentDefinition{}
	for _, id := range []string{"comp1", "comp2", "comp3"} {
		def := createSampleComponent(id, "Component "+id)
		if err := store.SaveComponent(def); err != nil {
			t.Fatalf("Setup failed: SaveComponent() failed for %s: %v", id, err)
		}
		saved[id] = def
	}
	// Non-JSON files are ignored.
	if err := os.WriteFile(filepath.Join(store.GetBasePath(), "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	loaded, err := store.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if len(loaded) != len(saved) {
		t.Fatalf("ReadAll() returned %d components, want %d", len(loaded), len(saved))
	}
	for _, def := range loaded {
		want, ok := saved[def.ID]
		if !ok {
			t.Errorf("ReadAll() returned unexpected component %s", def.ID)
			continue
		}
		if !reflect.DeepEqual(want, def) {
			t.Errorf("ReadAll() component %s mismatch.\nwant %+v\n got %+v", def.ID, want, def)
		}
	}
}

func TestGetAllComponentIDs_Empty(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	ids, err := store.GetAllComponentIDs()
	if err != nil {
		t.Fatalf("GetAllComponentIDs() failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("GetAllComponentIDs() = %v, want empty", ids)
	}
}
