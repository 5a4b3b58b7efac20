package componentmanager

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go-page-builder/internal/generator"
	"go-page-builder/internal/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewJSONStore(filepath.Join(root, "data"), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	return NewManager(store, nil, filepath.Join(root, "components"))
}

func ptr[T any](v T) *T { return &v }

func TestCreateComponent(t *testing.T) {
	m := newTestManager(t)
	def, err := m.CreateComponent("Pricing Table", "Marketing")
	if err != nil {
		t.Fatalf("CreateComponent() error = %v", err)
	}
	if def.Category != "Marketing" || !def.IsActive {
		t.Errorf("def = %+v", def)
	}
	if _, err := os.Stat(filepath.Join(def.Directory, generator.CodeFile)); err != nil {
		t.Errorf("component source not written: %v", err)
	}

	loaded, err := m.Store().LoadComponent(def.ID)
	if err != nil {
		t.Fatalf("LoadComponent() error = %v", err)
	}
	if loaded.Name != "Pricing Table" || loaded.Code != def.Code {
		t.Errorf("stored definition = %+v", loaded)
	}
}

func TestUpdateComponent(t *testing.T) {
	m := newTestManager(t)
	def, _ := m.CreateComponent("Banner", "")

	code := "const Banner = () => <div>Sale</div>"
	got, err := m.UpdateComponent(def.ID, Update{
		Name:     ptr("Sale Banner"),
		Code:     &code,
		IsPublic: ptr(true),
	})
	if err != nil {
		t.Fatalf("UpdateComponent() error = %v", err)
	}
	if got.Name != "Sale Banner" || got.Code != code || !got.IsPublic {
		t.Errorf("updated = %+v", got)
	}
	if got.Version != "1.0.1" {
		t.Errorf("Version = %q, want 1.0.1", got.Version)
	}
	onDisk, _ := os.ReadFile(filepath.Join(def.Directory, generator.CodeFile))
	if string(onDisk) != code {
		t.Errorf("source file = %q", onDisk)
	}

	same, err := m.UpdateComponent(def.ID, Update{Name: ptr("Sale Banner")})
	if err != nil || same.Version != "1.0.1" {
		t.Errorf("no-op update bumped version: %v %v", same.Version, err)
	}
}

func TestUpdateComponentRejectsInvalidCode(t *testing.T) {
	m := newTestManager(t)
	def, _ := m.CreateComponent("Banner", "")

	_, err := m.UpdateComponent(def.ID, Update{Code: ptr("   ")})
	if !errors.Is(err, ErrInvalidCode) {
		t.Errorf("err = %v, want ErrInvalidCode", err)
	}
	loaded, _ := m.Store().LoadComponent(def.ID)
	if loaded.Code != def.Code {
		t.Errorf("invalid code was stored")
	}
}

func TestBuiltinIDsAreReadOnly(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.UpdateComponent("hero-classic", Update{Name: ptr("x")}); !errors.Is(err, ErrBuiltinReadOnly) {
		t.Errorf("update: err = %v", err)
	}
	if err := m.DeleteComponent("text-block", true); !errors.Is(err, ErrBuiltinReadOnly) {
		t.Errorf("delete: err = %v", err)
	}
	if _, err := m.SyncSources("heading"); !errors.Is(err, ErrBuiltinReadOnly) {
		t.Errorf("sync: err = %v", err)
	}
}

func TestDeleteComponent(t *testing.T) {
	m := newTestManager(t)
	def, _ := m.CreateComponent("Banner", "")

	if err := m.DeleteComponent(def.ID, false); err != nil {
		t.Fatalf("soft DeleteComponent() error = %v", err)
	}
	loaded, err := m.Store().LoadComponent(def.ID)
	if err != nil {
		t.Fatalf("metadata removed by soft delete: %v", err)
	}
	if loaded.IsActive {
		t.Errorf("soft delete left the component active")
	}
	if _, err := os.Stat(def.Directory); err != nil {
		t.Errorf("soft delete removed the source folder")
	}
	if err := m.DeleteComponent(def.ID, false); err != nil {
		t.Errorf("second soft delete error = %v", err)
	}

	if err := m.DeleteComponent(def.ID, true); err != nil {
		t.Fatalf("force DeleteComponent() error = %v", err)
	}
	if _, err := os.Stat(def.Directory); !os.IsNotExist(err) {
		t.Errorf("force delete left the source folder")
	}
	if _, err := m.Store().LoadComponent(def.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("force delete left metadata: %v", err)
	}

	if err := m.DeleteComponent("missing", false); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing component: err = %v", err)
	}
}

func TestPurgeInactive(t *testing.T) {
	m := newTestManager(t)
	keep, _ := m.CreateComponent("Keep", "")
	drop, _ := m.CreateComponent("Drop", "")
	m.DeleteComponent(drop.ID, false)

	n, err := m.PurgeInactive()
	if err != nil || n != 1 {
		t.Fatalf("PurgeInactive() = %d, %v", n, err)
	}
	ids, _ := m.Store().GetAllComponentIDs()
	if !reflect.DeepEqual(ids, []string{keep.ID}) {
		t.Errorf("remaining = %v", ids)
	}
}

func TestSyncSources(t *testing.T) {
	m := newTestManager(t)
	def, _ := m.CreateComponent("Banner", "")

	unchanged, err := m.SyncSources(def.ID)
	if err != nil || unchanged.Version != def.Version {
		t.Fatalf("SyncSources() unchanged = %v, %v", unchanged.Version, err)
	}

	code := "export default function Banner() { return null }"
	os.WriteFile(filepath.Join(def.Directory, generator.CodeFile), []byte(code), 0644)
	os.WriteFile(filepath.Join(def.Directory, generator.StyleFile), []byte(".banner{}"), 0644)
	synced, err := m.SyncSources(def.ID)
	if err != nil {
		t.Fatalf("SyncSources() error = %v", err)
	}
	if synced.Code != code || synced.Styles != ".banner{}" || synced.Version != "1.0.1" {
		t.Errorf("synced = %+v", synced)
	}

	os.WriteFile(filepath.Join(def.Directory, generator.CodeFile), []byte(""), 0644)
	if _, err := m.SyncSources(def.ID); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("empty source: err = %v", err)
	}
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		valid    bool
		errors   int
		warnings int
	}{
		{"empty", "  \n", false, 1, 0},
		{"no component", "<div>hi</div>", false, 1, 1},
		{"arrow component", "const A = () => <p/>", true, 0, 0},
		{"no return", "export default function A() { <p/> }", true, 0, 1},
		{"unsafe calls", "function A() { eval('x'); setTimeout(f); return null }", true, 0, 2},
		{"every unsafe call", "const A = () => { eval(a); Function(b); setTimeout(c); setInterval(d) }", true, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateCode(tt.code)
			if res.Valid != tt.valid || len(res.Errors) != tt.errors || len(res.Warnings) != tt.warnings {
				t.Errorf("ValidateCode() = %+v", res)
			}
		})
	}
}

func TestBumpPatch(t *testing.T) {
	tests := map[string]string{"1.0.0": "1.0.1", "2.3.9": "2.3.10", "": "1.0.1", "v1": "1.0.1"}
	for in, want := range tests {
		if got := bumpPatch(in); got != want {
			t.Errorf("bumpPatch(%q) = %q, want %q", in, got, want)
		}
	}
}
