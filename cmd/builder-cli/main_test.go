package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"go-page-builder/internal/componentmanager"
	"go-page-builder/internal/config"
)

func newTestCLI(t *testing.T, input string) (*cli, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			MetadataDir:   filepath.Join(dir, "meta"),
			ComponentsDir: filepath.Join(dir, "components"),
			DatabasePath:  filepath.Join(dir, "pages.db"),
		},
		Request: config.RequestConfig{Timeout: time.Minute},
	}
	out := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, closeFn, err := newCLI(context.Background(), cfg, logger, out, strings.NewReader(input))
	if err != nil {
		t.Fatalf("newCLI() error = %v", err)
	}
	t.Cleanup(closeFn)
	return c, out
}

var idPattern = regexp.MustCompile(`with ID '([^']+)'`)

func runCLI(t *testing.T, c *cli, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	if err := c.run(context.Background(), args); err != nil {
		t.Fatalf("run(%v) error = %v\noutput:\n%s", args, err, out.String())
	}
	return out.String()
}

func createdID(t *testing.T, output string) string {
	t.Helper()
	m := idPattern.FindStringSubmatch(output)
	if m == nil {
		t.Fatalf("no ID in output %q", output)
	}
	return m[1]
}

func TestUnknownCommand(t *testing.T) {
	c, _ := newTestCLI(t, "")
	if err := c.run(context.Background(), []string{"frobnicate"}); !errors.Is(err, errUsage) {
		t.Errorf("run(frobnicate) error = %v, want errUsage", err)
	}
	if err := c.run(context.Background(), nil); !errors.Is(err, errUsage) {
		t.Errorf("run() error = %v, want errUsage", err)
	}
	if err := c.run(context.Background(), []string{"create"}); !errors.Is(err, errUsage) {
		t.Errorf("run(create) without -name error = %v, want errUsage", err)
	}
}

func TestCatalogListsBuiltins(t *testing.T) {
	c, out := newTestCLI(t, "")
	got := runCLI(t, c, out, "catalog")
	if !strings.Contains(got, "(heading)") {
		t.Errorf("catalog output missing heading:\n%s", got)
	}
	if !strings.Contains(got, "No custom components.") {
		t.Errorf("catalog output should report no custom components:\n%s", got)
	}
}

func TestComponentLifecycle(t *testing.T) {
	c, out := newTestCLI(t, "")
	id := createdID(t, runCLI(t, c, out, "create", "-name", "Promo Card", "-category", "marketing"))

	if got := runCLI(t, c, out, "list"); !strings.Contains(got, id) || !strings.Contains(got, "Promo Card") {
		t.Errorf("list output missing new component:\n%s", got)
	}

	codeFile := filepath.Join(t.TempDir(), "card.jsx")
	if err := os.WriteFile(codeFile, []byte("export const Card = () => { return null }"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := runCLI(t, c, out, "update", "-id", id, "-code-file", codeFile, "-public", "true"); !strings.Contains(got, "version 1.0.1") {
		t.Errorf("update output = %q, want version 1.0.1", got)
	}
	if got := runCLI(t, c, out, "validate", "-id", id); !strings.Contains(got, "Code is valid.") {
		t.Errorf("validate output = %q", got)
	}

	runCLI(t, c, out, "delete", "-id", id)
	if got := runCLI(t, c, out, "list"); strings.Contains(got, id) {
		t.Errorf("removed component still listed without -all:\n%s", got)
	}
	if got := runCLI(t, c, out, "list", "-all"); !strings.Contains(got, "Removed") {
		t.Errorf("list -all output missing removed component:\n%s", got)
	}
	if got := runCLI(t, c, out, "purge-removed", "-yes"); !strings.Contains(got, "Purged 1 component(s).") {
		t.Errorf("purge output = %q", got)
	}
}

func TestValidateRejectsEmptyFile(t *testing.T) {
	c, out := newTestCLI(t, "")
	path := filepath.Join(t.TempDir(), "empty.jsx")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	err := c.run(context.Background(), []string{"validate", "-file", path})
	if !errors.Is(err, componentmanager.ErrInvalidCode) {
		t.Fatalf("validate error = %v, want ErrInvalidCode", err)
	}
	if !strings.Contains(out.String(), "cannot be empty") {
		t.Errorf("validate output = %q", out.String())
	}
}

func TestForceDeleteAsksForConfirmation(t *testing.T) {
	c, out := newTestCLI(t, "n\n")
	id := createdID(t, runCLI(t, c, out, "create", "-name", "Keep Me"))

	got := runCLI(t, c, out, "delete", "-id", id, "-force")
	if !strings.Contains(got, "Delete cancelled.") {
		t.Errorf("delete output = %q, want cancellation", got)
	}
	if _, err := c.manager.Store().LoadComponent(id); err != nil {
		t.Errorf("component gone after declined delete: %v", err)
	}

	runCLI(t, c, out, "delete", "-id", id, "-force", "-yes")
	if _, err := c.manager.Store().LoadComponent(id); err == nil {
		t.Error("component still stored after confirmed force delete")
	}
}

func TestDeleteBuiltinFails(t *testing.T) {
	c, _ := newTestCLI(t, "")
	err := c.run(context.Background(), []string{"delete", "-id", "heading"})
	if !errors.Is(err, componentmanager.ErrBuiltinReadOnly) {
		t.Errorf("delete heading error = %v, want ErrBuiltinReadOnly", err)
	}
}

func TestFunnels(t *testing.T) {
	c, out := newTestCLI(t, "")
	got := runCLI(t, c, out, "funnels", "-group", "exit-intent")
	if n := strings.Count(got, "\n"); n != 3 {
		t.Errorf("exit-intent group lists %d templates, want 3:\n%s", n, got)
	}
	if !strings.Contains(got, "ecommerce-exit-funnel") {
		t.Errorf("funnels output missing ecommerce-exit-funnel:\n%s", got)
	}
}

func TestPageWorkflow(t *testing.T) {
	c, out := newTestCLI(t, "")
	ctx := context.Background()

	got := runCLI(t, c, out, "page-create", "-website", "site-1", "-title", "Trust Page", "-slug", "trust", "-funnel", "trust-based-funnel")
	if !strings.Contains(got, "(7 components)") {
		t.Errorf("page-create output = %q, want 7 components", got)
	}
	pageID := createdID(t, got)

	if err := c.run(ctx, []string{"page-create", "-website", "site-1", "-title", "Again", "-slug", "trust"}); err == nil {
		t.Error("page-create with a taken slug succeeded")
	}

	runCLI(t, c, out, "apply-funnel", "-page", pageID, "-funnel", "ecommerce-exit-funnel")
	page, err := c.pages.GetPage(ctx, pageID)
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if len(page.Content.Components) == 0 || page.Content.Components[0].ComponentID == "" {
		t.Errorf("apply-funnel stored %+v", page.Content)
	}

	if got := runCLI(t, c, out, "page-list", "-website", "site-1"); !strings.Contains(got, "draft") {
		t.Errorf("page-list output = %q, want draft", got)
	}
	runCLI(t, c, out, "publish", "-page", pageID)
	if got := runCLI(t, c, out, "page-list", "-website", "site-1"); !strings.Contains(got, "published") {
		t.Errorf("page-list output = %q, want published", got)
	}
}

func TestPreviewWritesFile(t *testing.T) {
	c, out := newTestCLI(t, "")
	pageID := createdID(t, runCLI(t, c, out, "page-create", "-website", "site-1", "-title", "Sale", "-slug", "sale", "-funnel", "ecommerce-exit-funnel"))

	dest := filepath.Join(t.TempDir(), "out", "preview.html")
	runCLI(t, c, out, "preview", "-page", pageID, "-out", dest)
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading preview: %v", err)
	}
	if !strings.Contains(string(data), "<title>Sale</title>") {
		t.Errorf("preview document missing title:\n%s", data)
	}

	if err := c.run(context.Background(), []string{"preview", "-page", "missing"}); err == nil {
		t.Error("preview of a missing page succeeded")
	}
}
