package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go-page-builder/internal/model"
)

func setupTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPageLifecycle(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	page := &model.Page{WebsiteID: "site-1", Title: "Home", Slug: "home"}
	if err := store.CreatePage(ctx, page); err != nil {
		t.Fatalf("CreatePage() failed: %v", err)
	}
	if page.ID == "" {
		t.Fatal("CreatePage() did not assign an ID")
	}

	got, err := store.GetPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("GetPage() failed: %v", err)
	}
	if got.Title != "Home" || len(got.Content.Components) != 0 || got.Content.Components == nil {
		t.Errorf("GetPage() = %+v", got)
	}

	content := model.ContentStructure{Components: []model.ComponentInstance{
		{ID: "i1", ComponentID: "heading", Type: model.KindBuiltin, Props: model.Props{"text": model.StringValue("Hi"), "size": model.NumberValue(2)}},
	}}
	if err := store.SavePageContent(ctx, page.ID, content); err != nil {
		t.Fatalf("SavePageContent() failed: %v", err)
	}
	got, err = store.GetPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("GetPage() failed: %v", err)
	}
	if !reflect.DeepEqual(got.Content, content) {
		t.Errorf("content mismatch:\n got %+v\nwant %+v", got.Content, content)
	}

	if err := store.SetPublished(ctx, page.ID, true); err != nil {
		t.Fatalf("SetPublished() failed: %v", err)
	}
	pages, err := store.ListPages(ctx, "site-1")
	if err != nil {
		t.Fatalf("ListPages() failed: %v", err)
	}
	if len(pages) != 1 || !pages[0].IsPublished {
		t.Errorf("ListPages() = %+v", pages)
	}

	if err := store.DeletePage(ctx, page.ID); err != nil {
		t.Fatalf("DeletePage() failed: %v", err)
	}
	if _, err := store.GetPage(ctx, page.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPage() after delete = %v, want ErrNotFound", err)
	}
	if err := store.SavePageContent(ctx, page.ID, content); !errors.Is(err, ErrNotFound) {
		t.Errorf("SavePageContent() on missing page = %v, want ErrNotFound", err)
	}
}

func TestCreatePage_DuplicateSlug(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.CreatePage(ctx, &model.Page{WebsiteID: "site-1", Title: "A", Slug: "pricing"}); err != nil {
		t.Fatalf("CreatePage() failed: %v", err)
	}
	err := store.CreatePage(ctx, &model.Page{WebsiteID: "site-1", Title: "B", Slug: "pricing"})
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("CreatePage() duplicate = %v, want ErrSlugTaken", err)
	}
	if err := store.CreatePage(ctx, &model.Page{WebsiteID: "site-2", Title: "C", Slug: "pricing"}); err != nil {
		t.Errorf("same slug on another website should be allowed: %v", err)
	}
}

func TestListAssets_FiltersByWebsiteAndMime(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assets := []*model.MediaAsset{
		{WebsiteID: "site-1", OriginalFilename: "logo.png", FilePath: "/media/logo.png", MimeType: "image/png", CreatedAt: base},
		{WebsiteID: "site-1", OriginalFilename: "hero.jpg", FilePath: "/media/hero.jpg", MimeType: "image/jpeg", CreatedAt: base.Add(time.Hour), Tags: []string{"hero"}},
		{WebsiteID: "site-1", OriginalFilename: "terms.pdf", FilePath: "/media/terms.pdf", MimeType: "application/pdf", CreatedAt: base},
		{WebsiteID: "site-2", OriginalFilename: "other.png", FilePath: "/media/other.png", MimeType: "image/png", CreatedAt: base},
	}
	for _, a := range assets {
		if err := store.AddAsset(ctx, a); err != nil {
			t.Fatalf("AddAsset() failed: %v", err)
		}
	}

	images, err := store.ListAssets(ctx, "site-1", "image")
	if err != nil {
		t.Fatalf("ListAssets() failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("ListAssets() returned %d assets, want 2", len(images))
	}
	if images[0].FilePath != "/media/hero.jpg" {
		t.Errorf("newest asset first: got %s", images[0].FilePath)
	}
	if !reflect.DeepEqual(images[0].Tags, []string{"hero"}) {
		t.Errorf("tags = %v", images[0].Tags)
	}
	if images[1].Name != "logo.png" {
		t.Errorf("name should default to filename, got %q", images[1].Name)
	}

	all, err := store.ListAssets(ctx, "site-1", "")
	if err != nil {
		t.Fatalf("ListAssets() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListAssets(no filter) returned %d, want 3", len(all))
	}
}
