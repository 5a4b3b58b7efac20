package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-page-builder/internal/model"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // CGO-free SQLite
)

// ErrSlugTaken is returned when a page slug is already used on the website.
var ErrSlugTaken = errors.New("slug already exists for this website")

// SQLiteStore implements PageStore and MediaStore on a single SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and ensures tables.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS pages(
	  id           TEXT    PRIMARY KEY,
	  website_id   TEXT    NOT NULL,
	  title        TEXT    NOT NULL,
	  slug         TEXT    NOT NULL,
	  content_json TEXT    NOT NULL CHECK (json_valid(content_json)),
	  is_published INTEGER NOT NULL DEFAULT 0,
	  sort_order   INTEGER NOT NULL DEFAULT 0,
	  created_at   INTEGER NOT NULL,
	  updated_at   INTEGER NOT NULL,
	  UNIQUE(website_id, slug)
	);
	CREATE INDEX IF NOT EXISTS idx_pages_website ON pages(website_id, sort_order);

	CREATE TABLE IF NOT EXISTS media_assets(
	  id                TEXT    PRIMARY KEY,
	  website_id        TEXT    NOT NULL,
	  name              TEXT    NOT NULL,
	  original_filename TEXT    NOT NULL,
	  file_path         TEXT    NOT NULL,
	  file_size         INTEGER NOT NULL DEFAULT 0,
	  mime_type         TEXT    NOT NULL,
	  alt_text          TEXT,
	  tags_json         TEXT    NOT NULL DEFAULT '[]' CHECK (json_valid(tags_json)),
	  folder            TEXT,
	  created_at        INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_media_website ON media_assets(website_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreatePage inserts a page, assigning an ID and timestamps when unset.
func (s *SQLiteStore) CreatePage(ctx context.Context, page *model.Page) error {
	if page.WebsiteID == "" || page.Slug == "" {
		return fmt.Errorf("page needs a website id and a slug")
	}
	if page.ID == "" {
		page.ID = ulid.Make().String()
	}
	now := s.now().UTC()
	page.CreatedAt, page.UpdatedAt = now, now
	if page.Content.Components == nil {
		page.Content.Components = []model.ComponentInstance{}
	}

	content, err := json.Marshal(page.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal page content: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pages(id, website_id, title, slug, content_json, is_published, sort_order, created_at, updated_at)
		 VALUES(?,?,?,?,json(?),?,?,?,?)`,
		page.ID, page.WebsiteID, page.Title, page.Slug, string(content),
		page.IsPublished, page.SortOrder, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("page %q: %w", page.Slug, ErrSlugTaken)
		}
		return fmt.Errorf("failed to insert page: %w", err)
	}
	return nil
}

const pageColumns = `id, website_id, title, slug, content_json, is_published, sort_order, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (*model.Page, error) {
	var (
		p                model.Page
		content          string
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.WebsiteID, &p.Title, &p.Slug, &content, &p.IsPublished, &p.SortOrder, &created, &updated); err != nil {
		return nil, err
	}
	cs, err := model.ParseContentStructure([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("page %s has invalid content: %w", p.ID, err)
	}
	p.Content = cs
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return &p, nil
}

func (s *SQLiteStore) GetPage(ctx context.Context, id string) (*model.Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("page %s %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteStore) ListPages(ctx context.Context, websiteID string) ([]*model.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE website_id = ? ORDER BY sort_order, created_at`, websiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	pages := []*model.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *SQLiteStore) SavePageContent(ctx context.Context, id string, content model.ContentStructure) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal page content: %w", err)
	}
	return s.update(ctx, id, `UPDATE pages SET content_json = json(?), updated_at = ? WHERE id = ?`,
		string(data), s.now().UTC().UnixMilli(), id)
}

func (s *SQLiteStore) SetPublished(ctx context.Context, id string, published bool) error {
	return s.update(ctx, id, `UPDATE pages SET is_published = ?, updated_at = ? WHERE id = ?`,
		published, s.now().UTC().UnixMilli(), id)
}

func (s *SQLiteStore) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update page %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("page %s %w", id, ErrNotFound)
	}
	return nil
}

// DeletePage is idempotent.
func (s *SQLiteStore) DeletePage(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete page %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) AddAsset(ctx context.Context, asset *model.MediaAsset) error {
	if asset.WebsiteID == "" || asset.FilePath == "" {
		return fmt.Errorf("media asset needs a website id and a file path")
	}
	if asset.ID == "" {
		asset.ID = ulid.Make().String()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = s.now().UTC()
	}
	if asset.Name == "" {
		asset.Name = asset.OriginalFilename
	}
	tags := asset.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO media_assets(id, website_id, name, original_filename, file_path, file_size, mime_type, alt_text, tags_json, folder, created_at)
		 VALUES(?,?,?,?,?,?,?,?,json(?),?,?)`,
		asset.ID, asset.WebsiteID, asset.Name, asset.OriginalFilename, asset.FilePath, asset.FileSize,
		asset.MimeType, asset.AltText, string(tagsJSON), asset.Folder, asset.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert media asset: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAssets(ctx context.Context, websiteID, mimePrefix string) ([]model.MediaAsset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, website_id, name, original_filename, file_path, file_size, mime_type,
		        COALESCE(alt_text, ''), tags_json, COALESCE(folder, ''), created_at
		 FROM media_assets
		 WHERE website_id = ? AND mime_type LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC, id DESC`,
		websiteID, escapeLike(mimePrefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list media assets: %w", err)
	}
	defer rows.Close()

	assets := []model.MediaAsset{}
	for rows.Next() {
		var (
			a       model.MediaAsset
			tags    string
			created int64
		)
		if err := rows.Scan(&a.ID, &a.WebsiteID, &a.Name, &a.OriginalFilename, &a.FilePath, &a.FileSize,
			&a.MimeType, &a.AltText, &tags, &a.Folder, &created); err != nil {
			return nil, fmt.Errorf("failed to scan media asset: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return nil, fmt.Errorf("media asset %s has invalid tags: %w", a.ID, err)
		}
		a.CreatedAt = time.UnixMilli(created).UTC()
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
