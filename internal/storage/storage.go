package storage

import (
	"context"
	"errors"

	"go-page-builder/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ComponentStore persists custom component definitions.
type ComponentStore interface {
	// SaveComponent persists the definition's metadata.
	SaveComponent(def *model.ComponentDefinition) error

	// LoadComponent retrieves a definition by its ID.
	LoadComponent(id string) (*model.ComponentDefinition, error)

	// GetAllComponentIDs returns the IDs of every stored definition.
	GetAllComponentIDs() ([]string, error)

	// DeleteComponent removes the definition's metadata. Deleting a missing
	// definition is not an error.
	DeleteComponent(id string) error

	// ReadAll retrieves every stored definition.
	ReadAll() ([]*model.ComponentDefinition, error)

	// GetBasePath returns the storage base path.
	GetBasePath() string
}

// PageStore persists pages and their content structures.
type PageStore interface {
	CreatePage(ctx context.Context, page *model.Page) error
	GetPage(ctx context.Context, id string) (*model.Page, error)
	ListPages(ctx context.Context, websiteID string) ([]*model.Page, error)
	// SavePageContent replaces the stored content structure of a page.
	SavePageContent(ctx context.Context, id string, content model.ContentStructure) error
	SetPublished(ctx context.Context, id string, published bool) error
	DeletePage(ctx context.Context, id string) error
}

// MediaStore lists and records media assets.
type MediaStore interface {
	AddAsset(ctx context.Context, asset *model.MediaAsset) error
	// ListAssets returns a website's assets, newest first. An empty
	// mimePrefix matches every type.
	ListAssets(ctx context.Context, websiteID, mimePrefix string) ([]model.MediaAsset, error)
}
