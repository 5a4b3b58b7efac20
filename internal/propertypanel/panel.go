// Package propertypanel builds the editing form for one placed component.
// Controls follow the definition's schema order and every edit hands the
// full replacement props to the caller.
package propertypanel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"go-page-builder/internal/model"
)

// ImagePlaceholder is shown in place of an image reference that cannot be
// displayed.
const ImagePlaceholder = "/placeholder.svg?height=80&width=200&text=Image+Not+Found"

var (
	ErrUnknownProperty = errors.New("property is not declared by the component")
	ErrNotImage        = errors.New("property is not an image reference")
)

// MediaSource lists uploaded assets. storage.MediaStore satisfies it.
type MediaSource interface {
	ListAssets(ctx context.Context, websiteID, mimePrefix string) ([]model.MediaAsset, error)
}

// ChangeFunc receives the complete props of the edited instance.
type ChangeFunc func(instanceID string, props model.Props)

// Panel is the property editor for one instance.
type Panel struct {
	mu        sync.Mutex
	def       *model.ComponentDefinition
	instance  model.ComponentInstance
	onChange  ChangeFunc
	media     MediaSource
	websiteID string
	logger    *slog.Logger

	pickerKey string
	assets    []model.MediaAsset
}

// New creates a panel for instance, an occurrence of def. media may be nil,
// in which case the image picker is always empty.
func New(def *model.ComponentDefinition, instance model.ComponentInstance, onChange ChangeFunc, media MediaSource, websiteID string, logger *slog.Logger) *Panel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	instance = instance.Clone()
	if instance.Props == nil {
		instance.Props = model.Props{}
	}
	return &Panel{
		def:       def,
		instance:  instance,
		onChange:  onChange,
		media:     media,
		websiteID: websiteID,
		logger:    logger,
	}
}

// Empty reports whether the component declares no properties.
func (p *Panel) Empty() bool {
	return len(p.def.Schema) == 0
}

// Props returns a copy of the instance's current props.
func (p *Panel) Props() model.Props {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.instance.Props.Clone()
}

// Edit applies raw form input to key. Select values outside the declared
// options are rejected with model.ErrInvalidOption and nothing changes.
func (p *Panel) Edit(key, raw string) error {
	spec, ok := p.def.Schema.Lookup(key)
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrUnknownProperty)
	}
	v, err := spec.Parse(raw)
	if err != nil {
		return fmt.Errorf("editing %s: %w", key, err)
	}
	p.update(key, v)
	return nil
}

// update merges one value into the props and reports the full mapping.
func (p *Panel) update(key string, v model.Value) {
	p.mu.Lock()
	p.instance.Props = p.instance.Props.With(key, v)
	id, props := p.instance.ID, p.instance.Props.Clone()
	p.mu.Unlock()
	if p.onChange != nil {
		p.onChange(id, props)
	}
}

// OpenMediaPicker loads the website's images for the image property key.
// A failing media source is logged and yields an empty list.
func (p *Panel) OpenMediaPicker(ctx context.Context, key string) ([]model.MediaAsset, error) {
	spec, ok := p.def.Schema.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrUnknownProperty)
	}
	if spec.Kind() != model.FieldImage {
		return nil, fmt.Errorf("%s: %w", key, ErrNotImage)
	}

	var assets []model.MediaAsset
	if p.media != nil && p.websiteID != "" {
		var err error
		assets, err = p.media.ListAssets(ctx, p.websiteID, "image")
		if err != nil {
			p.logger.Error("Failed to load media assets", "website", p.websiteID, "error", err)
			assets = nil
		}
	}

	p.mu.Lock()
	p.pickerKey = key
	p.assets = assets
	p.mu.Unlock()
	return assets, nil
}

// CloseMediaPicker hides the picker without selecting anything.
func (p *Panel) CloseMediaPicker() {
	p.mu.Lock()
	p.pickerKey = ""
	p.assets = nil
	p.mu.Unlock()
}

// SelectAsset writes the asset's path into key and closes the picker.
func (p *Panel) SelectAsset(key string, asset model.MediaAsset) error {
	spec, ok := p.def.Schema.Lookup(key)
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrUnknownProperty)
	}
	if spec.Kind() != model.FieldImage {
		return fmt.Errorf("%s: %w", key, ErrNotImage)
	}
	p.CloseMediaPicker()
	p.update(key, model.StringValue(asset.FilePath))
	return nil
}

// Humanize turns a camel-case property key into a label: "buttonText"
// becomes "Button Text".
func Humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
