// Package composer owns a page's content structure and implements the
// builder's editing operations: drag and drop, selection, removal, property
// updates and funnel templates.
package composer

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"go-page-builder/internal/catalog"
	"go-page-builder/internal/model"
	"go-page-builder/internal/propertypanel"
	"go-page-builder/internal/renderer"
)

// Zone identifies a droppable area of the builder.
type Zone string

const (
	ZoneLibrary           Zone = "component-library"
	ZoneLibraryCustom     Zone = "component-library-custom"
	ZoneExitIntentLibrary Zone = "exit-intent-library"
	ZoneCanvas            Zone = "canvas"
)

// IsLibrary reports whether items dragged out of z are catalog entries.
func (z Zone) IsLibrary() bool {
	switch z {
	case ZoneLibrary, ZoneLibraryCustom, ZoneExitIntentLibrary:
		return true
	}
	return false
}

// Location is a position inside a zone.
type Location struct {
	DroppableID Zone `json:"droppableId"`
	Index       int  `json:"index"`
}

// DragResult describes a completed drag. Destination is nil when the drag
// was cancelled.
type DragResult struct {
	// DraggableID is the catalog id for library items and the instance id
	// for canvas items.
	DraggableID string    `json:"draggableId"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination"`
}

// ChangeFunc is called with the new content after every mutation.
type ChangeFunc func(model.ContentStructure)

// Engine is the composition engine for one page. All mutations are
// serialized; listeners run after the engine's lock is released.
type Engine struct {
	mu        sync.Mutex
	logger    *slog.Logger
	catalog   *catalog.Catalog
	funnels   *FunnelSet
	ids       IDGenerator
	content   model.ContentStructure
	selected  *model.ComponentInstance
	listeners []ChangeFunc
	ready     bool
	closed    bool
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithIDGenerator(ids IDGenerator) Option {
	return func(e *Engine) { e.ids = ids }
}

func WithFunnels(set *FunnelSet) Option {
	return func(e *Engine) { e.funnels = set }
}

// WithCatalog installs an already loaded catalog and marks the engine ready.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
		e.ready = true
	}
}

// WithContent starts the engine from saved content.
func WithContent(content model.ContentStructure) Option {
	return func(e *Engine) { e.content = content.Clone() }
}

// New creates an engine with an empty catalog. Call LoadCatalog or pass
// WithCatalog before inserting from the library.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		catalog: catalog.Empty(),
		ids:     UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.funnels == nil {
		e.funnels = DefaultFunnels()
	}
	return e
}

// LoadCatalog fetches both component lists and installs the result unless
// the engine was closed while the fetch was in flight. It reports whether
// the catalog was applied.
func (e *Engine) LoadCatalog(ctx context.Context, builtins catalog.BuiltinSource, customs catalog.CustomSource) bool {
	c := catalog.Load(ctx, builtins, customs, e.logger)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.logger.Debug("Discarding catalog loaded after close")
		return false
	}
	e.catalog = c
	e.ready = true
	return true
}

// Ready reports whether a catalog has been installed.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Close detaches the engine. Pending catalog loads are discarded and
// listeners are no longer notified.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.listeners = nil
	e.mu.Unlock()
}

func (e *Engine) Catalog() *catalog.Catalog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog
}

func (e *Engine) Funnels() *FunnelSet { return e.funnels }

// OnChange registers fn to receive the content after every mutation.
func (e *Engine) OnChange(fn ChangeFunc) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// Content returns a copy of the current content structure.
func (e *Engine) Content() model.ContentStructure {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content.Clone()
}

// Selected returns a copy of the selected instance.
func (e *Engine) Selected() (model.ComponentInstance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return model.ComponentInstance{}, false
	}
	return e.selected.Clone(), true
}

// HandleDragEnd applies a completed drag and reports whether the content
// changed. Library drops insert a new instance; canvas drops reorder.
// Every other combination, including a cancelled drag, is ignored.
func (e *Engine) HandleDragEnd(r DragResult) bool {
	if r.Destination == nil || r.Destination.DroppableID != ZoneCanvas {
		return false
	}
	switch {
	case r.Source.DroppableID.IsLibrary():
		return e.insertFromLibrary(r.DraggableID, r.Destination.Index)
	case r.Source.DroppableID == ZoneCanvas:
		return e.reorder(r.Source.Index, r.Destination.Index)
	}
	return false
}

// Insert places a new instance of the catalog definition componentID at
// index, clamped to the valid range. Unknown ids insert nothing.
func (e *Engine) Insert(componentID string, index int) (model.ComponentInstance, bool) {
	e.mu.Lock()
	def, ok := e.catalog.Lookup(componentID)
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("Ignoring drop of unknown component", "component", componentID)
		return model.ComponentInstance{}, false
	}
	inst := model.ComponentInstance{
		ID:          e.newIDLocked(def.ID),
		ComponentID: def.ID,
		Type:        def.Kind,
		Props:       def.DefaultProps(),
	}
	comps := e.content.Components
	index = clamp(index, 0, len(comps))
	comps = append(comps, model.ComponentInstance{})
	copy(comps[index+1:], comps[index:])
	comps[index] = inst
	e.content.Components = comps
	notify := e.snapshotLocked()
	e.mu.Unlock()

	notify()
	return inst.Clone(), true
}

func (e *Engine) insertFromLibrary(componentID string, index int) bool {
	_, ok := e.Insert(componentID, index)
	return ok
}

// reorder moves the instance at from to to. from is an index into the
// current list; to is an index into the list after removal and is clamped.
func (e *Engine) reorder(from, to int) bool {
	e.mu.Lock()
	return e.finish(e.reorderLocked(from, to))
}

func (e *Engine) reorderLocked(from, to int) bool {
	comps := e.content.Components
	if from < 0 || from >= len(comps) {
		return false
	}
	to = clamp(to, 0, len(comps)-1)
	if from == to {
		return false
	}
	moved := comps[from]
	comps = append(comps[:from], comps[from+1:]...)
	comps = append(comps, model.ComponentInstance{})
	copy(comps[to+1:], comps[to:])
	comps[to] = moved
	e.content.Components = comps
	return true
}

// Move places instance id at position to, with the same semantics as a
// canvas drag.
func (e *Engine) Move(id string, to int) bool {
	e.mu.Lock()
	return e.finish(e.reorderLocked(e.content.IndexOf(id), to))
}

// RemoveInstance deletes the instance at index, clearing the selection if
// it pointed at that instance.
func (e *Engine) RemoveInstance(index int) bool {
	e.mu.Lock()
	return e.finish(e.removeLocked(index))
}

// RemoveInstanceByID deletes instance id. Its position is resolved under the
// same lock as the removal.
func (e *Engine) RemoveInstanceByID(id string) bool {
	e.mu.Lock()
	return e.finish(e.removeLocked(e.content.IndexOf(id)))
}

func (e *Engine) removeLocked(index int) bool {
	comps := e.content.Components
	if index < 0 || index >= len(comps) {
		return false
	}
	removed := comps[index].ID
	e.content.Components = append(comps[:index], comps[index+1:]...)
	if e.selected != nil && e.selected.ID == removed {
		e.selected = nil
	}
	return true
}

// finish releases e.mu and notifies listeners when changed is true.
func (e *Engine) finish(changed bool) bool {
	if !changed {
		e.mu.Unlock()
		return false
	}
	notify := e.snapshotLocked()
	e.mu.Unlock()

	notify()
	return true
}

// UpdateInstanceProps replaces the props of instance id wholesale. The
// caller merges; this layer does not.
func (e *Engine) UpdateInstanceProps(id string, props model.Props) bool {
	e.mu.Lock()
	i := e.content.IndexOf(id)
	if i < 0 {
		e.mu.Unlock()
		return false
	}
	e.content.Components[i].Props = props.Clone()
	if e.selected != nil && e.selected.ID == id {
		sel := e.content.Components[i].Clone()
		e.selected = &sel
	}
	notify := e.snapshotLocked()
	e.mu.Unlock()

	notify()
	return true
}

// SelectInstance selects instance id. Unknown ids leave the selection
// unchanged.
func (e *Engine) SelectInstance(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.content.IndexOf(id)
	if i < 0 {
		return false
	}
	sel := e.content.Components[i].Clone()
	e.selected = &sel
	return true
}

// ClearSelection deselects, as a click on the canvas background does.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	e.selected = nil
	e.mu.Unlock()
}

// ApplyFunnelTemplate replaces the whole content with template id. Unknown
// ids change nothing.
func (e *Engine) ApplyFunnelTemplate(id string) bool {
	tmpl, ok := e.funnels.Lookup(id)
	if !ok {
		return false
	}

	e.mu.Lock()
	comps := make([]model.ComponentInstance, 0, len(tmpl.Components))
	// The partial list stays installed so newIDLocked sees the ids already
	// handed out for this template.
	e.content.Components = nil
	for _, c := range tmpl.Components {
		kind := model.KindBuiltin
		if def, ok := e.catalog.Lookup(c.ComponentID); ok {
			kind = def.Kind
		}
		inst := model.ComponentInstance{
			ID:          e.newIDLocked(c.ComponentID),
			ComponentID: c.ComponentID,
			Type:        kind,
			Props:       c.Props.Clone(),
		}
		if inst.Props == nil {
			inst.Props = model.Props{}
		}
		comps = append(comps, inst)
		e.content.Components = comps
	}
	e.selected = nil
	notify := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("Applied funnel template", "template", id, "components", len(comps))
	notify()
	return true
}

// SetContent replaces the content, e.g. after loading a saved page. The
// selection is cleared.
func (e *Engine) SetContent(content model.ContentStructure) {
	e.mu.Lock()
	e.content = content.Clone()
	e.selected = nil
	notify := e.snapshotLocked()
	e.mu.Unlock()
	notify()
}

// Resolve returns the catalog definition an instance refers to.
func (e *Engine) Resolve(inst model.ComponentInstance) (*model.ComponentDefinition, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Lookup(inst.ComponentID)
}

// Resolved pairs every instance with its definition, in canvas order.
// Instances whose definition is missing carry a nil Definition.
func (e *Engine) Resolved() []renderer.ResolvedInstance {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]renderer.ResolvedInstance, 0, len(e.content.Components))
	for _, inst := range e.content.Components {
		def, _ := e.catalog.Lookup(inst.ComponentID)
		out = append(out, renderer.ResolvedInstance{Instance: inst.Clone(), Definition: def})
	}
	return out
}

// Canvas renders every instance with r, with no exit-intent detectors.
func (e *Engine) Canvas(r *renderer.Renderer) []CanvasItem {
	resolved := e.Resolved()
	sel, hasSel := e.Selected()
	items := make([]CanvasItem, 0, len(resolved))
	for _, ri := range resolved {
		item := CanvasItem{Instance: ri.Instance, Selected: hasSel && sel.ID == ri.Instance.ID}
		if ri.Definition != nil {
			item.Name = ri.Definition.Name
			item.HTML = r.Render(ri.Definition, ri.Instance.Props.Resolve(ri.Definition.Schema))
			if _, ok := renderer.VariantOf(ri.Definition.Builtin); ok && ri.Definition.IsExitIntent() {
				item.Previewable = true
			}
		} else {
			item.Name = ri.Instance.ComponentID
			item.HTML = r.Render(&model.ComponentDefinition{ID: ri.Instance.ComponentID, Name: ri.Instance.ComponentID, Kind: model.KindBuiltin}, nil)
		}
		items = append(items, item)
	}
	return items
}

// Panel builds the property panel for the selected instance. Edits made
// through the panel are written back with UpdateInstanceProps.
func (e *Engine) Panel(media propertypanel.MediaSource, websiteID string) (*propertypanel.Panel, bool) {
	sel, ok := e.Selected()
	if !ok {
		return nil, false
	}
	def, ok := e.Resolve(sel)
	if !ok {
		return nil, false
	}
	return propertypanel.New(def, sel, func(id string, props model.Props) {
		e.UpdateInstanceProps(id, props)
	}, media, websiteID, e.logger), true
}

// newIDLocked returns an id no current instance uses.
func (e *Engine) newIDLocked(componentID string) string {
	for {
		id := e.ids.NewID(componentID)
		if e.content.IndexOf(id) < 0 {
			return id
		}
		e.logger.Warn("Instance id collision, retrying", "id", id)
	}
}

// snapshotLocked captures the content for listeners and returns a func that
// delivers it once the lock is released.
func (e *Engine) snapshotLocked() func() {
	if e.closed || len(e.listeners) == 0 {
		return func() {}
	}
	content := e.content.Clone()
	listeners := append([]ChangeFunc(nil), e.listeners...)
	return func() {
		for _, fn := range listeners {
			fn(content)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
