package graph

import (
	"github.com/scenewire/scenewire/internal/meta"
	"github.com/scenewire/scenewire/internal/wire"
)

// RenderStateHolder is implemented by components that own renderer-side
// state. Change notification alone is not trusted for immediate visual
// feedback; the mutation pipeline invalidates these explicitly after a
// write.
type RenderStateHolder interface {
	InvalidateRenderState()
}

// ChangeNotifier receives the property-changed notification dispatched after
// a field write so dependent caches can react.
type ChangeNotifier interface {
	OnPropertyChanged(field string)
}

// Viewport is the observer surface asked to redraw after a mutation.
type Viewport interface {
	RequestRedraw()
}

type noopViewport struct{}

func (noopViewport) RequestRedraw() {}

// DocumentSet tracks which owning documents have unsaved changes.
type DocumentSet struct {
	dirty map[string]bool
}

func NewDocumentSet() *DocumentSet {
	return &DocumentSet{dirty: make(map[string]bool)}
}

func (d *DocumentSet) MarkNeedsSave(doc string) {
	if doc != "" {
		d.dirty[doc] = true
	}
}

func (d *DocumentSet) NeedsSave(doc string) bool { return d.dirty[doc] }

// MarkSaved clears the needs-save flag after the host persists the document.
func (d *DocumentSet) MarkSaved(doc string) { delete(d.dirty, doc) }

// Session is the explicit editor context passed into every resolver and
// mutation call. It replaces ambient editor globals: the current world, the
// reflection registry, the transaction manager, persistence and viewport
// hooks, and the asset loader all travel together.
//
// A Session is bound to the single goroutine that owns the graph. The HTTP
// layer serializes requests before they reach it.
type Session struct {
	World    *World
	Meta     *meta.Registry
	Tx       *TransactionManager
	Docs     *DocumentSet
	Viewport Viewport
	Loader   wire.Loader
}

// NewSession wires a session around a world with default collaborators: a
// fresh transaction manager and document set, and a no-op viewport.
func NewSession(world *World, reg *meta.Registry) *Session {
	return &Session{
		World:    world,
		Meta:     reg,
		Tx:       NewTransactionManager(reg),
		Docs:     NewDocumentSet(),
		Viewport: noopViewport{},
	}
}
