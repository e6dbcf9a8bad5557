// Package mutate orchestrates property reads and writes over resolved
// targets. A write walks a linear state machine: resolve, open transaction,
// apply, notify, persist. The transaction opens only after resolution and
// marshalling succeed and closes on every exit path; the confirmation value
// is read back from the graph, never echoed from the request.
package mutate

import (
	"context"
	"time"

	"github.com/scenewire/scenewire/internal/eventbus"
	"github.com/scenewire/scenewire/internal/events"
	"github.com/scenewire/scenewire/internal/fault"
	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/path"
	"github.com/scenewire/scenewire/internal/resolve"
	"github.com/scenewire/scenewire/internal/wire"
)

// Request addresses one property: the entity identifier, the property path,
// an optional explicit sub-entity name, and (for writes) the wire value.
type Request struct {
	Identifier resolve.Identifier
	Path       string
	Component  string
	Value      any
}

// Pipeline executes reads and writes against one editor session.
type Pipeline struct {
	session   *graph.Session
	overrides *Overrides
	marshal   wire.Marshaller
}

func NewPipeline(s *graph.Session) *Pipeline {
	return &Pipeline{
		session:   s,
		overrides: StandardOverrides(),
		marshal:   wire.Marshaller{Loader: s.Loader},
	}
}

// Get resolves req and returns the property's wire value.
func (p *Pipeline) Get(ctx context.Context, req Request) (any, *fault.Error) {
	_, t, err := p.resolveTarget(req)
	if err != nil {
		return nil, err
	}
	return p.readBack(t)
}

// Set resolves req, writes the marshalled value inside a transaction, runs
// the notification and persistence side effects, and returns the post-write
// value as confirmation.
func (p *Pipeline) Set(ctx context.Context, req Request) (any, *fault.Error) {
	e, t, err := p.resolveTarget(req)
	if err != nil {
		return nil, err
	}
	if t.Descriptor.ReadOnly {
		// Short-circuits before the transaction opens: no dirty-marking,
		// no undo entry.
		return nil, fault.New(fault.FieldReadOnly, "field %s is read-only", t.Descriptor.Name).
			With("field", t.Descriptor.Name)
	}

	valueType := t.Descriptor.Type
	if t.HasIndex {
		valueType = *t.Descriptor.Type.Elem
	}
	native, err := p.marshal.FromWire(req.Value, valueType)
	if err != nil {
		return nil, err.With("field", t.Descriptor.Name)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.MutationStart{Entity: e.Path, Field: t.Descriptor.Name})

	applyErr := p.apply(e, t, native)
	code := ""
	if applyErr != nil {
		code = string(applyErr.Kind)
	}
	eventbus.Publish(ctx, events.MutationFinish{
		Entity:    e.Path,
		Field:     t.Descriptor.Name,
		ErrorCode: code,
		Duration:  time.Since(start),
	})
	if applyErr != nil {
		return nil, applyErr
	}
	return p.readBack(t)
}

// apply runs TransactionOpen through Persisted.
func (p *Pipeline) apply(e *graph.Entity, t path.Target, native any) *fault.Error {
	tx := p.session.Tx.Begin("Set " + t.Descriptor.Name)
	defer tx.Close()
	tx.Snapshot(t.Object, t.Descriptor.Name)

	class := p.session.Meta.ClassName(t.Object)
	var err error
	switch {
	case t.HasIndex:
		// Grow-then-set; a failure on the set half leaves the array grown.
		err = p.session.Meta.SetIndex(t.Object, t.Descriptor.Name, t.Index, native)
	default:
		if fn, ok := p.overrides.Lookup(class, t.Descriptor.Name); ok {
			err = fn(t.Object, native)
		} else {
			err = p.session.Meta.Set(t.Object, t.Descriptor.Name, native)
		}
	}
	if err != nil {
		return fault.New(fault.MutationFailed, "%s", err).
			With("field", t.Descriptor.Name)
	}

	// Notified: the target reacts, and visual primitives additionally get
	// an explicit render refresh; the notification alone is not trusted for
	// immediate visual feedback.
	if n, ok := t.Object.(graph.ChangeNotifier); ok {
		n.OnPropertyChanged(t.Descriptor.Name)
	}
	if h, ok := t.Object.(graph.RenderStateHolder); ok {
		h.InvalidateRenderState()
	}

	// Persisted: the owning document needs saving and observers redraw.
	p.session.Docs.MarkNeedsSave(e.Document)
	p.session.Viewport.RequestRedraw()
	return nil
}

func (p *Pipeline) resolveTarget(req Request) (*graph.Entity, path.Target, *fault.Error) {
	e, err := resolve.Resolve(p.session, req.Identifier)
	if err != nil {
		return nil, path.Target{}, err
	}
	t, err := path.Resolve(p.session.Meta, e, req.Path, req.Component)
	if err != nil {
		return nil, path.Target{}, err
	}
	return e, t, nil
}

func (p *Pipeline) readBack(t path.Target) (any, *fault.Error) {
	if t.HasIndex {
		elem, err := p.session.Meta.GetIndex(t.Object, t.Descriptor.Name, t.Index)
		if err != nil {
			return nil, fault.New(fault.InvalidValue, "%s", err).
				With("field", t.Descriptor.Name)
		}
		return p.marshal.ToWire(elem, *t.Descriptor.Type.Elem), nil
	}
	native, err := p.session.Meta.Get(t.Object, t.Descriptor.Name)
	if err != nil {
		return nil, fault.New(fault.InvalidValue, "%s", err).
			With("field", t.Descriptor.Name)
	}
	return p.marshal.ToWire(native, t.Descriptor.Type), nil
}
