package protocol

import (
	"context"

	"github.com/scenewire/scenewire/internal/fault"
	"github.com/scenewire/scenewire/internal/graph"
	"github.com/scenewire/scenewire/internal/meta"
	"github.com/scenewire/scenewire/internal/mutate"
	"github.com/scenewire/scenewire/internal/resolve"
)

// Dispatcher executes decoded requests against one editor session. It does
// no transport work; carrying envelopes over a socket is the caller's job.
type Dispatcher struct {
	session *graph.Session
	pipe    *mutate.Pipeline
}

func NewDispatcher(s *graph.Session) *Dispatcher {
	return &Dispatcher{session: s, pipe: mutate.NewPipeline(s)}
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	switch req.Op {
	case OpGetProperty:
		return d.getProperty(ctx, req)
	case OpSetProperty:
		return d.setProperty(ctx, req)
	case OpQueryEntities:
		return d.queryEntities(req)
	case OpDescribeEntity:
		return d.describeEntity(req)
	default:
		return Failure(fault.New(fault.InvalidValue, "unknown op %q", req.Op).
			With("op", req.Op).
			With("ops", []string{OpGetProperty, OpSetProperty, OpQueryEntities, OpDescribeEntity}))
	}
}

func (d *Dispatcher) getProperty(ctx context.Context, req Request) Response {
	value, err := d.pipe.Get(ctx, mutate.Request{
		Identifier: req.Entity.Identifier(),
		Path:       req.Path,
		Component:  req.Component,
	})
	if err != nil {
		return Failure(err)
	}
	return Response{Success: true, Value: value}
}

func (d *Dispatcher) setProperty(ctx context.Context, req Request) Response {
	confirmed, err := d.pipe.Set(ctx, mutate.Request{
		Identifier: req.Entity.Identifier(),
		Path:       req.Path,
		Component:  req.Component,
		Value:      req.Value,
	})
	if err != nil {
		return Failure(err)
	}
	return Response{Success: true, ConfirmedValue: confirmed}
}

func (d *Dispatcher) queryEntities(req Request) Response {
	matches := resolve.Query(d.session, req.Criteria.Criteria())
	out := make([]EntitySummary, len(matches))
	for i, e := range matches {
		out[i] = summarize(e)
	}
	return Response{Success: true, Entities: out}
}

func (d *Dispatcher) describeEntity(req Request) Response {
	e, err := resolve.Resolve(d.session, req.Entity.Identifier())
	if err != nil {
		return Failure(err)
	}
	detail := &EntityDetail{
		EntitySummary: summarize(e),
		Document:      e.Document,
		Fields:        fieldSpecs(d.session.Meta, e.Props),
	}
	for _, sub := range e.Subs {
		detail.Components = append(detail.Components, ComponentDetail{
			Name:   sub.Name,
			Class:  sub.Class,
			Root:   sub.Root,
			Fields: fieldSpecs(d.session.Meta, sub.Props),
		})
	}
	return Response{Success: true, Entity: detail}
}

func fieldSpecs(provider meta.Provider, obj any) []FieldSpec {
	if obj == nil {
		return nil
	}
	fields := provider.ListFields(obj, true)
	out := make([]FieldSpec, len(fields))
	for i, f := range fields {
		out[i] = FieldSpec{
			Name:     f.Name,
			Type:     f.Type.String(),
			Category: f.Category,
			ReadOnly: f.ReadOnly,
			Enum:     f.Type.Enum,
		}
	}
	return out
}
