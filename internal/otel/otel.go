// Package otel wires OpenTelemetry tracing onto the event bus: one span per
// automation request, with child spans for mutations.
package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"

	"github.com/scenewire/scenewire/internal/eventbus"
	"github.com/scenewire/scenewire/internal/events"
	"github.com/scenewire/scenewire/internal/reqid"
)

// Setup configures the OTLP exporter and attaches the event subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("scenewire")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer        trace.Tracer
	requestSpans  sync.Map // rid -> trace.Span
	mutationSpans sync.Map // rid -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.RequestStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "automation.request")
		span.SetAttributes(
			attribute.String("automation.op", e.Op),
			attribute.String("net.peer", e.Remote),
		)
		s.requestSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.RequestFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.requestSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		if e.ErrorCode != "" {
			span.SetAttributes(attribute.String("automation.error_code", e.ErrorCode))
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.MutationStart) {
		rid, _ := reqid.FromContext(ctx)
		parent := ctx
		if v, ok := s.requestSpans.Load(rid); ok {
			parent = trace.ContextWithSpan(ctx, v.(trace.Span))
		}
		_, span := s.tracer.Start(parent, "graph.mutation")
		span.SetAttributes(
			attribute.String("entity.path", e.Entity),
			attribute.String("entity.field", e.Field),
		)
		s.mutationSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.MutationFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.mutationSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		if e.ErrorCode != "" {
			span.SetAttributes(attribute.String("automation.error_code", e.ErrorCode))
		}
		span.End()
	})
}
