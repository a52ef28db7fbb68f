package suggest

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedGateway wraps a Gateway with tracing and metrics.
type InstrumentedGateway struct {
	gateway *Gateway
	tracer  trace.Tracer
	meter   metric.Meter
}

func NewInstrumentedGateway(gateway *Gateway, tracer trace.Tracer, meter metric.Meter) *InstrumentedGateway {
	return &InstrumentedGateway{
		gateway: gateway,
		tracer:  tracer,
		meter:   meter,
	}
}

// Suggest delegates to the wrapped gateway, recording spans and counters.
func (g *InstrumentedGateway) Suggest(ctx context.Context, focus []string, filters *Filters) ([]Recipe, error) {
	ctx, span := g.tracer.Start(ctx, "Gateway.Suggest")
	defer span.End()

	requestsCounter, _ := g.meter.Int64Counter("suggest_requests_total",
		metric.WithDescription("Total number of recipe suggestion requests"))
	failuresCounter, _ := g.meter.Int64Counter("suggest_failures_total",
		metric.WithDescription("Total number of recipe suggestion requests that failed"))
	recipesGauge, _ := g.meter.Int64Gauge("suggest_recipes_count",
		metric.WithDescription("Number of recipes returned by the last request"))
	latencyGauge, _ := g.meter.Int64Gauge("suggest_latency_ms",
		metric.WithDescription("Latency of the last suggestion request in milliseconds"))

	requestsCounter.Add(ctx, 1)
	span.SetAttributes(attribute.Int("focus_ingredients", len(focus)))

	started := time.Now()
	recipes, err := g.gateway.Suggest(ctx, focus, filters)
	latencyGauge.Record(ctx, time.Since(started).Milliseconds())

	if err != nil {
		failuresCounter.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	recipesGauge.Record(ctx, int64(len(recipes)))
	span.SetAttributes(attribute.Int("recipes_count", len(recipes)))
	span.SetStatus(codes.Ok, "")
	return recipes, nil
}
