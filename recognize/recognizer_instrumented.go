package recognize

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

// Recognize delegates to the wrapped gateway, recording spans and counters.
func (g *InstrumentedGateway) Recognize(ctx context.Context, imageBase64 string) ([]Item, error) {
	ctx, span := g.tracer.Start(ctx, "Gateway.Recognize")
	defer span.End()

	requestsCounter, _ := g.meter.Int64Counter("recognize_requests_total",
		metric.WithDescription("Total number of recognition requests"))
	failuresCounter, _ := g.meter.Int64Counter("recognize_failures_total",
		metric.WithDescription("Total number of recognition requests that failed hard"))
	fallbacksCounter, _ := g.meter.Int64Counter("recognize_fallbacks_total",
		metric.WithDescription("Total number of recognitions that degraded to the fallback item"))
	itemsGauge, _ := g.meter.Int64Gauge("recognize_items_count",
		metric.WithDescription("Number of items recognized in the last request"))
	latencyGauge, _ := g.meter.Int64Gauge("recognize_latency_ms",
		metric.WithDescription("Latency of the last recognition request in milliseconds"))

	requestsCounter.Add(ctx, 1)
	span.SetAttributes(attribute.Int("image_payload_bytes", len(imageBase64)))

	started := time.Now()
	items, err := g.gateway.Recognize(ctx, imageBase64)
	latencyGauge.Record(ctx, time.Since(started).Milliseconds())

	if err != nil {
		failuresCounter.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(items) == 1 && items[0].Name == FallbackName {
		fallbacksCounter.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("fallback", true))
	}

	itemsGauge.Record(ctx, int64(len(items)))
	span.SetAttributes(attribute.Int("items_count", len(items)))
	span.SetStatus(codes.Ok, "")
	return items, nil
}
