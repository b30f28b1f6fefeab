package observability

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability carries the otel meter and tracer for chat turns. A nil
// *Observability is valid and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	turnCounter    otelmetric.Int64Counter
	turnDuration   otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer exports the otel instruments through reg.
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Observability {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)

	o := &Observability{
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	o.meterProvider = provider

	meter := provider.Meter(serviceName)

	o.turnCounter, _ = meter.Int64Counter(
		"turns.processed",
		otelmetric.WithDescription("Number of chat turns processed"),
	)

	o.turnDuration, _ = meter.Float64Histogram(
		"turns.duration",
		otelmetric.WithDescription("Chat turn processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return o
}

// StartSpan opens a child span of whatever span ctx carries.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan closes span, marking it failed when err is set.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TraceID returns the trace id carried by ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func (o *Observability) RecordTurn(ctx context.Context, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("outcome", outcome))
	if o.turnCounter != nil {
		o.turnCounter.Add(ctx, 1, attrs)
	}
	if o.turnDuration != nil {
		o.turnDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		o.tracerProvider.Shutdown(ctx)
	}
}
