// Package tracing exports spans for backend analyses to an OpenTelemetry
// collector.
package tracing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/suricata-ml/dashboard/internal/analyzer"
	"github.com/suricata-ml/dashboard/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies the dashboard's tracer.
const InstrumentationName = "github.com/suricata-ml/dashboard"

// Options configures the exporter.
type Options struct {
	// Endpoint is the OTLP/gRPC collector address, e.g. "localhost:4317".
	Endpoint    string
	ServiceName string
	Version     string

	// ConnectionTimeout bounds exporter setup (default: 10s).
	ConnectionTimeout time.Duration
}

// Setup installs a global tracer provider exporting to opts.Endpoint and the
// W3C trace-context propagator. The returned function flushes pending spans.
// With no endpoint nothing is installed and spans are dropped.
func Setup(opts Options) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if opts.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "suricata-dashboard"
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(opts.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the dashboard tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// Compile-time interface check.
var _ analyzer.Analyzer = (*tracedAnalyzer)(nil)

type tracedAnalyzer struct {
	next   analyzer.Analyzer
	tracer trace.Tracer
}

// WrapAnalyzer records one span per analysis around next.
func WrapAnalyzer(next analyzer.Analyzer, tracer trace.Tracer) analyzer.Analyzer {
	return &tracedAnalyzer{next: next, tracer: tracer}
}

func (t *tracedAnalyzer) Name() string {
	return t.next.Name()
}

func (t *tracedAnalyzer) Analyze(ctx context.Context, name string, content io.Reader) (*models.AnalysisResult, error) {
	ctx, span := t.tracer.Start(ctx, "analyze",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("dashboard.backend", t.next.Name()),
			attribute.String("dashboard.file.name", name),
		),
	)
	defer span.End()

	result, err := t.next.Analyze(ctx, name, content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("dashboard.result.total_processed", result.TotalProcessed),
		attribute.Int("dashboard.result.categories", len(result.ClassCounts)),
	)
	return result, nil
}
