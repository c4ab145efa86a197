// Package trace wires OpenTelemetry spans for broker calls, narrator calls and
// timed operations. Spans go to stdout, or to the writer given to Init.
package trace

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "invest-dashboard"

// Span attribute keys shared by the decorators.
const (
	KeyStockCode = attribute.Key("stock.code")
	KeyBroker    = attribute.Key("broker.name")
)

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	enabled        bool
)

type settings struct {
	writer  io.Writer
	version string
	pretty  bool
}

type Option func(*settings)

// WithWriter sends spans to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(s *settings) { s.writer = w }
}

func WithVersion(v string) Option {
	return func(s *settings) { s.version = v }
}

// Init installs the span exporter unless LOG_TRACING_ENABLED is "false".
// TRACE_PRETTY=false writes one span per line.
func Init(ctx context.Context, opts ...Option) error {
	enabled = getEnv("LOG_TRACING_ENABLED", "true") == "true"
	if !enabled {
		return nil
	}

	s := settings{
		writer:  os.Stdout,
		version: "1.0.0",
		pretty:  getEnv("TRACE_PRETTY", "true") == "true",
	}
	for _, opt := range opts {
		opt(&s)
	}

	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(s.writer)}
	if s.pretty {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		enabled = false
		return err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(s.version),
		),
	)
	if err != nil {
		enabled = false
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(serviceName)
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	err := tracerProvider.Shutdown(ctx)
	tracerProvider = nil
	tracer = nil
	enabled = false
	return err
}

// StartSpan is a no-op returning the current span while tracing is off.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, opts...)
}

// Stock tags a span with the symbol it works on.
func Stock(code string) trace.SpanStartOption {
	return trace.WithAttributes(KeyStockCode.String(code))
}

// Broker tags a span with the backend serving it.
func Broker(name string) trace.SpanStartOption {
	return trace.WithAttributes(KeyBroker.String(name))
}

func Enabled() bool {
	return enabled
}

func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
