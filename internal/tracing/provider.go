// Package tracing exports one OpenTelemetry client span per request and
// propagates W3C trace context to the target.
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/torosent/pressure/internal/config"
)

const (
	defaultServiceName  = "pressure"
	instrumentationName = "github.com/torosent/pressure"
)

// Attribute keys shared by every span of a run.
const (
	RunIDKey       = attribute.Key("pressure.run_id")
	RunModeKey     = attribute.Key("pressure.mode")
	ConcurrencyKey = attribute.Key("pressure.concurrency")
)

// RunInfo identifies the load test a span belongs to.
type RunInfo struct {
	ID          string
	Mode        string
	Concurrency int
}

func (r RunInfo) attributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if r.ID != "" {
		attrs = append(attrs, RunIDKey.String(r.ID))
	}
	if r.Mode != "" {
		attrs = append(attrs, RunModeKey.String(r.Mode))
	}
	if r.Concurrency > 0 {
		attrs = append(attrs, ConcurrencyKey.Int(r.Concurrency))
	}
	return attrs
}

// Provider owns the span pipeline of one run. A nil or disabled Provider
// hands out no-op spans and injects nothing.
type Provider struct {
	tp         *sdktrace.TracerProvider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	runAttrs   []attribute.KeyValue
}

// Init builds a Provider exporting over OTLP. Without an endpoint it returns
// a disabled Provider.
func Init(ctx context.Context, cfg config.TracingConfig, run RunInfo) (*Provider, error) {
	if !cfg.Enabled() {
		return &Provider{}, nil
	}
	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		return nil, fmt.Errorf("tracing sample_rate must be between 0.0 and 1.0, got %g", cfg.SampleRate)
	}

	res, err := newResource(ctx, cfg.ServiceName, run)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)

	p := newProvider(tp, run, cfg.ShouldPropagate())
	if p.propagator != nil {
		otel.SetTextMapPropagator(p.propagator)
	}
	return p, nil
}

// NewWithExporter builds a Provider that sends every span synchronously to
// exp, sampling all of them.
func NewWithExporter(exp sdktrace.SpanExporter, run RunInfo, propagate bool) *Provider {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	return newProvider(tp, run, propagate)
}

func newProvider(tp *sdktrace.TracerProvider, run RunInfo, propagate bool) *Provider {
	p := &Provider{
		tp:       tp,
		tracer:   tp.Tracer(instrumentationName),
		runAttrs: run.attributes(),
	}
	if propagate {
		p.propagator = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	}
	return p
}

// Propagates reports whether trace context is injected into requests.
func (p *Provider) Propagates() bool {
	return p != nil && p.propagator != nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

func (p *Provider) tracerOrNoop() trace.Tracer {
	if p == nil || p.tracer == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return p.tracer
}

// newResource names the service and tags it with the run. OTEL_SERVICE_NAME
// and OTEL_RESOURCE_ATTRIBUTES override the default name; an explicit
// service name overrides both.
func newResource(ctx context.Context, serviceName string, run RunInfo) (*resource.Resource, error) {
	opts := []resource.Option{
		resource.WithAttributes(semconv.ServiceName(defaultServiceName)),
		resource.WithFromEnv(),
	}
	if serviceName != "" {
		opts = append(opts, resource.WithAttributes(semconv.ServiceName(serviceName)))
	}
	if run.ID != "" {
		opts = append(opts, resource.WithAttributes(semconv.ServiceInstanceID(run.ID)))
	}
	return resource.New(ctx, opts...)
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func newExporter(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	switch protocol := strings.ToLower(cfg.Protocol); protocol {
	case "", "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts,
				otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			)
		}
		return otlptracegrpc.New(ctx, opts...)
	case "http":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q: use \"grpc\" or \"http\"", protocol)
	}
}
