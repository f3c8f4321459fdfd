package telemetry

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	defaultMaxAttributeSize = 4096
	minAttributeSize        = 1024
	maxAttributeSize        = 65536
)

var (
	globalMutex          sync.RWMutex
	globalTracer         trace.Tracer
	globalTracerProvider *sdktrace.TracerProvider
	tracingEnabled       bool
	serviceVersion       = "dev"
)

// otelErrorHandler routes OTEL SDK errors to the logger so nothing reaches stderr in stdio mode
type otelErrorHandler struct {
	logger *logrus.Logger
}

func (h *otelErrorHandler) Handle(err error) {
	if err != nil {
		h.logger.WithError(err).Debug("OTEL: SDK error occurred")
	}
}

// InitTracer initialises tracing when OTEL_EXPORTER_OTLP_ENDPOINT is set.
// On any failure the noop tracer stays in place and the returned shutdown function is a no-op.
func InitTracer(logger *logrus.Logger, version string) (func() error, error) {
	globalMutex.Lock()
	defer globalMutex.Unlock()

	if version != "" {
		serviceVersion = version
	}
	noopShutdown := func() error { return nil }
	globalTracer = noop.NewTracerProvider().Tracer(instrumentationName)
	tracingEnabled = false

	if strings.EqualFold(os.Getenv("OTEL_SDK_DISABLED"), "true") {
		logger.Debug("OTEL: Explicitly disabled via OTEL_SDK_DISABLED")
		return noopShutdown, nil
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		logger.Debug("OTEL: Not configured (OTEL_EXPORTER_OTLP_ENDPOINT not set), using noop tracer")
		return noopShutdown, nil
	}

	logger.WithField("endpoint", endpoint).Info("OTEL: Initialising tracer")
	otel.SetErrorHandler(&otelErrorHandler{logger: logger})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		exporter *otlptrace.Exporter
		err      error
	)
	switch protocol := getOTLPProtocol(); protocol {
	case "grpc":
		exporter, err = otlptracegrpc.New(ctx)
	case "http/protobuf", "http":
		exporter, err = otlptracehttp.New(ctx)
	default:
		logger.WithField("protocol", protocol).Warn("OTEL: Unknown protocol, defaulting to http")
		exporter, err = otlptracehttp.New(ctx)
	}
	if err != nil {
		logger.WithError(err).Warn("OTEL: Failed to create exporter, falling back to noop tracer")
		return noopShutdown, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(ctx, logger)),
		sdktrace.WithSampler(createSampler(logger)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	globalTracer = tp.Tracer(instrumentationName)
	globalTracerProvider = tp
	tracingEnabled = true
	logger.Info("OTEL: Tracer initialised successfully")

	return func() error {
		globalMutex.Lock()
		defer globalMutex.Unlock()

		if globalTracerProvider == nil {
			return nil
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := globalTracerProvider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %w", err)
		}
		globalTracerProvider = nil
		return nil
	}, nil
}

// GetTracer returns the global tracer, or a noop tracer if tracing was never initialised
func GetTracer() trace.Tracer {
	globalMutex.RLock()
	defer globalMutex.RUnlock()

	if globalTracer == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return globalTracer
}

// IsEnabled returns true if tracing is enabled
func IsEnabled() bool {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return tracingEnabled
}

// StartToolSpan starts a span for one tool call. The caller must end it with EndToolSpan.
func StartToolSpan(ctx context.Context, toolName, invocationID, transport string, args map[string]any) (context.Context, trace.Span) {
	if !IsEnabled() {
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx, span := GetTracer().Start(ctx, SpanNameToolExecute, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String(AttrMCPToolName, toolName),
		attribute.String(AttrMCPInvocationID, invocationID),
		attribute.String(AttrMCPTransport, transport),
	)

	sanitised := SanitiseArguments(args)
	if limit := getMaxAttributeSize(); len(sanitised) > limit {
		span.SetAttributes(
			attribute.String(AttrMCPToolArguments, TruncateString(sanitised, limit)),
			attribute.Bool(AttrArgsTruncated, true),
		)
	} else {
		span.SetAttributes(attribute.String(AttrMCPToolArguments, sanitised))
	}

	return ctx, span
}

// EndToolSpan records the outcome of a tool call and ends its span
func EndToolSpan(span trace.Span, err error, errorType string) {
	if span == nil {
		return
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.Bool(AttrMCPToolSuccess, false),
			attribute.String(AttrMCPToolError, err.Error()),
			attribute.String(AttrMCPToolErrorType, errorType),
		)
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.Bool(AttrMCPToolSuccess, true))
	}

	span.End()
}

func newResource(ctx context.Context, logger *logrus.Logger) *resource.Resource {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(getServiceName()),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
		resource.WithFromEnv(),
	)
	if err != nil {
		logger.WithError(err).Warn("OTEL: Failed to create resource, using default")
		return resource.Default()
	}
	return res
}

func getOTLPProtocol() string {
	if protocol := os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"); protocol != "" {
		return protocol
	}
	if strings.Contains(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), ":4317") {
		return "grpc"
	}
	return "http/protobuf"
}

func getServiceName() string {
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		return name
	}
	return instrumentationName
}

func createSampler(logger *logrus.Logger) sdktrace.Sampler {
	ratio := parseRatio(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 1.0)

	switch sampler := os.Getenv("OTEL_TRACES_SAMPLER"); sampler {
	case "", "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(ratio)
	case "parentbased_always_on":
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case "parentbased_always_off":
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case "parentbased_traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	default:
		logger.WithField("sampler", sampler).Warn("OTEL: Unknown sampler type, using always_on")
		return sdktrace.AlwaysSample()
	}
}

// parseRatio parses a sampling ratio clamped to [0, 1]
func parseRatio(s string, defaultVal float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return min(max(f, 0), 1)
}

func getMaxAttributeSize() int {
	size, err := strconv.Atoi(os.Getenv("MCP_TRACING_MAX_ATTRIBUTE_SIZE"))
	if err != nil {
		return defaultMaxAttributeSize
	}
	return min(max(size, minAttributeSize), maxAttributeSize)
}
