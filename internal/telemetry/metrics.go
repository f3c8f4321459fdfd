package telemetry

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const defaultMetricExportInterval = 60 * time.Second

var (
	metricsMutex        sync.RWMutex
	globalMeterProvider *sdkmetric.MeterProvider
	metricsEnabled      bool

	toolCallsCounter      metric.Int64Counter
	toolDurationHistogram metric.Float64Histogram
	toolErrorsCounter     metric.Int64Counter
)

// InitMetrics initialises the meter provider when OTEL_EXPORTER_OTLP_ENDPOINT is set.
// Call after InitTracer.
func InitMetrics(logger *logrus.Logger) (func() error, error) {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	noopShutdown := func() error { return nil }
	metricsEnabled = false

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" || !IsEnabled() {
		logger.Debug("OTEL Metrics: Not configured, using noop meter")
		return noopShutdown, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	if getOTLPProtocol() == "grpc" {
		exporter, err = otlpmetricgrpc.New(ctx)
	} else {
		exporter, err = otlpmetrichttp.New(ctx)
	}
	if err != nil {
		logger.WithError(err).Warn("OTEL Metrics: Failed to create exporter, falling back to noop meter")
		return noopShutdown, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(getMetricExportInterval()),
		)),
		sdkmetric.WithResource(newResource(ctx, logger)),
	)
	otel.SetMeterProvider(provider)

	if err := initInstruments(provider.Meter(instrumentationName)); err != nil {
		logger.WithError(err).Error("OTEL Metrics: Failed to create instruments")
		_ = provider.Shutdown(ctx)
		return noopShutdown, err
	}

	globalMeterProvider = provider
	metricsEnabled = true
	logger.Info("OTEL Metrics: Meter initialised successfully")

	return func() error {
		metricsMutex.Lock()
		defer metricsMutex.Unlock()

		if globalMeterProvider == nil {
			return nil
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		err := globalMeterProvider.Shutdown(shutdownCtx)
		globalMeterProvider = nil
		metricsEnabled = false
		return err
	}, nil
}

func initInstruments(meter metric.Meter) error {
	var err error

	toolCallsCounter, err = meter.Int64Counter(
		"mcp.tool.calls",
		metric.WithDescription("Total tool invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	toolDurationHistogram, err = meter.Float64Histogram(
		"mcp.tool.duration",
		metric.WithDescription("Tool execution duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	)
	if err != nil {
		return err
	}

	toolErrorsCounter, err = meter.Int64Counter(
		"mcp.tool.errors",
		metric.WithDescription("Tool execution errors by type"),
		metric.WithUnit("{error}"),
	)
	return err
}

// IsMetricsEnabled returns true if metrics are being exported
func IsMetricsEnabled() bool {
	metricsMutex.RLock()
	defer metricsMutex.RUnlock()
	return metricsEnabled
}

// RecordToolCall records a tool invocation and its duration
func RecordToolCall(ctx context.Context, toolName, transport string, success bool, duration time.Duration) {
	if !IsMetricsEnabled() {
		return
	}

	result := "success"
	if !success {
		result = "error"
	}

	toolCallsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.name", toolName),
		attribute.String("transport", transport),
		attribute.String("result", result),
	))
	toolDurationHistogram.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(
		attribute.String("tool.name", toolName),
		attribute.String("transport", transport),
	))
}

// RecordToolError records a categorised tool error
func RecordToolError(ctx context.Context, toolName, errorType string) {
	if !IsMetricsEnabled() {
		return
	}

	toolErrorsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.name", toolName),
		attribute.String("error.type", errorType),
	))
}

func getMetricExportInterval() time.Duration {
	if v := os.Getenv("OTEL_METRIC_EXPORT_INTERVAL"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil && ms > 0 {
			return ms
		}
	}
	return defaultMetricExportInterval
}
