// Package telemetry installs OpenTelemetry tracing and metrics.
//
// Spans and metrics are exported as JSON to rotating files next to the
// application log (~/.sqlchat/logs/traces.log and metrics.log). Nothing
// is sent over the network. When telemetry is disabled the global no-op
// providers stay in place and instrumentation costs nothing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// ServiceName is reported as service.name on every span and metric.
const ServiceName = "sqlchat"

// Version is reported as service.version.
var Version = "dev"

// Shutdown flushes exporters and closes their files.
type Shutdown func(context.Context) error

// Options configures Init.
type Options struct {
	Enabled bool
	Dir     string        // directory for traces.log and metrics.log
	Period  time.Duration // metric export interval, 10s by default

	// TraceWriter and MetricWriter replace the rotating files. Used by tests.
	TraceWriter  io.Writer
	MetricWriter io.Writer
}

// Init installs global tracer and meter providers. With Enabled false
// it does nothing and returns a no-op Shutdown.
func Init(ctx context.Context, opts Options) (Shutdown, error) {
	if !opts.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	var closers []io.Closer
	traceOut := opts.TraceWriter
	metricOut := opts.MetricWriter
	if traceOut == nil || metricOut == nil {
		if err := os.MkdirAll(opts.Dir, 0700); err != nil {
			return nil, fmt.Errorf("create telemetry dir: %w", err)
		}
	}
	if traceOut == nil {
		lj := rotatingFile(filepath.Join(opts.Dir, "traces.log"))
		closers = append(closers, lj)
		traceOut = lj
	}
	if metricOut == nil {
		lj := rotatingFile(filepath.Join(opts.Dir, "metrics.log"))
		closers = append(closers, lj)
		metricOut = lj
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceOut))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(metricOut))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}
	period := opts.Period
	if period <= 0 {
		period = 10 * time.Second
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(period))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		errs := []error{tp.Shutdown(ctx), mp.Shutdown(ctx)}
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	}, nil
}

func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}
