package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Options{Enabled: false, Dir: "/nonexistent/should/not/be/created"})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
}

func TestInitExportsSpansAndMetrics(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	var traces, metrics bytes.Buffer
	shutdown, err := Init(context.Background(), Options{Enabled: true, TraceWriter: &traces, MetricWriter: &metrics})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx := context.Background()
	_, span := otel.Tracer("test").Start(ctx, "chain.respond")
	span.End()
	hist, err := otel.Meter("test").Float64Histogram("sqlchat.stage.duration_ms")
	if err != nil {
		t.Fatalf("Float64Histogram() error = %v", err)
	}
	hist.Record(ctx, 12)

	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}

	if !strings.Contains(traces.String(), "chain.respond") {
		t.Errorf("trace output missing span: %s", traces.String())
	}
	if !strings.Contains(traces.String(), ServiceName) {
		t.Errorf("trace output missing service name")
	}
	if !strings.Contains(metrics.String(), "sqlchat.stage.duration_ms") {
		t.Errorf("metric output missing histogram: %s", metrics.String())
	}
}
