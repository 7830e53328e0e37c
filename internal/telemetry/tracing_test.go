package telemetry

import (
	"context"
	"testing"

	"github.com/everydog-league/api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracingNoneExporter(t *testing.T) {
	cfg := config.TracingConfig{
		Enabled:     true,
		Exporter:    "none",
		SampleRate:  1,
		ServiceName: "everydog-test",
	}
	shutdown, err := InitTracing(context.Background(), cfg, "test")
	require.NoError(t, err)

	_, span := Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracingUnknownExporter(t *testing.T) {
	cfg := config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRate: 1, ServiceName: "x"}
	_, err := InitTracing(context.Background(), cfg, "test")
	assert.Error(t, err)
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}
