// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carterperez-dev/usermgmt/internal/config"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	return recorder
}

func TestStartAndEndSpan(t *testing.T) {
	recorder := withSpanRecorder(t)

	ctx, span := StartSpan(
		context.Background(),
		"test",
		"user.Create",
		attribute.String("user.username", "alice"),
	)
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	EndSpan(span, nil)

	_, failing := StartSpan(context.Background(), "test", "user.Delete")
	EndSpan(failing, errors.New("boom"))

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	assert.Equal(t, "user.Create", ended[0].Name())
	assert.Equal(t, codes.Unset, ended[0].Status().Code)

	assert.Equal(t, "user.Delete", ended[1].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "boom", ended[1].Status().Description)
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestNewTelemetry_Disabled(t *testing.T) {
	tel, err := NewTelemetry(
		context.Background(),
		config.OtelConfig{Enabled: false, ServiceName: "usermgmt"},
		config.AppConfig{Version: "test"},
	)
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSampleRatio(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, defaultSampleRatio},
		{-1, defaultSampleRatio},
		{1.5, defaultSampleRatio},
		{0.25, 0.25},
		{1, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sampleRatio(tt.in))
	}
}

func TestExporterOptions(t *testing.T) {
	opts := exporterOptions(config.OtelConfig{Endpoint: "collector:4317", Insecure: true})
	assert.Len(t, opts, 3)
}
