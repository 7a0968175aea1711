package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/protanno/internal/adapters/telemetry"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/protanno/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupMonitor(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value.AsInterface()
	}
	return m
}

func TestOTelTracer_StartAttributes(t *testing.T) {
	sr := setupMonitor(t)
	tracer := telemetry.NewOTelTracer("test-tracer")

	_, span := tracer.Start(context.Background(), "acquisition.fetch",
		ports.WithAttribute("source", "uniprot"),
		ports.WithAttribute("identifiers", 3),
	)
	span.SetAttribute("failed", int64(1))
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("outage", false)
	span.SetAttribute("fields", []string{"ec", "keyword"})
	span.SetAttribute("other", struct{}{})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "uniprot", attrs["source"])
	assert.Equal(t, int64(3), attrs["identifiers"])
	assert.Equal(t, int64(1), attrs["failed"])
	assert.InEpsilon(t, 0.5, attrs["ratio"], 0.001)
	assert.Equal(t, false, attrs["outage"])
	assert.Equal(t, []string{"ec", "keyword"}, attrs["fields"])
	assert.Equal(t, "{}", attrs["other"])
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	sr := setupMonitor(t)
	tracer := telemetry.NewOTelTracer("test-tracer")

	// Without a span in the context nothing is recorded.
	tracer.EmitPlan(context.Background(), map[string][]string{"uniprot": {"ec"}})
	assert.Empty(t, sr.Ended())

	ctx, span := tracer.Start(context.Background(), "annotate")
	tracer.EmitPlan(ctx, map[string][]string{
		"uniprot":  {"ec", "organism_id"},
		"taxonomy": {"kingdom"},
	})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "plan_emitted", events[0].Name)
	attrs := attrMap(events[0].Attributes)
	assert.Equal(t, []string{"kingdom"}, attrs["plan.taxonomy"])
	assert.Equal(t, []string{"ec", "organism_id"}, attrs["plan.uniprot"])
}

func TestOTelSpan_RecordErrorAndWrite(t *testing.T) {
	sr := setupMonitor(t)
	tracer := telemetry.NewOTelTracer("test-tracer")

	_, span := tracer.Start(context.Background(), "failing")
	n, err := span.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	span.RecordError(nil)
	span.RecordError(errors.New("source unavailable"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "source unavailable", spans[0].Status().Description)
	names := make([]string, 0, len(spans[0].Events()))
	for _, e := range spans[0].Events() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"log", "exception"}, names)
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "noop")
	assert.Equal(t, ctx, got)
	tracer.EmitPlan(ctx, map[string][]string{"uniprot": {"ec"}})
	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	n, err := span.Write([]byte("test log"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	span.End()
}

func TestLogBridge_OnEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	var infos, warns []string
	log.EXPECT().Info(gomock.Any()).Do(func(msg string) { infos = append(infos, msg) })
	log.EXPECT().Warn(gomock.Any()).Do(func(msg string) { warns = append(warns, msg) })

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewLogBridge(log)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	otel.SetTracerProvider(tp)
	tracer := telemetry.NewOTelTracer("test-tracer")

	_, ok := tracer.Start(context.Background(), "cache.lookup", ports.WithAttribute("hit", true))
	ok.End()
	_, bad := tracer.Start(context.Background(), "fetch.interpro")
	bad.RecordError(errors.New("outage"))
	bad.End()

	require.Len(t, infos, 1)
	assert.True(t, strings.HasPrefix(infos[0], "span cache.lookup "), infos[0])
	assert.Contains(t, infos[0], "hit=true")
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "span fetch.interpro")
	assert.Contains(t, warns[0], "error=outage")
}

func TestLogBridge_NilLogger(t *testing.T) {
	bridge := telemetry.NewLogBridge(nil)
	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}

func TestInstallLogging(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).Times(1)

	shutdown := telemetry.InstallLogging(log)
	_, span := telemetry.NewOTelTracer("test-tracer").Start(context.Background(), "annotate")
	span.End()

	require.NoError(t, shutdown(context.Background()))
}
