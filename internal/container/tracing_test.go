package container_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutdown tracer provider: %v", err)
		}
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func spanNamed(spans tracetest.SpanStubs, name string) (tracetest.SpanStub, bool) {
	for _, s := range spans {
		if s.Name == name {
			return s, true
		}
	}
	return tracetest.SpanStub{}, false
}

func attributesToMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestMutations_AreTraced(t *testing.T) {
	exporter := setupTestTracer(t)
	f := newFixture(t)
	l := f.lists(t, "A", "B")
	exporter.Reset()

	_, err := f.store.ReorderLists(context.Background(), f.member.ID, f.board.ID, []uuid.UUID{l[1].ID, l[0].ID})
	require.NoError(t, err)

	span, ok := spanNamed(exporter.GetSpans(), "container.ReorderLists")
	require.True(t, ok)
	assert.Equal(t, codes.Unset, span.Status.Code)
	assert.Equal(t, f.member.ID.String(), attributesToMap(span.Attributes)["actor.id"])
}

func TestMutations_FailedSpanCarriesKind(t *testing.T) {
	exporter := setupTestTracer(t)
	f := newFixture(t)
	exporter.Reset()

	_, err := f.store.CreateList(context.Background(), f.stranger.ID, f.board.ID, "Todo")
	require.Error(t, err)

	span, ok := spanNamed(exporter.GetSpans(), "container.CreateList")
	require.True(t, ok)
	assert.Equal(t, codes.Error, span.Status.Code)
	assert.Equal(t, "forbidden", span.Status.Description)
}
