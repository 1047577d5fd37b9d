package trace

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"nuiprogress/internal/progress"
)

func newTestObserver(t *testing.T) (*RunObserver, *tracetest.InMemoryExporter) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewRunObserver(tp), exp
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRunObserver_CompletedRun(t *testing.T) {
	obs, exp := newTestObserver(t)
	id := uuid.NewString()
	run := progress.Run{ID: id, Label: "Loading", Duration: time.Second, StartedAt: time.Now()}

	obs.OnStart(run)
	require.Equal(t, 1, obs.Open())
	run.Fraction = 1
	obs.OnHide(run, progress.OutcomeCompleted)
	require.Empty(t, exp.GetSpans())
	obs.OnComplete(run, progress.OutcomeCompleted)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	require.Equal(t, "progress.run", span.Name)
	require.Equal(t, uuid.MustParse(id), uuid.UUID(span.SpanContext.TraceID()))
	require.Equal(t, codes.Ok, span.Status.Code)
	require.Len(t, span.Events, 1)
	require.Equal(t, "hidden", span.Events[0].Name)

	label, ok := attrValue(span.Attributes, AttrLabel)
	require.True(t, ok)
	require.Equal(t, "Loading", label.AsString())
	outcome, ok := attrValue(span.Attributes, AttrOutcome)
	require.True(t, ok)
	require.Equal(t, "completed", outcome.AsString())
	percent, ok := attrValue(span.Attributes, AttrPercent)
	require.True(t, ok)
	require.Equal(t, int64(100), percent.AsInt64())
	require.Zero(t, obs.Open())
}

func TestRunObserver_OverriddenRun(t *testing.T) {
	obs, exp := newTestObserver(t)
	run := progress.Run{ID: "not-a-uuid", Label: "First", Duration: time.Second, StartedAt: time.Now()}

	obs.OnStart(run)
	run.Fraction = 0.3
	obs.OnOverride(run)
	obs.OnComplete(run, progress.OutcomeCompleted)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	outcome, ok := attrValue(spans[0].Attributes, AttrOutcome)
	require.True(t, ok)
	require.Equal(t, OutcomeOverridden, outcome.AsString())
	require.True(t, spans[0].SpanContext.TraceID().IsValid())
}

func TestRunObserver_UnknownRunIsIgnored(t *testing.T) {
	obs, exp := newTestObserver(t)
	obs.OnHide(progress.Run{ID: "x"}, progress.OutcomeCancelled)
	obs.OnComplete(progress.Run{ID: "x"}, progress.OutcomeCancelled)
	require.Empty(t, exp.GetSpans())
}

func TestNewRunObserver_NilProviderIsUsable(t *testing.T) {
	obs := NewRunObserver(nil)
	require.NotNil(t, obs)

	multi := progress.NewMultiObserver(obs)
	run := progress.Run{ID: uuid.NewString(), Label: "Loading", Duration: time.Second}
	require.NotPanics(t, func() {
		multi.OnStart(run)
		multi.OnTick(run)
		multi.OnHide(run, progress.OutcomeCompleted)
		multi.OnComplete(run, progress.OutcomeCompleted)
	})
	require.Zero(t, obs.Open())
}

func TestNewOTLPExporter_Disabled(t *testing.T) {
	exp, err := NewOTLPExporter(context.Background(), "", "")
	require.NoError(t, err)
	require.Nil(t, exp)
	require.Nil(t, exp.Provider())
	require.NoError(t, exp.Shutdown(context.Background()))
}
