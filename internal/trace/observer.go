package trace

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"nuiprogress/internal/progress"
)

const instrumentationName = "nuiprogress/progress"

// Attribute keys set on run spans.
const (
	AttrRunID    = attribute.Key("nuiprogress.run.id")
	AttrLabel    = attribute.Key("nuiprogress.run.label")
	AttrDuration = attribute.Key("nuiprogress.run.duration_ms")
	AttrOutcome  = attribute.Key("nuiprogress.outcome")
	AttrPercent  = attribute.Key("nuiprogress.percent")
)

// OutcomeOverridden marks a span whose run was replaced by a new start.
const OutcomeOverridden = "overridden"

// RunObserver implements progress.Observer and records one span per run,
// from start until the host is told it completed. Run IDs that parse as
// UUIDs become the trace ID.
type RunObserver struct {
	progress.NoopObserver
	tracer oteltrace.Tracer

	mu    sync.Mutex
	spans map[string]oteltrace.Span
}

var _ progress.Observer = (*RunObserver)(nil)

// NewRunObserver creates a RunObserver. A nil provider records nothing but
// still tracks open runs, so the result is always safe to fan out to.
func NewRunObserver(provider oteltrace.TracerProvider) *RunObserver {
	if provider == nil {
		provider = noop.NewTracerProvider()
	}
	return &RunObserver{
		tracer: provider.Tracer(instrumentationName),
		spans:  make(map[string]oteltrace.Span),
	}
}

// OnStart opens the run span.
func (o *RunObserver) OnStart(run progress.Run) {
	ctx := context.Background()
	if traceID, ok := runTraceID(run.ID); ok {
		ctx = oteltrace.ContextWithSpanContext(ctx, oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
			TraceID:    traceID,
			TraceFlags: oteltrace.FlagsSampled,
		}))
	}

	_, span := o.tracer.Start(ctx, "progress.run",
		oteltrace.WithTimestamp(run.StartedAt),
		oteltrace.WithAttributes(
			AttrRunID.String(run.ID),
			AttrLabel.String(run.Label),
			AttrDuration.Int64(run.Duration.Milliseconds()),
		),
	)

	o.mu.Lock()
	o.spans[run.ID] = span
	o.mu.Unlock()
}

// OnOverride ends the span of a run replaced by a new start.
func (o *RunObserver) OnOverride(run progress.Run) {
	span := o.take(run.ID)
	if span == nil {
		return
	}
	span.SetAttributes(
		AttrOutcome.String(OutcomeOverridden),
		AttrPercent.Int(progress.Percent(run.Fraction)),
	)
	span.End()
}

// OnHide records when the exit transition began.
func (o *RunObserver) OnHide(run progress.Run, outcome progress.Outcome) {
	o.mu.Lock()
	span := o.spans[run.ID]
	o.mu.Unlock()
	if span == nil {
		return
	}
	span.AddEvent("hidden", oteltrace.WithAttributes(
		AttrOutcome.String(string(outcome)),
		AttrPercent.Int(progress.Percent(run.Fraction)),
	))
}

// OnComplete ends the span once the host has been notified.
func (o *RunObserver) OnComplete(run progress.Run, outcome progress.Outcome) {
	span := o.take(run.ID)
	if span == nil {
		return
	}
	span.SetAttributes(
		AttrOutcome.String(string(outcome)),
		AttrPercent.Int(progress.Percent(run.Fraction)),
	)
	if outcome == progress.OutcomeCancelled {
		span.SetStatus(codes.Unset, "cancelled")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Open returns the number of spans not yet ended.
func (o *RunObserver) Open() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.spans)
}

func (o *RunObserver) take(id string) oteltrace.Span {
	o.mu.Lock()
	defer o.mu.Unlock()
	span := o.spans[id]
	delete(o.spans, id)
	return span
}

func runTraceID(id string) (oteltrace.TraceID, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return oteltrace.TraceID{}, false
	}
	return oteltrace.TraceID(u), true
}
