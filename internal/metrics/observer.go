package metrics

import "nuiprogress/internal/progress"

// Observer records run lifecycle metrics.
type Observer struct {
	progress.NoopObserver
}

var _ progress.Observer = (*Observer)(nil)

// NewObserver creates an Observer, registering collectors if needed.
func NewObserver() *Observer {
	Init()
	return &Observer{}
}

// OnStart implements progress.Observer.
func (*Observer) OnStart(progress.Run) {
	ObserveRunStarted()
}

// OnOverride implements progress.Observer.
func (*Observer) OnOverride(progress.Run) {
	ObserveRunOverridden()
}

// OnTick implements progress.Observer.
func (*Observer) OnTick(run progress.Run) {
	ObserveTick(progress.Percent(run.Fraction))
}

// OnComplete implements progress.Observer.
func (*Observer) OnComplete(_ progress.Run, outcome progress.Outcome) {
	ObserveRunFinished(string(outcome))
}
