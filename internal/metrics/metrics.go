// Package metrics exposes Prometheus collectors for the progress overlay.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runsStartedTotal        prometheus.Counter
	runsOverriddenTotal     prometheus.Counter
	runsFinishedTotal       *prometheus.CounterVec
	ticksTotal              prometheus.Counter
	progressPercent         prometheus.Gauge
	bridgeMessagesTotal     *prometheus.CounterVec
	hostNotificationsTotal  *prometheus.CounterVec
	hostNotifyDurationHisto *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		runsStartedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nuiprogress_runs_started_total",
				Help: "Total number of progress runs started.",
			},
		)

		runsOverriddenTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nuiprogress_runs_overridden_total",
				Help: "Total number of runs replaced by a new start before finishing.",
			},
		)

		runsFinishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nuiprogress_runs_finished_total",
				Help: "Total number of runs whose exit transition finished, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		ticksTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nuiprogress_ticks_total",
				Help: "Total number of progress ticks processed.",
			},
		)

		progressPercent = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "nuiprogress_progress_percent",
				Help: "Displayed percentage of the current run.",
			},
		)

		bridgeMessagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nuiprogress_bridge_messages_total",
				Help: "Total number of host messages received, labeled by action.",
			},
			[]string{"action"},
		)

		hostNotificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nuiprogress_host_notifications_total",
				Help: "Total number of notifications sent to the host, labeled by event and result.",
			},
			[]string{"event", "result"},
		)

		hostNotifyDurationHisto = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nuiprogress_host_notify_duration_seconds",
				Help:    "Histogram of host notification latencies, labeled by event.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"event"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveRunStarted increments the started counter.
func ObserveRunStarted() {
	Init()
	runsStartedTotal.Inc()
	progressPercent.Set(0)
}

// ObserveRunOverridden increments the override counter.
func ObserveRunOverridden() {
	Init()
	runsOverriddenTotal.Inc()
}

// ObserveTick records a tick and the percentage it produced.
func ObserveTick(percent int) {
	Init()
	ticksTotal.Inc()
	progressPercent.Set(float64(percent))
}

// ObserveRunFinished increments the finished counter for outcome.
func ObserveRunFinished(outcome string) {
	Init()
	runsFinishedTotal.WithLabelValues(outcome).Inc()
	progressPercent.Set(0)
}

// ObserveBridgeMessage counts an inbound host message.
func ObserveBridgeMessage(action string) {
	Init()
	bridgeMessagesTotal.WithLabelValues(action).Inc()
}

// ObserveHostNotification records one outbound notification attempt.
func ObserveHostNotification(event string, err error, duration time.Duration) {
	Init()
	result := "ok"
	if err != nil {
		result = "error"
	}
	hostNotificationsTotal.WithLabelValues(event, result).Inc()
	hostNotifyDurationHisto.WithLabelValues(event).Observe(duration.Seconds())
}
