// Package metrics exposes Prometheus collectors for the result bot.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	probesTotal        *prometheus.CounterVec
	probeDuration      *prometheus.HistogramVec
	sweepsTotal        *prometheus.CounterVec
	notificationsTotal prometheus.Counter
	commandsTotal      *prometheus.CounterVec
	subscribersGauge   prometheus.Gauge

	once sync.Once
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		probesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resultbot_probes_total",
				Help: "Total portal probes, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		probeDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resultbot_probe_duration_seconds",
				Help:    "Histogram of portal probe latencies, labeled by outcome.",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"outcome"},
		)

		sweepsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resultbot_sweeps_total",
				Help: "Total sweeps, labeled by trigger and final status.",
			},
			[]string{"trigger", "status"},
		)

		notificationsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "resultbot_notifications_sent_total",
				Help: "Total result notifications handed to the chat transport.",
			},
		)

		commandsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resultbot_commands_total",
				Help: "Total inbound commands processed, labeled by verb.",
			},
			[]string{"verb"},
		)

		subscribersGauge = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "resultbot_subscribers",
				Help: "Subscribers in the registry as of the last sweep.",
			},
		)
	})
}

// ProbeRecorded counts one finished probe and observes its latency.
func ProbeRecorded(outcome string, seconds float64) {
	if probesTotal == nil {
		return
	}
	probesTotal.WithLabelValues(outcome).Inc()
	probeDuration.WithLabelValues(outcome).Observe(seconds)
}

// SweepFinished counts one completed sweep.
func SweepFinished(trigger, status string) {
	if sweepsTotal == nil {
		return
	}
	sweepsTotal.WithLabelValues(trigger, status).Inc()
}

// NotificationSent counts one notification handed to the transport.
func NotificationSent() {
	if notificationsTotal == nil {
		return
	}
	notificationsTotal.Inc()
}

// CommandHandled counts one processed command verb.
func CommandHandled(verb string) {
	if commandsTotal == nil {
		return
	}
	commandsTotal.WithLabelValues(verb).Inc()
}

// SubscriberCount records the registry size observed by a sweep.
func SubscriberCount(n int) {
	if subscribersGauge == nil {
		return
	}
	subscribersGauge.Set(float64(n))
}
