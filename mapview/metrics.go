package mapview

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	transitionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_camera_transitions_total",
		Help: "Camera transitions started by interaction controllers.",
	})
	eventsSuppressed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_events_suppressed_total",
		Help: "Interaction events dropped while a camera transition was settling.",
	})
	settlesSuperseded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_settles_superseded_total",
		Help: "Settle callbacks that arrived after a newer transition had started.",
	})
	eventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_session_events_dropped_total",
		Help: "Events dropped because a session queue was full.",
	})
	resyncsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fortmap_marker_resyncs_total",
		Help: "Marker reconciliation passes.",
	})
	sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fortmap_sessions_active",
		Help: "Currently open map sessions.",
	})
)

func init() {
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(eventsSuppressed)
	prometheus.MustRegister(settlesSuperseded)
	prometheus.MustRegister(eventsDropped)
	prometheus.MustRegister(resyncsTotal)
	prometheus.MustRegister(sessionsActive)
}
