package music

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the playback counters exposed on the metrics endpoint.
type Metrics struct {
	TracksPlayed   prometheus.Counter
	TracksQueued   prometheus.Counter
	ActiveSessions prometheus.Gauge
}

// NewMetrics registers the playback metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TracksPlayed: f.NewCounter(prometheus.CounterOpts{
			Name: "soundwarden_tracks_played_total",
			Help: "Tracks started across all guilds.",
		}),
		TracksQueued: f.NewCounter(prometheus.CounterOpts{
			Name: "soundwarden_tracks_queued_total",
			Help: "Tracks queued behind a playing track.",
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "soundwarden_active_sessions",
			Help: "Guilds with a live playback session.",
		}),
	}
}
