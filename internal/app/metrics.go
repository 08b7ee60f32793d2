package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Segment handoff outcomes for the segments_total counter.
const (
	SegmentOK    = "ok"
	SegmentEmpty = "empty"
	SegmentError = "error"
)

// Metrics holds the coordinator's prometheus collectors. Tests pass a
// fresh registry so parallel cases never collide on registration.
type Metrics struct {
	OpenRooms    prometheus.Gauge
	Participants prometheus.Gauge
	Signals      prometheus.Counter
	Segments     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OpenRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "callrelay_open_rooms",
			Help: "Number of rooms with at least one participant.",
		}),
		Participants: factory.NewGauge(prometheus.GaugeOpts{
			Name: "callrelay_participants",
			Help: "Number of sockets currently joined to a room.",
		}),
		Signals: factory.NewCounter(prometheus.CounterOpts{
			Name: "callrelay_signals_relayed_total",
			Help: "WebRTC signaling payloads relayed.",
		}),
		Segments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callrelay_segments_total",
			Help: "Audio segment handoffs by outcome.",
		}, []string{"outcome"}),
	}
}
