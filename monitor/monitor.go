// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ActiveRooms    prometheus.Gauge
	KnownPeers     prometheus.Gauge
	MovesSubmitted prometheus.Counter
	RoundsResolved prometheus.Counter
	RequestLatency prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of rooms in the registry",
		}),
		KnownPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "known_peers",
			Help:      "Peers currently within the discovery TTL window",
		}),
		MovesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_submitted_total",
			Help:      "Total accepted move submissions",
		}),
		RoundsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_resolved_total",
			Help:      "Total resolved rounds",
		}),
		RequestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_latency_seconds",
			Help:      "Room operation handling latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.ActiveRooms,
		m.KnownPeers,
		m.MovesSubmitted,
		m.RoundsResolved,
		m.RequestLatency,
	)

	return m
}

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))
	mux.Handle("/debug/vars", expvar.Handler())

	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

func (m *Monitor) SetKnownPeers(count int) {
	m.metrics.KnownPeers.Set(float64(count))
}

func (m *Monitor) IncMovesSubmitted() {
	m.metrics.MovesSubmitted.Inc()
}

func (m *Monitor) IncRoundsResolved() {
	m.metrics.RoundsResolved.Inc()
}

func (m *Monitor) ObserveRequestLatency(duration time.Duration) {
	m.metrics.RequestLatency.Observe(duration.Seconds())
}
