package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// HTTP Requests Total (Counter)
	// Counts how many requests arrive, labeled by method, path, and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beams_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP Request Duration (Histogram)
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beams_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "path"},
	)

	// TicksTotal counts simulation ticks.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beams_ticks_total",
		Help: "Total number of simulation ticks run",
	})

	// TickDuration measures one full tick (lifecycle, rotation, traversal).
	// Buckets go from microseconds (small graphs) to a full 60 FPS frame budget.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "beams_tick_duration_seconds",
		Help:    "Duration of a simulation tick in seconds",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.0166},
	})

	// EdgeBreaksTotal counts edges removed by the lifecycle.
	EdgeBreaksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beams_edge_breaks_total",
		Help: "Total number of edges broken and rewired",
	})

	// HopsTotal counts hops, labeled by whether an edge was found to count them on.
	HopsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beams_hops_total",
			Help: "Total number of entity hops",
		},
		[]string{"recorded"},
	)

	// DeadEndsTotal counts entities that fell off the graph.
	DeadEndsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beams_dead_ends_total",
			Help: "Total number of entities that reached an isolated node",
		},
		[]string{"mode"},
	)

	// Edges tracks the current size of the edge map.
	Edges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beams_edges",
		Help: "Number of edges in the graph",
	})

	// EntitiesByMode tracks how many entities are in each motion mode.
	EntitiesByMode = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "beams_entities",
			Help: "Number of entities per motion mode",
		},
		[]string{"mode"},
	)

	// StreamClients tracks connected frame stream subscribers.
	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beams_stream_clients",
		Help: "Number of connected frame stream clients",
	})
)
