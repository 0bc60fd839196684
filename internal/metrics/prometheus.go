package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the global container of Prometheus collectors for a
// simulation run: admission-control (column generation / LARAC / RMP)
// and forwarding-fabric (packets, queues) instrumentation.
type Metrics struct {
	// Admission control
	ColGenIterationsTotal *prometheus.HistogramVec
	ColGenDuration        *prometheus.HistogramVec
	RMPSolveDuration      *prometheus.HistogramVec
	PricingSolveDuration  *prometheus.HistogramVec
	FlowsAdmittedTotal    *prometheus.CounterVec
	FlowsRejectedTotal    *prometheus.CounterVec
	ColumnsGeneratedTotal prometheus.Counter

	// Forwarding fabric
	PacketsForwardedTotal  *prometheus.CounterVec
	PacketsDroppedTotal    *prometheus.CounterVec
	QueueDepth             *prometheus.GaugeVec
	MappingMissesTotal     *prometheus.CounterVec
	NodeCycleDuration      *prometheus.HistogramVec
	NodePacketsInFlight    prometheus.Gauge
	NodeActivity           *NodeActivityTracker

	// Network/flow size
	NetworkNodesTotal prometheus.Gauge
	NetworkLinksTotal prometheus.Gauge
	FlowsSubmitted    prometheus.Gauge

	// System
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Run info
	RunInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics creates and registers the collector set.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		ColGenIterationsTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "colgen_iterations_total",
				Help:      "Number of column-generation iterations per run",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
			},
			[]string{"outcome"},
		),

		ColGenDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "colgen_duration_seconds",
				Help:      "Wall-clock duration of the column-generation loop",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),

		RMPSolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rmp_solve_duration_seconds",
				Help:      "Duration of a single restricted-master-problem simplex solve",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"status"},
		),

		PricingSolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pricing_solve_duration_seconds",
				Help:      "Duration of a single LARAC pricing-subproblem solve",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"feasible"},
		),

		FlowsAdmittedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "flows_admitted_total",
				Help:      "Total number of flows admitted by randomized rounding",
			},
			[]string{"run"},
		),

		FlowsRejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "flows_rejected_total",
				Help:      "Total number of flows rejected (no feasible column or not rounded in)",
			},
			[]string{"reason"},
		),

		ColumnsGeneratedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "columns_generated_total",
				Help:      "Total number of shaping-parameter columns added to the RMP",
			},
		),

		PacketsForwardedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "packets_forwarded_total",
				Help:      "Total number of packets forwarded by a node",
			},
			[]string{"node"},
		),

		PacketsDroppedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "packets_dropped_total",
				Help:      "Total number of packets dropped",
			},
			[]string{"node", "reason"},
		),

		QueueDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queue_depth",
				Help:      "Current number of queued packets per node and cycle queue",
			},
			[]string{"node", "queue"},
		),

		MappingMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "mapping_misses_total",
				Help:      "Total number of packets with no learned label-remapping entry",
			},
			[]string{"node"},
		),

		NodeCycleDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "node_cycle_processing_seconds",
				Help:      "Wall-clock time a node spends draining its active queue (or head ingress flow) once per cycle",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"role"},
		),

		NodePacketsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "node_packets_in_flight",
				Help:      "Number of nodes currently draining a cycle queue",
			},
		),

		NetworkNodesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "network_nodes_total",
				Help:      "Number of nodes in the simulated network",
			},
		),

		NetworkLinksTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "network_links_total",
				Help:      "Number of links in the simulated network",
			},
		),

		FlowsSubmitted: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "flows_submitted",
				Help:      "Number of flows submitted for admission in this run",
			},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		RunInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_info",
				Help:      "Static information about the current run",
			},
			[]string{"version", "run_id"},
		),
	}

	m.NodeActivity = NewNodeActivityTracker(m.NodePacketsInFlight)
	prometheus.MustRegister(NewRuntimeCollector(namespace, subsystem))

	defaultMetrics = m
	return m
}

// Get returns the global metrics, initializing them with defaults if
// no run has called InitMetrics yet.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("cqfsim", "")
	}
	return defaultMetrics
}

// RecordColGen records one column-generation loop's outcome.
func (m *Metrics) RecordColGen(outcome string, iterations int, duration time.Duration) {
	m.ColGenIterationsTotal.WithLabelValues(outcome).Observe(float64(iterations))
	m.ColGenDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRMPSolve records one simplex solve of the restricted master problem.
func (m *Metrics) RecordRMPSolve(status string, duration time.Duration) {
	m.RMPSolveDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordPricingSolve records one LARAC pricing-subproblem solve.
func (m *Metrics) RecordPricingSolve(feasible bool, duration time.Duration) {
	label := "infeasible"
	if feasible {
		label = "feasible"
	}
	m.PricingSolveDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordAdmission records the rounding outcome for one flow.
func (m *Metrics) RecordAdmission(runID string, admitted bool, reason string) {
	if admitted {
		m.FlowsAdmittedTotal.WithLabelValues(runID).Inc()
		return
	}
	m.FlowsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordPacketForwarded increments the forwarded-packet counter for node.
func (m *Metrics) RecordPacketForwarded(node string) {
	m.PacketsForwardedTotal.WithLabelValues(node).Inc()
}

// RecordPacketDropped increments the dropped-packet counter for node/reason.
func (m *Metrics) RecordPacketDropped(node, reason string) {
	m.PacketsDroppedTotal.WithLabelValues(node, reason).Inc()
}

// SetQueueDepth sets the current queue depth gauge for node/queue.
func (m *Metrics) SetQueueDepth(node, queue string, depth int) {
	m.QueueDepth.WithLabelValues(node, queue).Set(float64(depth))
}

// SetRunInfo sets the static run-info gauge to 1 for the given labels.
func (m *Metrics) SetRunInfo(version, runID string) {
	m.RunInfo.WithLabelValues(version, runID).Set(1)
}

// Handler returns the HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer starts the HTTP server exposing /metrics and /health.
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
