package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a
// pipeline run. The exclusion and drop counters double as the audit trail:
// every row the pipeline silently removes increments exactly one of them.
type Metrics struct {
	FacilityRowsRead   prometheus.Counter
	PopulationRowsRead prometheus.Counter
	GeometryVertices   prometheus.Counter

	FacilitiesExcluded *prometheus.CounterVec // label: reason
	JoinDrops          *prometheus.CounterVec // label: reason={no_beds,zero_population}
	GeometryMisses     *prometheus.CounterVec // label: side={polygon,data}

	CountiesJoined   prometheus.Gauge
	PipelineRunning  prometheus.Gauge
	ArtifactsWritten prometheus.Counter

	StageDuration *prometheus.HistogramVec // label: stage
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FacilityRowsRead,
		m.PopulationRowsRead,
		m.GeometryVertices,
		m.FacilitiesExcluded,
		m.JoinDrops,
		m.GeometryMisses,
		m.CountiesJoined,
		m.PipelineRunning,
		m.ArtifactsWritten,
		m.StageDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FacilityRowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bedsmap",
			Name:      "facility_rows_read_total",
			Help:      "Facility rows read from the input file.",
		}),
		PopulationRowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bedsmap",
			Name:      "population_rows_read_total",
			Help:      "County population rows read from the input file.",
		}),
		GeometryVertices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bedsmap",
			Name:      "geometry_vertices_total",
			Help:      "Polygon vertex rows read from the geometry file.",
		}),
		FacilitiesExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bedsmap",
			Name:      "facilities_excluded_total",
			Help:      "Facility rows excluded from aggregation by reason.",
		}, []string{"reason"}),
		JoinDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bedsmap",
			Name:      "join_drops_total",
			Help:      "Counties dropped by the population join by reason.",
		}, []string{"reason"}),
		GeometryMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bedsmap",
			Name:      "geometry_misses_total",
			Help:      "Counties present on one side of the geometry join only.",
		}, []string{"side"}),
		CountiesJoined: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bedsmap",
			Name:      "counties_joined",
			Help:      "Counties in the joined output of the current run.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bedsmap",
			Name:      "pipeline_running",
			Help:      "1 while a run is active, 0 otherwise.",
		}),
		ArtifactsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bedsmap",
			Name:      "artifacts_written_total",
			Help:      "Rendered output files written.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bedsmap",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}
}
