package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Analysis metrics
	AnalysisRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marquee_analysis_runs_total",
		Help: "Total number of analysis runs",
	}, []string{"kind"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marquee_analysis_duration_seconds",
		Help:    "Duration of analysis runs",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // From 100µs to ~26s
	}, []string{"kind"})

	AnalysisFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marquee_analysis_fallbacks_total",
		Help: "Total number of degenerate-input fallbacks taken",
	}, []string{"reason"})

	EigenReseeds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marquee_eigen_reseeds_total",
		Help: "Total number of random restarts during power iteration",
	})

	KMeansIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "marquee_kmeans_iterations",
		Help:    "Assignment/update rounds per k-means run",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
	})

	KMeansNotConverged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marquee_kmeans_not_converged_total",
		Help: "Total number of k-means runs stopped by the iteration cap",
	})

	// Session metrics
	SessionCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marquee_session_cache_total",
		Help: "Exploration cache lookups by result",
	}, []string{"result"})

	DatasetSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "marquee_dataset_movies",
		Help: "Number of movies held by the most recently created session",
	})

	// Store metrics
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marquee_store_operations_total",
		Help: "Total number of movie store operations",
	}, []string{"operation", "status"})

	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marquee_store_latency_seconds",
		Help:    "Latency of movie store operations",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})
)

// Analysis kinds
const (
	KindPCA    = "pca"
	KindKMeans = "kmeans"
)
