package monitor

import "time"

// RecordStoreOperation counts a store operation and observes its latency
func RecordStoreOperation(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StoreOperations.WithLabelValues(operation, status).Inc()
	StoreLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordAnalysis counts an analysis run and observes its duration
func RecordAnalysis(kind string, start time.Time) {
	AnalysisRuns.WithLabelValues(kind).Inc()
	AnalysisDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
