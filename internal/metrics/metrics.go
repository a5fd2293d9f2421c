package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Query results.
const (
	LblOK    = "ok"
	LblError = "error"
)

var (
	// ScannedFiles counts files whose attributes were probed successfully.
	ScannedFiles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fileindex",
			Name:      "scanned_files_total",
			Help:      "Counter of files scanned into the index.",
		})

	// ScanFailures counts files whose probe failed.
	ScanFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fileindex",
			Name:      "scan_failures_total",
			Help:      "Counter of files that could not be scanned.",
		})

	// ScannedBytes sums the sizes of scanned files.
	ScannedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fileindex",
			Name:      "scanned_bytes_total",
			Help:      "Total size in bytes of scanned files.",
		})

	// Queries counts searches by result.
	Queries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fileindex",
			Name:      "queries_total",
			Help:      "Counter of searches.",
		}, []string{"result"})

	// QueryDuration observes how long a search took.
	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fileindex",
			Name:      "query_duration_seconds",
			Help:      "Bucketed histogram of search time.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 20), // 50us ~ 26s
		})
)

// Register registers all collectors.
func Register(r prometheus.Registerer) {
	r.MustRegister(ScannedFiles)
	r.MustRegister(ScanFailures)
	r.MustRegister(ScannedBytes)
	r.MustRegister(Queries)
	r.MustRegister(QueryDuration)
}

// WriteToFile dumps every metric gathered by g in text format.
func WriteToFile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
