package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	docflow = "docflow"

	// Job metrics
	jobsTotal          = "conversion_jobs_total"
	jobDuration        = "conversion_job_duration_seconds"
	summaryFallbacks   = "summary_fallbacks_total"
	artifactBytesTotal = "artifact_bytes_total"

	// Labels
	jobStageLabel   = "stage"
	jobOutcomeLabel = "outcome"
	formatLabel     = "format"
)

var jobsTotalLabels = []string{
	jobOutcomeLabel,
	formatLabel,
}

var jobDurationLabels = []string{
	jobOutcomeLabel,
}

/**
* Metrics definition
**/
var jobsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: docflow,
		Name:      jobsTotal,
		Help:      "number of conversion jobs partitioned by outcome and input format",
	},
	jobsTotalLabels,
)

var jobDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: docflow,
		Name:      jobDuration,
		Help:      "end to end conversion job duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60},
	},
	jobDurationLabels,
)

var summaryFallbacksMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: docflow,
		Name:      summaryFallbacks,
		Help:      "number of jobs completed without a summary because the summarizer was unavailable",
	},
)

var artifactBytesMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: docflow,
		Name:      artifactBytesTotal,
		Help:      "total bytes written to artifact storage",
	},
)

func IncreaseJobsTotalMetric(outcome, format string) {
	jobsTotalMetric.With(prometheus.Labels{
		jobOutcomeLabel: outcome,
		formatLabel:     format,
	}).Inc()
}

func ObserveJobDurationMetric(outcome string, seconds float64) {
	jobDurationMetric.With(prometheus.Labels{
		jobOutcomeLabel: outcome,
	}).Observe(seconds)
}

func IncreaseSummaryFallbacksMetric() {
	summaryFallbacksMetric.Inc()
}

func AddArtifactBytesMetric(n int64) {
	artifactBytesMetric.Add(float64(n))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsTotalMetric)
	prometheus.MustRegister(jobDurationMetric)
	prometheus.MustRegister(summaryFallbacksMetric)
	prometheus.MustRegister(artifactBytesMetric)
}
