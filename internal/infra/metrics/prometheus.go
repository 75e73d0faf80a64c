package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcop_jobs_processed_total",
		Help: "Total number of sampling jobs processed, by status",
	}, []string{"status"})

	JobStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vcop_job_stage_duration_seconds",
		Help:    "Duration of the sampling pipeline stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	TuplesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vcop_tuples_sampled_total",
		Help: "Total number of shuffled tuples produced across all jobs",
	})

	SamplesDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcop_samples_dropped_total",
		Help: "Total number of sampling draws dropped instead of crashing, by reason",
	}, []string{"reason"})

	FramesDecodedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vcop_frames_decoded_total",
		Help: "Total number of video frames decoded across all jobs",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vcop_active_workers",
		Help: "Number of currently active workers processing sampling jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcop_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)

// DropReasonTooShort labels SamplesDroppedTotal for draws against videos
// shorter than one tuple span. Decode failures are not drops: they fail the
// whole job through the retry path.
const DropReasonTooShort = "too_short"
