package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stage counters and histograms.

var (
	// Collector
	CollectorRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "collector",
		Name:      "runs_total",
		Help:      "Total collection batches executed",
	}, []string{"trigger"})

	CollectorRunErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "collector",
		Name:      "run_errors_total",
		Help:      "Total collection batches aborted by a fetch failure",
	})

	CollectorRecordsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "collector",
		Name:      "records_processed_total",
		Help:      "Total source records examined",
	})

	CollectorRecordErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "collector",
		Name:      "record_errors_total",
		Help:      "Total records that failed persistence and were skipped",
	})

	CollectorCandidatesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "collector",
		Name:      "candidates_detected_total",
		Help:      "Total records classified as airdrop candidates",
	})

	CollectorJobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "collector",
		Name:      "jobs_enqueued_total",
		Help:      "Total generation jobs enqueued",
	})

	CollectorUnchangedSkips = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "collector",
		Name:      "unchanged_skips_total",
		Help:      "Total batches skipped because the source snapshot was unchanged",
	})

	CollectorRunLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coindrop",
		Subsystem: "collector",
		Name:      "run_duration_seconds",
		Help:      "Collection batch duration",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	// Consumer
	ConsumerJobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "consumer",
		Name:      "jobs_processed_total",
		Help:      "Total generation jobs processed, partitioned by outcome",
	}, []string{"outcome"})

	ConsumerRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "consumer",
		Name:      "retries_total",
		Help:      "Total generation jobs re-enqueued with backoff",
	})

	ConsumerDeadLettersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "consumer",
		Name:      "dead_letters_total",
		Help:      "Total generation jobs written to the dead-letter store",
	})

	ConsumerJobLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coindrop",
		Subsystem: "consumer",
		Name:      "job_duration_seconds",
		Help:      "Generation job processing duration",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "coindrop",
		Subsystem: "consumer",
		Name:      "queue_depth",
		Help:      "Current generation queue depth including delayed entries",
	})

	// Engine
	EngineCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "engine",
		Name:      "calls_total",
		Help:      "Total generation model calls, partitioned by result",
	}, []string{"result"})

	EngineCallLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coindrop",
		Subsystem: "engine",
		Name:      "call_duration_seconds",
		Help:      "Generation model call duration",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
	})

	// Cache
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"layer"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"layer"})

	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Total cache keys invalidated after publication",
	})

	// Source fetcher
	SourceFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "source",
		Name:      "fetches_total",
		Help:      "Total source fetches, partitioned by result (full, unchanged, error)",
	}, []string{"result"})

	// Database pool
	DBPoolOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "coindrop",
		Subsystem: "postgres",
		Name:      "db_pool_open",
		Help:      "Current number of open PostgreSQL connections in the pool",
	})

	DBPoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "coindrop",
		Subsystem: "postgres",
		Name:      "db_pool_in_use",
		Help:      "Current number of in-use PostgreSQL connections in the pool",
	})

	DBPoolIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "coindrop",
		Subsystem: "postgres",
		Name:      "db_pool_idle",
		Help:      "Current number of idle PostgreSQL connections in the pool",
	})

	// Alerts
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Total alerts sent",
	}, []string{"channel", "alert_type"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coindrop",
		Subsystem: "alert",
		Name:      "cooldown_skipped_total",
		Help:      "Total alerts skipped due to cooldown",
	}, []string{"channel", "alert_type"})
)
