package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

var (
	once          sync.Once
	metricsRouter *chi.Mux

	// add a counter for the number of errors from the fail to push message into queue
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	changeProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "change_processing_duration_seconds",
			Help:    "Time to persist and publish one change log entry, in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"change_type", "status", "retry"},
	)

	lastProcessedSeqGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "change_log_last_processed_seq",
			Help: "Sequence number of the last change log entry persisted and published",
		},
	)

	changeLogGapCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "change_log_gap_entries_total",
			Help: "Number of change log entries dropped by retention before they were processed",
		},
	)

	failedCampaignsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "failed_campaigns_total",
			Help: "Number of campaigns moved to failed by the deadline sweep",
		},
	)

	tokenGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "token_amount",
			Help: "Token amounts of the economy in whole tokens, split by kind (supply, staked, escrow, reward_pool)",
		},
		[]string{"kind"},
	)

	campaignsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "campaigns_count",
			Help: "Number of campaigns per status",
		},
		[]string{"status"},
	)

	emissionsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "emissions",
			Help: "Emissions tracked (grams) and offset (tons)",
		},
		[]string{"kind"},
	)

	invariantViolationCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invariant_violation_count",
			Help: "Number of times the periodic invariant check failed",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)
)

// Init registers the metrics and serves them on metricsPort.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	metricsRouter.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

func registerMetrics() {
	prometheus.MustRegister(
		queueSendErrorCounter,
		pollerDurationHistogram,
		changeProcessingDuration,
		lastProcessedSeqGauge,
		changeLogGapCounter,
		failedCampaignsCounter,
		tokenGauge,
		campaignsGauge,
		emissionsGauge,
		invariantViolationCounter,
		dbLatency,
	)
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	dbLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordChangeProcessingDuration(d time.Duration, changeType string, retry int, failure bool) {
	changeProcessingDuration.
		WithLabelValues(changeType, outcome(failure).String(), strconv.Itoa(retry)).
		Observe(d.Seconds())
}

func RecordLastProcessedSeq(seq uint64) {
	lastProcessedSeqGauge.Set(float64(seq))
}

func AddChangeLogGap(missing uint64) {
	changeLogGapCounter.Add(float64(missing))
}

func AddFailedCampaigns(count int) {
	failedCampaignsCounter.Add(float64(count))
}

// RecordTokenAmount sets a token gauge; amount is in whole tokens.
func RecordTokenAmount(kind string, amount float64) {
	tokenGauge.WithLabelValues(kind).Set(amount)
}

func RecordCampaigns(status string, count int) {
	campaignsGauge.WithLabelValues(status).Set(float64(count))
}

func RecordEmissions(grams, tons uint64) {
	emissionsGauge.WithLabelValues("tracked_grams").Set(float64(grams))
	emissionsGauge.WithLabelValues("offset_tons").Set(float64(tons))
}

func IncInvariantViolation() {
	invariantViolationCounter.Inc()
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}
