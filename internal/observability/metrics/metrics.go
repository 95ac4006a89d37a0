package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                             sync.Once
	metricsRouter                    *chi.Mux
	httpRequestDurationHistogram     *prometheus.HistogramVec
	activityEventPublishCounter      *prometheus.CounterVec
	guaranteeStatusTransitionCounter *prometheus.CounterVec
)

// Init initializes the metrics package.
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

	go func() {
		metricsAddr := fmt.Sprintf(":%d", metricsPort)
		err := http.ListenAndServe(metricsAddr, metricsRouter)
		if err != nil {
			log.Fatal().Err(err).Msgf("error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"endpoint", "status"},
	)

	activityEventPublishCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_event_publish_total",
			Help: "Total number of activity event publish attempts by outcome.",
		},
		[]string{"event_type", "outcome"},
	)

	guaranteeStatusTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guarantee_status_transition_total",
			Help: "Total number of guarantee status transitions.",
		},
		[]string{"from", "to"},
	)

	prometheus.MustRegister(
		httpRequestDurationHistogram,
		activityEventPublishCounter,
		guaranteeStatusTransitionCounter,
	)

}

// StartHttpRequestDurationTimer starts a timer to measure http request handling duration.
func StartHttpRequestDurationTimer(endpoint string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(endpoint, fmt.Sprintf("%d", statusCode)).Observe(duration)
	}
}

// RecordActivityEventPublish records one queue publish attempt.
func RecordActivityEventPublish(eventType int, outcome Outcome) {
	if activityEventPublishCounter == nil {
		return
	}
	activityEventPublishCounter.WithLabelValues(fmt.Sprintf("%d", eventType), outcome.String()).Inc()
}

// RecordGuaranteeStatusTransition records one guarantee lifecycle transition.
func RecordGuaranteeStatusTransition(from, to string) {
	if guaranteeStatusTransitionCounter == nil {
		return
	}
	guaranteeStatusTransitionCounter.WithLabelValues(from, to).Inc()
}
