package metrics

import (
	"courtside/config"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BookingsCreated      prometheus.Counter
	AllocationConflicts  prometheus.Counter
	Transitions          *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// New returns the process-wide collectors registered on the default Prometheus registry.
func New(cfg *config.Config) *Metrics {
	once.Do(func() {
		defaultMetrics = NewWithRegisterer(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
	})

	return defaultMetrics
}

func NewWithRegisterer(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings persisted successfully.",
		}),
		AllocationConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_conflicts_total",
			Help:      "Booking requests rejected because no court was free.",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status changes by target status.",
		}, []string{"status"}),
		NotificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Booking events that could not be delivered.",
		}, []string{"event"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}
