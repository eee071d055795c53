package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus collectors of the service.
type Metrics struct {
	LayoutsPublished      prometheus.Counter
	SeatsMaterialized     prometheus.Counter
	MaterializationFailed prometheus.Counter
	Bookings              *prometheus.CounterVec
	TicketsPaid           prometheus.Counter
	TicketsCanceled       prometheus.Counter
	EventsPublished       *prometheus.CounterVec
	ErrorsCount           *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
}

// NewMetrics registers the collectors on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LayoutsPublished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seat_layouts_published_total",
			Help:      "The total number of board seat layout versions published",
		}),
		SeatsMaterialized: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_seats_materialized_total",
			Help:      "The total number of flight seats created from board layouts",
		}),
		MaterializationFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_seat_materialization_failures_total",
			Help:      "The total number of flight creations rolled back during seat materialization",
		}),
		Bookings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking attempts by result",
		}, []string{"result"}),
		TicketsPaid: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_paid_total",
			Help:      "The total number of paid tickets",
		}),
		TicketsCanceled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_canceled_total",
			Help:      "The total number of canceled tickets",
		}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker by type and result",
		}, []string{"type", "result"}),
		ErrorsCount: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}
