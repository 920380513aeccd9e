package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsLoaded        = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "cabadmin", Name: "bookings_loaded", Help: "Bookings currently held in the local mirror"})
	BookingMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabadmin", Name: "booking_mutations_total", Help: "Booking status mutations applied, by resulting status"},
		[]string{"status"},
	)

	RateSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabadmin", Name: "rate_saves_total", Help: "Rate sheet autosave attempts, by outcome"},
		[]string{"outcome"},
	)
	RateEditsCoalesced = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabadmin", Name: "rate_edits_coalesced_total", Help: "Rate sheet edits absorbed into a pending autosave"})

	NotificationPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabadmin", Name: "notification_polls_total", Help: "Notification poll cycles, by outcome"},
		[]string{"outcome"},
	)
	NotificationsUnread = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "cabadmin", Name: "notifications_unread", Help: "Unread notifications from the last poll"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabadmin", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cabadmin",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
