package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Coupons
	CouponsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupons_created_total",
			Help: "Coupons created, by coupon type",
		},
		[]string{"type"},
	)
	CouponChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_checks_total",
			Help: "Coupon validate and redeem outcomes",
		},
		[]string{"operation", "outcome"},
	)
	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// InitMetrics registers the collectors with the default registry. Call once.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	prometheus.MustRegister(CouponsCreatedTotal)
	prometheus.MustRegister(CouponChecksTotal)
	prometheus.MustRegister(RateLimitedTotal)
}
