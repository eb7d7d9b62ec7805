package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ItemsSoldTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_items_sold_total",
			Help: "Total number of inventory items marked SOLD",
		},
	)

	SalesReversedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_sales_reversed_total",
			Help: "Total number of sales reverted back to AVAILABLE",
		},
	)
)
