// Package metrics holds the Prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storepulse_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storepulse_cache_requests_total",
			Help: "Cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storepulse_cache_invalidations_total",
			Help: "Cache keys removed by pattern",
		},
		[]string{"pattern"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storepulse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	SalesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storepulse_sales_created_total",
			Help: "Sales committed",
		},
	)

	StockRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storepulse_stock_rejections_total",
			Help: "Stock decrements rejected for insufficient stock",
		},
	)

	LowStockAlerts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storepulse_low_stock_alerts_total",
			Help: "Inventory records that crossed into low stock",
		},
	)

	TxRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storepulse_tx_retries_total",
			Help: "Transactions retried after a transient store failure",
		},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storepulse_websocket_connections",
			Help: "Open websocket connections",
		},
	)

	RealtimeDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storepulse_realtime_dropped_total",
			Help: "Realtime messages dropped because a client buffer was full",
		},
		[]string{"topic"},
	)

	BusPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storepulse_bus_publish_failures_total",
			Help: "Event bus publish failures by topic",
		},
		[]string{"topic"},
	)
)
