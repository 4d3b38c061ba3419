package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worqhub_auth_login_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"}, // outcome is "success" or "failure"
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worqhub_auth_register_total",
			Help: "Total number of user registrations",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worqhub_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worqhub_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"}, // type is the error class, e.g. "authentication_required", "forbidden"
	)

	// Tenant-scoped operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worqhub_tenant_operations_total",
			Help: "Total number of tenant-scoped record operations",
		},
		[]string{"entity", "operation"}, // operation is "list", "get", "create", "update", "delete"
	)

	// Tenant administration counter
	TenantAdminCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worqhub_tenant_admin_operations_total",
			Help: "Total number of tenant administration operations",
		},
		[]string{"operation"},
	)

	// Throttled logins
	LoginThrottledCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worqhub_auth_login_throttled_total",
			Help: "Total number of login attempts rejected by the throttle",
		},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worqhub_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worqhub_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worqhub_info",
			Help: "Information about the WorqHub API",
		},
		[]string{"version"},
	)
)

// Version is reported through the info gauge
const Version = "1.0.0"

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(TenantAdminCounter)
	prometheus.MustRegister(LoginThrottledCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": Version}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations. Use as
// defer TrackDBOperation("query")(time.Now()).
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler; render errors now so the
			// recorded status is the one the client sees
			if err := next(c); err != nil {
				c.Error(err)
			}

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return nil
		}
	}
}

// RecordLogin records a login attempt outcome
func RecordLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	LoginCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordRegister records a successful registration
func RecordRegister() {
	RegisterCounter.Inc()
}

// RecordLoginThrottled records a login rejected by the throttle
func RecordLoginThrottled() {
	LoginThrottledCounter.Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTenantOperation records a tenant-scoped operation on an entity
func RecordTenantOperation(entity, operation string) {
	TenantOperationCounter.With(prometheus.Labels{
		"entity":    entity,
		"operation": operation,
	}).Inc()
}

// RecordTenantAdmin records a tenant administration operation
func RecordTenantAdmin(operation string) {
	TenantAdminCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
