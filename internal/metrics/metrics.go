package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the directory API.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Directory metrics
	BusinessesCreated *prometheus.CounterVec
	BusinessesDeleted prometheus.Counter
	MediaUploads      *prometheus.CounterVec
	OTPSent           *prometheus.CounterVec
	OTPVerifications  *prometheus.CounterVec
	LoginAttempts     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		BusinessesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_businesses_created_total",
				Help: "Businesses created, by initial status",
			},
			[]string{"status"},
		),
		BusinessesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "directory_businesses_deleted_total",
			Help: "Businesses deleted",
		}),
		MediaUploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_media_uploads_total",
				Help: "Thumbnail uploads to the media host",
			},
			[]string{"result"},
		),
		OTPSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_otp_sent_total",
				Help: "OTP emails dispatched",
			},
			[]string{"result"},
		),
		OTPVerifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_otp_verifications_total",
				Help: "OTP verification attempts",
			},
			[]string{"result"},
		),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_login_attempts_total",
				Help: "Operator login attempts",
			},
			[]string{"result"},
		),
	}
}

// Middleware records request count and latency per route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

// RecordBusinessCreated counts a stored business.
func (m *Metrics) RecordBusinessCreated(status string) {
	if m == nil {
		return
	}
	m.BusinessesCreated.WithLabelValues(status).Inc()
}

// RecordBusinessDeleted counts a removed business.
func (m *Metrics) RecordBusinessDeleted() {
	if m == nil {
		return
	}
	m.BusinessesDeleted.Inc()
}

// RecordMediaUpload counts an upload attempt.
func (m *Metrics) RecordMediaUpload(ok bool) {
	if m == nil {
		return
	}
	m.MediaUploads.WithLabelValues(result(ok)).Inc()
}

// RecordOTPSent counts an OTP dispatch attempt.
func (m *Metrics) RecordOTPSent(ok bool) {
	if m == nil {
		return
	}
	m.OTPSent.WithLabelValues(result(ok)).Inc()
}

// RecordOTPVerification counts a verification outcome.
func (m *Metrics) RecordOTPVerification(verified bool) {
	if m == nil {
		return
	}
	m.OTPVerifications.WithLabelValues(result(verified)).Inc()
}

// RecordLoginAttempt counts an operator login.
func (m *Metrics) RecordLoginAttempt(ok bool) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result(ok)).Inc()
}
