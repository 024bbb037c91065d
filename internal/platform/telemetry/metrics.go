// Package telemetry exposes Prometheus metrics and Sentry error reporting
// for the picker service.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "picker"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpDuration  *prometheus.HistogramVec
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	formsActive   prometheus.Gauge
	submissions   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reference_fetch_total",
			Help:      "Reference collection fetches by collection and outcome.",
		}, []string{"collection", "outcome"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reference_fetch_duration_seconds",
			Help:      "Time spent fetching one reference collection.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"collection"}),
		formsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forms_active",
			Help:      "Open form sessions.",
		}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_total",
			Help:      "Form submission attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveFetch records one reference fetch.
func (m *Metrics) ObserveFetch(collection string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetchTotal.WithLabelValues(collection, outcome).Inc()
	m.fetchDuration.WithLabelValues(collection).Observe(took.Seconds())
}

func (m *Metrics) SessionOpened() { m.formsActive.Inc() }

func (m *Metrics) SessionsClosed(n int) { m.formsActive.Sub(float64(n)) }

func (m *Metrics) ObserveSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request latency labelled by route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.httpDuration.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
