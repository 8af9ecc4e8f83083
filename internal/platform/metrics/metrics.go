package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrpay/internal/domain/payroll"
)

// Collector owns a private registry so several instances can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	calculations    *prometheus.CounterVec
	calcDuration    *prometheus.HistogramVec
	statutoryLines  *prometheus.CounterVec
	overflows       prometheus.Counter
	jobs            *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrpay_http_requests_total",
			Help: "HTTP requests by status class.",
		}, []string{"status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrpay_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrpay_payroll_calculations_total",
			Help: "Employee payroll calculations by outcome and final stage.",
		}, []string{"outcome", "stage"}),
		calcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrpay_payroll_calculation_duration_seconds",
			Help:    "Time to resolve reference data and assemble one employee.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"outcome"}),
		statutoryLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrpay_statutory_records_total",
			Help: "Statutory movement records by result.",
		}, []string{"result"}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrpay_statutory_field_overflows_total",
			Help: "Fixed-width fields truncated while encoding.",
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrpay_jobs_total",
			Help: "Background job runs by type and status.",
		}, []string{"type", "status"}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requests, c.requestDuration, c.calculations, c.calcDuration,
		c.statutoryLines, c.overflows, c.jobs,
	)
	return c
}

func (c *Collector) Record(status int, duration time.Duration) {
	class := strconv.Itoa(status/100) + "xx"
	c.requests.WithLabelValues(class).Inc()
	c.requestDuration.WithLabelValues(class).Observe(duration.Seconds())
}

func (c *Collector) ObserveCalculation(outcome string, stage payroll.Stage, duration time.Duration) {
	c.calculations.WithLabelValues(outcome, string(stage)).Inc()
	c.calcDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (c *Collector) ObserveStatutoryFile(emitted, skipped, overflows int) {
	c.statutoryLines.WithLabelValues("emitted").Add(float64(emitted))
	c.statutoryLines.WithLabelValues("skipped").Add(float64(skipped))
	c.overflows.Add(float64(overflows))
}

func (c *Collector) ObserveJob(jobType, status string) {
	c.jobs.WithLabelValues(jobType, status).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
