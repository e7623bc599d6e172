// Package metrics provides Prometheus metrics for watch mode.
package metrics

import (
	"net/http"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/specialistvlad/blueprint/internal/bphcl"
)

const namespace = "blueprint"

// Collector holds the metrics of one App. Each Collector owns its registry so
// several apps can live in one process, as they do in tests.
type Collector struct {
	registry *prometheus.Registry

	ChecksTotal     *prometheus.CounterVec
	CheckDuration   prometheus.Histogram
	FilesLoaded     prometheus.Gauge
	Diagnostics     *prometheus.GaugeVec
	LastCheck       prometheus.Gauge
	PublishFailures prometheus.Counter
}

// New creates a Collector on a fresh registry.
func New() *Collector {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a Collector whose metrics are registered on reg.
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		ChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "Total number of workspace checks by result",
			},
			[]string{"result"},
		),
		CheckDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "check_duration_seconds",
				Help:      "Time spent loading and validating the workspace",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		FilesLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "files_loaded",
				Help:      "Number of source files read by the last check",
			},
		),
		Diagnostics: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "diagnostics",
				Help:      "Diagnostics reported by the last check by severity",
			},
			[]string{"severity"},
		),
		LastCheck: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_check_timestamp_seconds",
				Help:      "Unix time of the last completed check",
			},
		),
		PublishFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_failures_total",
				Help:      "Diagnostics snapshots that could not be published",
			},
		),
	}
}

// Registry returns the registry the metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordCheck stores the outcome of one check.
func (c *Collector) RecordCheck(files int, diags hcl.Diagnostics, took time.Duration) {
	errs, warnings := bphcl.CountBySeverity(diags)
	result := "ok"
	if errs > 0 {
		result = "failed"
	}
	c.ChecksTotal.WithLabelValues(result).Inc()
	c.CheckDuration.Observe(took.Seconds())
	c.FilesLoaded.Set(float64(files))
	c.Diagnostics.WithLabelValues("error").Set(float64(errs))
	c.Diagnostics.WithLabelValues("warning").Set(float64(warnings))
	c.LastCheck.SetToCurrentTime()
}
