// Package metrics exports clock health metrics in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/timekit-io/timekit/internal/probe"
	"github.com/timekit-io/timekit/pkg/timespan"
)

// Exporter collects and serves clock metrics
type Exporter struct {
	registry *prometheus.Registry
	started  timespan.Instant
	drift    *probe.Drift

	uptimeSeconds     prometheus.Gauge
	hostUptimeSeconds prometheus.Gauge
	resolutionSeconds prometheus.Gauge
	driftSeconds      prometheus.Gauge
	refreshes         prometheus.Counter
}

// NewExporter creates an exporter with its own registry
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		started:  timespan.Now(),
		drift:    probe.NewDrift(),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timekit_uptime_seconds",
			Help: "Time since the timekit process started, monotonic",
		}),
		hostUptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timekit_host_uptime_seconds",
			Help: "Host uptime as reported by the operating system",
		}),
		resolutionSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timekit_clock_resolution_seconds",
			Help: "Smallest observed positive step of the monotonic clock",
		}),
		driftSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timekit_clock_drift_seconds",
			Help: "Wall-clock elapsed minus monotonic elapsed since process start",
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timekit_metric_refreshes_total",
			Help: "Number of metric refresh cycles",
		}),
	}

	e.registry.MustRegister(e.uptimeSeconds)
	e.registry.MustRegister(e.hostUptimeSeconds)
	e.registry.MustRegister(e.resolutionSeconds)
	e.registry.MustRegister(e.driftSeconds)
	e.registry.MustRegister(e.refreshes)

	return e
}

// Refresh re-measures every gauge. Resolution probing spins briefly, so
// callers refresh on scrape or on a timer rather than continuously.
func (e *Exporter) Refresh() {
	e.uptimeSeconds.Set(e.started.Elapsed().SecondsFloat())

	if uptime, err := host.Uptime(); err == nil {
		e.hostUptimeSeconds.Set(float64(uptime))
	}

	res := probe.MeasureResolution(50)
	if res.Samples > 0 {
		e.resolutionSeconds.Set(res.MinStep.SecondsFloat())
	}

	e.driftSeconds.Set(e.drift.Measure().SecondsFloat())
	e.refreshes.Inc()
}

// Handler serves the exporter's registry, refreshing on every scrape.
func (e *Exporter) Handler() http.Handler {
	inner := promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.Refresh()
		inner.ServeHTTP(w, r)
	})
}
