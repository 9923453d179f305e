// Package metrics exposes Prometheus collectors for sizing runs and the HTTP API.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/drivese/drivese/pkg/core"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics recorded by the worker and the server.
type Collector struct {
	gatherer prometheus.Gatherer

	Runs         *prometheus.CounterVec
	RunDurations *prometheus.HistogramVec
	AssemblyMass *prometheus.GaugeVec
	AssemblyCost *prometheus.GaugeVec

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewCollector registers the metrics against reg, defaulting to the global registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drivese_runs_total",
		Help: "Sizing runs evaluated, labeled by assembly and result.",
	}, []string{"assembly", "result"}), "drivese_runs_total"); err != nil {
		return nil, err
	}

	if c.RunDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drivese_run_duration_seconds",
		Help:    "Wall time of one sizing run.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
	}, []string{"assembly"}), "drivese_run_duration_seconds"); err != nil {
		return nil, err
	}

	if c.AssemblyMass, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drivese_assembly_mass_kg",
		Help: "Total mass of the most recent run per assembly and preset.",
	}, []string{"assembly", "preset"}), "drivese_assembly_mass_kg"); err != nil {
		return nil, err
	}

	if c.AssemblyCost, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drivese_assembly_cost_usd",
		Help: "Total cost of the most recent run per assembly and preset.",
	}, []string{"assembly", "preset"}), "drivese_assembly_cost_usd"); err != nil {
		return nil, err
	}

	if c.HTTPRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drivese_http_requests_total",
		Help: "Handled API requests, labeled by route pattern, method and status code.",
	}, []string{"route", "method", "code"}), "drivese_http_requests_total"); err != nil {
		return nil, err
	}

	if c.HTTPDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drivese_http_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"}), "drivese_http_request_duration_seconds"); err != nil {
		return nil, err
	}

	return c, nil
}

// ObserveRun records a completed run.
func (c *Collector) ObserveRun(run *core.Run) {
	if c == nil {
		return
	}
	asm := string(run.Assembly)
	c.Runs.WithLabelValues(asm, "ok").Inc()
	c.RunDurations.WithLabelValues(asm).Observe(run.Duration().Seconds())

	preset := run.Preset
	if preset == "" {
		preset = "custom"
	}
	c.AssemblyMass.WithLabelValues(asm, preset).Set(run.TotalMass)
	c.AssemblyCost.WithLabelValues(asm, preset).Set(run.TotalCost)
}

// ObserveFailure counts a run that returned an error.
func (c *Collector) ObserveFailure(asm core.Assembly) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(string(asm), "error").Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations labeled by the matched chi route.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
