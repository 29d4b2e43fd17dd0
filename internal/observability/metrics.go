package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/ionotracer/model"
)

// TracerCollector bundles Prometheus metrics for a tracing run. It satisfies
// core.MetricsRecorder.
type TracerCollector struct {
	gatherer prometheus.Gatherer

	Interactions *prometheus.CounterVec
	RaysTraced   *prometheus.CounterVec
	RayBounces   prometheus.Histogram
	RaySignalDB  prometheus.Histogram
	RunDuration  prometheus.Histogram
	RunRays      prometheus.Gauge
}

// NewTracerCollector registers tracing metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewTracerCollector(reg prometheus.Registerer) (*TracerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	interactions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "raytracer_interactions_total",
		Help: "Ray/geometry interactions, labeled by geometry type and wave behaviour.",
	}, []string{"geometry", "behaviour"}), "raytracer_interactions_total")
	if err != nil {
		return nil, err
	}

	rays, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "raytracer_rays_traced_total",
		Help: "Rays traced to completion, labeled by termination reason.",
	}, []string{"termination"}), "raytracer_rays_traced_total")
	if err != nil {
		return nil, err
	}

	bounces, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "raytracer_ray_interactions",
		Help:    "Number of layer interactions per traced ray.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}), "raytracer_ray_interactions")
	if err != nil {
		return nil, err
	}

	signal, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "raytracer_ray_signal_loss_db",
		Help:    "Accumulated attenuation of each ray at termination, dB.",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 50, 100},
	}), "raytracer_ray_signal_loss_db")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "raytracer_run_duration_seconds",
		Help:    "Wall-clock duration of tracing runs.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600},
	}), "raytracer_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	runRays, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "raytracer_run_rays",
		Help: "Number of rays launched by the most recent run.",
	}), "raytracer_run_rays")
	if err != nil {
		return nil, err
	}

	return &TracerCollector{
		gatherer:     gatherer,
		Interactions: interactions,
		RaysTraced:   rays,
		RayBounces:   bounces,
		RaySignalDB:  signal,
		RunDuration:  duration,
		RunRays:      runRays,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *TracerCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveInteraction counts one layer interaction.
func (c *TracerCollector) ObserveInteraction(geometry model.GeometryType, behaviour model.Behaviour) {
	if c == nil || c.Interactions == nil {
		return
	}
	c.Interactions.WithLabelValues(geometry.String(), behaviour.String()).Inc()
}

// ObserveRay records a terminated ray. Signal power is stored as a positive
// loss.
func (c *TracerCollector) ObserveRay(termination model.Termination, bounces int, signalPower float64) {
	if c == nil {
		return
	}
	if c.RaysTraced != nil {
		c.RaysTraced.WithLabelValues(termination.String()).Inc()
	}
	if c.RayBounces != nil {
		c.RayBounces.Observe(float64(bounces))
	}
	if c.RaySignalDB != nil {
		c.RaySignalDB.Observe(-signalPower)
	}
}

// ObserveRun records a completed run.
func (c *TracerCollector) ObserveRun(elapsed time.Duration, rays int) {
	if c == nil {
		return
	}
	if c.RunDuration != nil {
		c.RunDuration.Observe(elapsed.Seconds())
	}
	if c.RunRays != nil {
		c.RunRays.Set(float64(rays))
	}
}

// WriteTextfile dumps the gathered metrics in the text exposition format,
// for node-exporter's textfile collector. Batch runs exit before a scrape
// could reach them.
func (c *TracerCollector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
