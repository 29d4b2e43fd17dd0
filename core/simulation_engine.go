package core

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/ionotracer/internal/logging"
	"github.com/signalsfoundry/ionotracer/model"
	"github.com/signalsfoundry/ionotracer/timectrl"
)

// DefaultMaxBounces bounds the interactions of a single ray.
const DefaultMaxBounces = 10000

// ResultSink collects samples and counts finished tracings. Both operations
// are called concurrently from every worker.
type ResultSink interface {
	SampleSink
	IncrementTracings() int
	Tracings() int
}

// MetricsRecorder receives per-interaction and per-ray observations.
type MetricsRecorder interface {
	ObserveInteraction(geometry GeometryType, behaviour Behaviour)
	ObserveRay(termination model.Termination, bounces int, signalPower float64)
	ObserveRun(elapsed time.Duration, rays int)
}

// RunSummary describes a finished Engine.Run.
type RunSummary struct {
	Rays          int
	Elapsed       time.Duration
	TracingsPerS  float64
	ByTermination map[model.Termination]int
}

// Engine runs one worker per launch configuration against a shared, sealed
// scene.
type Engine struct {
	Scene      *SceneManager
	Sink       ResultSink
	MaxBounces int

	log              logging.Logger
	metrics          MetricsRecorder
	tracer           trace.Tracer
	clock            timectrl.Clock
	progressInterval time.Duration
}

// EngineOption customises Engine construction.
type EngineOption func(*Engine)

// WithLogger sets the engine's base logger.
func WithLogger(l logging.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer overrides the OpenTelemetry tracer used for run and ray spans.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = t }
}

// WithClock sets the clock used to time runs.
func WithClock(c timectrl.Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithProgressInterval enables periodic progress logs while a run is in
// flight. Zero disables them.
func WithProgressInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.progressInterval = d }
}

// WithMaxBounces overrides DefaultMaxBounces.
func WithMaxBounces(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.MaxBounces = n
		}
	}
}

// NewEngine wires a scene and a sink into a tracing engine.
func NewEngine(scene *SceneManager, sink ResultSink, opts ...EngineOption) *Engine {
	e := &Engine{
		Scene:      scene,
		Sink:       sink,
		MaxBounces: DefaultMaxBounces,
		log:        logging.Noop(),
		tracer:     otel.Tracer("github.com/signalsfoundry/ionotracer/core"),
		clock:      timectrl.SystemClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logging.Noop()
	}
	return e
}

// Run seals the scene, traces every launch on its own goroutine and blocks
// until all of them have terminated. Launched rays are not cancelled; ctx
// carries logging and span state only.
func (e *Engine) Run(ctx context.Context, launches []Launch) RunSummary {
	e.Scene.Seal()

	ctx, log := logging.WithRunLogger(ctx, e.log)
	ctx = logging.ContextWithLogger(ctx, log)
	ctx, span := e.tracer.Start(ctx, "raytracer.run",
		trace.WithAttributes(
			attribute.Int("rays", len(launches)),
			attribute.Int("geometries", e.Scene.Len()),
		),
	)
	defer span.End()

	log.Info(ctx, "tracing started",
		logging.Int("rays", len(launches)),
		logging.Int("geometries", e.Scene.Len()),
		logging.Int("max_bounces", e.MaxBounces),
	)

	watch := timectrl.NewStopwatch(e.clock)
	stopProgress := e.startProgress(ctx, log, watch, len(launches))

	terminations := make([]model.Termination, len(launches))
	var wg sync.WaitGroup
	for i, l := range launches {
		wg.Add(1)
		go func(i int, l Launch) {
			defer wg.Done()
			w := &Worker{engine: e, ray: l.NewRay()}
			terminations[i] = w.Trace(ctx)
		}(i, l)
	}
	wg.Wait()
	stopProgress()

	summary := RunSummary{
		Rays:          len(launches),
		Elapsed:       watch.Elapsed(),
		TracingsPerS:  watch.Rate(len(launches)),
		ByTermination: make(map[model.Termination]int),
	}
	for _, t := range terminations {
		summary.ByTermination[t]++
	}
	if e.metrics != nil {
		e.metrics.ObserveRun(summary.Elapsed, summary.Rays)
	}

	log.Info(ctx, "tracing finished",
		logging.Int("tracings", e.Sink.Tracings()),
		logging.String("elapsed", summary.Elapsed.String()),
		logging.Float64("tracings_per_sec", summary.TracingsPerS),
	)
	return summary
}

func (e *Engine) startProgress(ctx context.Context, log logging.Logger, watch *timectrl.Stopwatch, total int) func() {
	if e.progressInterval <= 0 {
		return func() {}
	}
	tc := timectrl.NewTimeController(e.progressInterval)
	tc.AddListener(func(time.Duration) {
		done := e.Sink.Tracings()
		log.Info(ctx, "tracing progress",
			logging.Int("done", done),
			logging.Int("total", total),
			logging.Float64("tracings_per_sec", watch.Rate(done)),
		)
	})
	return tc.Start()
}

// Worker owns one ray for the whole of its trace.
type Worker struct {
	engine *Engine
	ray    *Ray
}

// NewWorker binds r to e. Engine.Run creates workers itself; this is for
// tracing a single ray synchronously.
func NewWorker(e *Engine, r *Ray) *Worker {
	return &Worker{engine: e, ray: r}
}

// Ray returns the worker's ray.
func (w *Worker) Ray() *Ray { return w.ray }

// Trace runs the intersect/interact loop until the ray escapes, hits
// terrain or exhausts the bounce budget, then hands the terminal sample to
// the sink and counts the tracing, each exactly once.
func (w *Worker) Trace(ctx context.Context) model.Termination {
	e, r := w.engine, w.ray

	ctx, span := e.tracer.Start(ctx, "raytracer.ray",
		trace.WithAttributes(
			attribute.Int("ray.number", r.RayNumber),
			attribute.Float64("ray.frequency_hz", r.Frequency),
			attribute.Float64("ray.angle_rad", r.OriginalAngle),
		),
	)
	defer span.End()

	log := logging.LoggerFromContext(ctx)
	if log == nil {
		log = e.log
	}
	log = log.With(logging.Int("ray", r.RayNumber))
	ctx = logging.ContextWithLogger(ctx, log)

	termination := model.TerminationNone
	last := GeometryNone
	for termination == model.TerminationNone {
		if r.Bounces >= e.MaxBounces {
			termination = model.TerminationMaxBounces
			break
		}
		hit, ok := e.Scene.Intersect(r)
		if !ok {
			termination = model.TerminationEscaped
			break
		}

		r.TimeOfFlight += hit.Distance / SpeedOfLight
		hit.Geometry.Interact(ctx, r, hit.Hit, e.Sink)
		r.lastHit = hit.Index
		r.Bounces++
		last = hit.Geometry.Type()

		if e.metrics != nil {
			e.metrics.ObserveInteraction(last, r.Behaviour)
		}
		if last == GeometryTerrain {
			termination = model.TerminationTerrain
		}
	}

	s := r.snapshot()
	s.CollisionType = last
	s.RefractiveIndexSqrd = r.PreviousRefractiveIndex * r.PreviousRefractiveIndex
	s.Terminal = true
	s.Termination = termination
	e.Sink.AddSample(s)
	e.Sink.IncrementTracings()

	if e.metrics != nil {
		e.metrics.ObserveRay(termination, r.Bounces, r.SignalPower)
	}
	span.SetAttributes(
		attribute.String("ray.termination", termination.String()),
		attribute.Int("ray.interactions", r.Bounces),
		attribute.Float64("ray.signal_power_db", r.SignalPower),
	)
	log.Debug(ctx, "ray terminated",
		logging.String("termination", termination.String()),
		logging.Int("interactions", r.Bounces),
		logging.Float64("signal_power_db", r.SignalPower),
	)
	return termination
}
