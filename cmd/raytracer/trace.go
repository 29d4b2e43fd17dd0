package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/signalsfoundry/ionotracer/core"
	"github.com/signalsfoundry/ionotracer/dataset"
	"github.com/signalsfoundry/ionotracer/export"
	"github.com/signalsfoundry/ionotracer/internal/config"
	"github.com/signalsfoundry/ionotracer/internal/logging"
	"github.com/signalsfoundry/ionotracer/internal/observability"
)

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Trace a scenario and export the samples",
		Long: `Trace every (frequency, angle) launch of a scenario and export the samples in
(ray number, step) order.

Examples:
  raytracer trace --config configs/mars.json
  raytracer trace --config configs/mars.json --out rays.bin --format matrix --compress
  raytracer trace --config configs/mars.json --out - --metrics-file raytracer.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			opts, sc, err := resolveTraceOptions(cmd)
			if err != nil {
				log.Error(ctx, "failed to load scenario", logging.Err(err))
				return err
			}
			return runTrace(ctx, cmd.OutOrStdout(), log, opts, sc)
		},
	}

	cmd.Flags().String("config", "configs/mars.json", "Scenario config file (env RAYTRACER_CONFIG)")
	cmd.Flags().StringP("out", "o", "", "Output path, '-' for stdout; defaults to the config's export.path (env RAYTRACER_OUT)")
	cmd.Flags().String("format", "", "Output format: csv, matrix, protodelim (env RAYTRACER_FORMAT)")
	cmd.Flags().Bool("compress", false, "zstd-compress the output (env RAYTRACER_COMPRESS)")
	cmd.Flags().Int("max-bounces", 0, "Per-ray interaction budget (env RAYTRACER_MAX_BOUNCES)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after the run (env RAYTRACER_METRICS_FILE)")
	cmd.Flags().Duration("progress", 0, "Interval between progress logs, 0 disables (env RAYTRACER_PROGRESS)")
	cmd.Flags().String("trace-file", "", "Export run and ray spans as JSON to this file (env RAYTRACER_TRACING_FILE)")
	return cmd
}

// resolveTraceOptions loads the scenario and layers flags and environment
// variables over its export and bounce settings.
func resolveTraceOptions(cmd *cobra.Command) (traceOptions, *config.Scenario, error) {
	opts := traceOptions{
		ConfigPath: getConfigString(cmd, "config", "RAYTRACER_CONFIG", "configs/mars.json"),
	}
	sc, err := config.LoadScenario(opts.ConfigPath)
	if err != nil {
		return opts, nil, err
	}

	opts.Out = getConfigString(cmd, "out", "RAYTRACER_OUT", sc.Export.Path)
	opts.Format = getConfigString(cmd, "format", "RAYTRACER_FORMAT", sc.Export.Format)
	opts.Compress = getConfigBool(cmd, "compress", "RAYTRACER_COMPRESS", sc.Export.Compress)
	opts.MaxBounces = getConfigInt(cmd, "max-bounces", "RAYTRACER_MAX_BOUNCES", sc.MaxBounces)
	opts.MetricsFile = getConfigString(cmd, "metrics-file", "RAYTRACER_METRICS_FILE", "")
	opts.Progress = getConfigDuration(cmd, "progress", "RAYTRACER_PROGRESS", 0)
	opts.TraceFile = getConfigString(cmd, "trace-file", "RAYTRACER_TRACING_FILE", "")
	if opts.MaxBounces <= 0 {
		return opts, nil, fmt.Errorf("max bounces must be positive, got %d", opts.MaxBounces)
	}
	return opts, sc, nil
}

func runTrace(ctx context.Context, stdout io.Writer, log logging.Logger, opts traceOptions, sc *config.Scenario) error {
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		log.Error(ctx, "invalid export format", logging.String("format", opts.Format))
		return err
	}

	tracing := observability.TracingConfigFromEnv()
	if opts.TraceFile != "" {
		tracing.Enabled = true
		tracing.Exporter = observability.ExporterFile
		tracing.Path = opts.TraceFile
	}
	tracing.Attributes = map[string]string{"scenario.config": opts.ConfigPath}
	shutdown, err := observability.InitTracing(ctx, tracing, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	collector, err := observability.NewTracerCollector(prometheus.NewRegistry())
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		return err
	}

	planet := sc.Planet
	scene, err := core.BuildScene(&planet, sc.Layout, sc.Profiles)
	if err != nil {
		log.Error(ctx, "failed to build scene", logging.Err(err))
		return err
	}
	launches, err := sc.Grid.Launches(planet)
	if err != nil {
		log.Error(ctx, "failed to expand launch grid", logging.Err(err))
		return err
	}
	log.Info(ctx, "scenario loaded",
		logging.String("config", opts.ConfigPath),
		logging.Int("geometries", scene.Len()),
		logging.Int("profiles", len(sc.Profiles)),
		logging.Int("rays", len(launches)),
	)

	results := dataset.New()
	engine := core.NewEngine(scene, results,
		core.WithLogger(log),
		core.WithMetricsRecorder(collector),
		core.WithMaxBounces(opts.MaxBounces),
		core.WithProgressInterval(opts.Progress),
	)
	summary := engine.Run(ctx, launches)
	for term, n := range summary.ByTermination {
		log.Info(ctx, "rays terminated", logging.String("termination", term.String()), logging.Int("rays", n))
	}

	written, err := writeSamples(stdout, opts, format, results)
	if err != nil {
		log.Error(ctx, "failed to export samples", logging.Err(err))
		return err
	}
	log.Info(ctx, "samples exported",
		logging.String("path", written),
		logging.String("format", format.String()),
		logging.Int("samples", results.Len()),
	)

	if opts.MetricsFile != "" {
		if err := collector.WriteTextfile(opts.MetricsFile); err != nil {
			log.Error(ctx, "failed to write metrics", logging.Err(err))
			return err
		}
	}
	return nil
}

var errNoOutput = errors.New("no output path configured")

// writeSamples exports in canonical order and returns where the samples
// went.
func writeSamples(stdout io.Writer, opts traceOptions, format export.Format, results *dataset.Dataset) (string, error) {
	samples := results.Sorted()
	switch opts.Out {
	case "":
		return "", errNoOutput
	case "-":
		exp, err := export.New(format)
		if err != nil {
			return "", err
		}
		if !opts.Compress {
			return "stdout", exp.Export(stdout, samples)
		}
		zw, err := zstd.NewWriter(stdout)
		if err != nil {
			return "", err
		}
		if err := exp.Export(zw, samples); err != nil {
			zw.Close()
			return "", err
		}
		return "stdout", zw.Close()
	default:
		return export.WriteFile(opts.Out, format, opts.Compress, samples)
	}
}
