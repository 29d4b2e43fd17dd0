package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "raytracer",
		Short: "Ionospheric HF ray tracer",
		Long: `raytracer launches fans of HF rays from a ground beacon through a layered
planetary ionosphere and records every layer interaction.

Scenario physics comes from a JSON config file. Logging is configured with
LOG_LEVEL and LOG_FORMAT, span export with the RAYTRACER_TRACING_* variables.
Flags take precedence over environment variables, which take precedence over
the config file.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")
	root.PersistentFlags().String("log-format", "", "Log format: text or json (env LOG_FORMAT)")

	root.AddCommand(newTraceCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the raytracer version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "raytracer %s\n", version)
		},
	}
}
