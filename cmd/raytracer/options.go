package main

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/ionotracer/internal/logging"
)

// traceOptions holds the resolved settings of one trace invocation.
type traceOptions struct {
	ConfigPath  string
	Out         string
	Format      string
	Compress    bool
	MaxBounces  int
	MetricsFile string
	Progress    time.Duration
	TraceFile   string
}

// newLogger resolves --log-level/--log-format against LOG_LEVEL/LOG_FORMAT.
func newLogger(cmd *cobra.Command) logging.Logger {
	return logging.New(logging.Config{
		Level:  getConfigString(cmd, "log-level", "LOG_LEVEL", "info"),
		Format: getConfigString(cmd, "log-format", "LOG_FORMAT", "text"),
		Output: cmd.ErrOrStderr(),
	})
}

// getConfigString gets a string value from flag, then env, then default
func getConfigString(cmd *cobra.Command, flagName, envName, defaultValue string) string {
	if cmd.Flags().Changed(flagName) {
		val, _ := cmd.Flags().GetString(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return defaultValue
}

// getConfigInt gets an int value from flag, then env, then default
func getConfigInt(cmd *cobra.Command, flagName, envName string, defaultValue int) int {
	if cmd.Flags().Changed(flagName) {
		val, _ := cmd.Flags().GetInt(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

// getConfigBool gets a bool value from flag, then env, then default
func getConfigBool(cmd *cobra.Command, flagName, envName string, defaultValue bool) bool {
	if cmd.Flags().Changed(flagName) {
		val, _ := cmd.Flags().GetBool(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// getConfigDuration gets a duration value from flag, then env, then default
func getConfigDuration(cmd *cobra.Command, flagName, envName string, defaultValue time.Duration) time.Duration {
	if cmd.Flags().Changed(flagName) {
		val, _ := cmd.Flags().GetDuration(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
