package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "simpleload",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Run flags
	flags.String("target-url", "", "The URL to test, e.g. https://the.url.to.test")
	flags.Int("run-duration-seconds", 0, "Seconds to run")
	flags.Int("concurrent-requests", 0, "How many concurrent tests to run")
	flags.String("test-summary", "", "OPTIONAL, description of this test")

	// Output flags
	flags.String("output-dir", DefaultOutputDir, "Directory for the result log and test info files")
	flags.String("report-format", string(ReportFormatText), "Format of the final report: text, json, or yaml")
	flags.Bool("no-progress", false, "Disable the countdown progress line")
	flags.Bool("verbose", false, "Enable debug logging on stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Transport flags
	flags.Duration("timeout", 0, "Per-request timeout (0 uses the transport defaults)")

	// Observability flags
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run (e.g. :9090)")
	flags.String("tracing-endpoint", "", "OTLP endpoint to export request spans to")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.String("tracing-service-name", "", "service.name reported with spans")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of requests to sample (0.0-1.0)")
	flags.Bool("tracing-propagate", false, "Inject W3C trace context headers into requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Example:")
	fmt.Fprintln(out, `--target-url https://www.google.com --run-duration-seconds 10 --concurrent-requests 5 --test-summary "test google with 5 requests for 10s"`)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "NOTES: This tool sends concurrent HTTP requests to the target URL from the same IP address. If the target system throttles on IP address, the test will be limited.")
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target-url") {
		val, err := fs.GetString("target-url")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("run-duration-seconds") {
		val, err := fs.GetInt("run-duration-seconds")
		if err != nil {
			return err
		}
		cfg.DurationSeconds = val
	}
	if fs.Changed("concurrent-requests") {
		val, err := fs.GetInt("concurrent-requests")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("test-summary") {
		val, err := fs.GetString("test-summary")
		if err != nil {
			return err
		}
		cfg.Summary = val
	}
	if fs.Changed("output-dir") {
		val, err := fs.GetString("output-dir")
		if err != nil {
			return err
		}
		cfg.OutputDir = strings.TrimSpace(val)
	}
	if fs.Changed("report-format") {
		val, err := fs.GetString("report-format")
		if err != nil {
			return err
		}
		cfg.ReportFormat = ReportFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("no-progress") {
		val, err := fs.GetBool("no-progress")
		if err != nil {
			return err
		}
		cfg.NoProgress = val
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("metrics-addr") {
		val, err := fs.GetString("metrics-addr")
		if err != nil {
			return err
		}
		cfg.MetricsAddr = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}
	return nil
}
