package config

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// MinArgs is the fewest command-line tokens accepted without a config file:
// the three required flags and their values.
const MinArgs = 6

// Loader handles loading configuration from files and command-line arguments.
type Loader struct {
	Out io.Writer // help and usage output; defaults to stdout
}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// ErrInsufficientArgs is returned when too few arguments are supplied.
var ErrInsufficientArgs = errors.New("not sufficient inputs")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (l Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if l.Out != nil {
		cmd.SetOut(l.Out)
	}
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return nil, fmt.Errorf("unknown inputs: %s", strings.Join(extra, " "))
	}
	if configPath == "" && len(args) < MinArgs {
		return nil, ErrInsufficientArgs
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		OutputDir:    DefaultOutputDir,
		ReportFormat: ReportFormatText,
		ConfigFile:   configPath,
		Tracing:      TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	return cfg, nil
}

// Usage writes the help text to w, or to stdout when w is nil.
func Usage(w io.Writer) {
	cmd := newFlagCommand()
	if w != nil {
		cmd.SetOut(w)
	}
	displayHelp(cmd)
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target_url", "targeturl", "target-url", "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target_url: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "run_duration_seconds", "rundurationseconds", "run-duration-seconds"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("run_duration_seconds: %w", err)
		}
		cfg.DurationSeconds = val
	}

	if raw, ok := lookupSetting(settings, "concurrent_requests", "concurrentrequests", "concurrent-requests"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrent_requests: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "test_summary", "testsummary", "test-summary"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("test_summary: %w", err)
		}
		cfg.Summary = val
	}

	if raw, ok := lookupSetting(settings, "output_dir", "outputdir", "output-dir"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("output_dir: %w", err)
		}
		cfg.OutputDir = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "report_format", "reportformat", "report-format"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("report_format: %w", err)
		}
		cfg.ReportFormat = ReportFormat(strings.ToLower(strings.TrimSpace(val)))
	}

	if raw, ok := lookupSetting(settings, "no_progress", "noprogress", "no-progress"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("no_progress: %w", err)
		}
		cfg.NoProgress = val
	}

	if raw, ok := lookupSetting(settings, "verbose"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("verbose: %w", err)
		}
		cfg.Verbose = val
	}

	if raw, ok := lookupSetting(settings, "metrics_addr", "metricsaddr", "metrics-addr"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("metrics_addr: %w", err)
		}
		cfg.MetricsAddr = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracingConfig(raw, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseTracingConfig(value interface{}, base TracingConfig) (TracingConfig, error) {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	cfg := base

	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		cfg.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		cfg.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		cfg.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "service_name", "servicename", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		cfg.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "sample_rate", "samplerate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		cfg.SampleRate = val
	}
	if raw, ok := lookupSetting(settings, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("propagate: %w", err)
		}
		cfg.Propagate = val
	}
	return cfg, nil
}
