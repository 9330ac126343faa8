package config

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxSummaryLength is the longest accepted --test-summary, in characters.
const MaxSummaryLength = 1024

// MaxDurationSeconds is the longest run whose duration fits in a
// time.Duration.
const MaxDurationSeconds = math.MaxInt64 / 1_000_000_000

// DefaultOutputDir is the directory result logs are written to, relative to
// the working directory.
const DefaultOutputDir = "Log"

type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
	ReportFormatYAML ReportFormat = "yaml"
)

// targetPattern accepts http(s) and ftp(s) URLs with an optional numeric port.
var targetPattern = regexp.MustCompile(`^(ht|f)tps?://[0-9a-zA-Z]([-.\w]*[0-9a-zA-Z])*(:[0-9]+)?/?([a-zA-Z0-9\-.?,'/\\+&%$#_=~]*)?$`)

type Config struct {
	TargetURL       string        `mapstructure:"target_url"`
	DurationSeconds int           `mapstructure:"run_duration_seconds"`
	Concurrency     int           `mapstructure:"concurrent_requests"`
	Summary         string        `mapstructure:"test_summary"`
	OutputDir       string        `mapstructure:"output_dir"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ReportFormat    ReportFormat  `mapstructure:"report_format"`
	NoProgress      bool          `mapstructure:"no_progress"`
	Verbose         bool          `mapstructure:"verbose"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	Tracing         TracingConfig `mapstructure:"tracing"`
	ConfigFile      string        `mapstructure:"-"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP collector endpoint
	Protocol    string  `mapstructure:"protocol"`     // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`     // Disable TLS to the collector
	ServiceName string  `mapstructure:"service_name"` // Reported service.name
	SampleRate  float64 `mapstructure:"sample_rate"`  // 0.0-1.0
	Propagate   bool    `mapstructure:"propagate"`    // Inject W3C trace headers into requests
}

// Enabled reports whether spans should be exported or propagated.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || t.Propagate
}

// ShouldPropagate reports whether trace context headers are added to requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// Duration returns the configured run duration.
func (c Config) Duration() time.Duration {
	return time.Duration(c.DurationSeconds) * time.Second
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// ValidTargetURL reports whether target is an http(s) or ftp(s) URL the
// tool accepts.
func ValidTargetURL(target string) bool {
	return targetPattern.MatchString(target)
}

func (c Config) Validate() error {
	var issues []string

	target := strings.TrimSpace(c.TargetURL)
	switch {
	case target == "":
		issues = append(issues, "target-url is required (use --help for usage information)")
	case !ValidTargetURL(target):
		issues = append(issues, fmt.Sprintf("invalid target-url: %s", target))
	}

	switch {
	case c.DurationSeconds < 1:
		issues = append(issues, "run-duration-seconds cannot be smaller than 1")
	case int64(c.DurationSeconds) > MaxDurationSeconds:
		issues = append(issues, fmt.Sprintf("run-duration-seconds cannot be larger than %d", MaxDurationSeconds))
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrent-requests cannot be smaller than 1")
	}
	if utf8.RuneCountInString(c.Summary) > MaxSummaryLength {
		issues = append(issues, fmt.Sprintf("test-summary is too long (max %d characters)", MaxSummaryLength))
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}

	switch c.ReportFormat {
	case "", ReportFormatText, ReportFormatJSON, ReportFormatYAML:
	default:
		issues = append(issues, fmt.Sprintf("report-format must be 'text', 'json', or 'yaml', got %q", c.ReportFormat))
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if c.Concurrency > 500 {
		fmt.Fprintf(os.Stderr, "WARNING: High concurrency configured (%d workers). Ensure you have authorization to test the target system.\n", c.Concurrency)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
