package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/simpleload/internal/config"
)

func validArgs(extra ...string) []string {
	args := []string{
		"--target-url", "https://www.example.com",
		"--run-duration-seconds", "10",
		"--concurrent-requests", "5",
	}
	return append(args, extra...)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.NewLoader().Load(validArgs())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "https://www.example.com" {
		t.Errorf("TargetURL = %q, want https://www.example.com", cfg.TargetURL)
	}
	if cfg.DurationSeconds != 10 {
		t.Errorf("DurationSeconds = %d, want 10", cfg.DurationSeconds)
	}
	if cfg.Duration() != 10*time.Second {
		t.Errorf("Duration() = %s, want 10s", cfg.Duration())
	}
	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.Summary != "" {
		t.Errorf("Summary = %q, want empty", cfg.Summary)
	}
	if cfg.OutputDir != config.DefaultOutputDir {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, config.DefaultOutputDir)
	}
	if cfg.ReportFormat != config.ReportFormatText {
		t.Errorf("ReportFormat = %q, want text", cfg.ReportFormat)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %s, want 0", cfg.Timeout)
	}
	if cfg.Tracing.Enabled() {
		t.Errorf("Tracing.Enabled() = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadHelp(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"help flag", []string{"--help"}},
		{"help among valid flags", validArgs("--help")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.NewLoader().Load(tt.args)
			if !errors.Is(err, config.ErrHelpRequested) {
				t.Fatalf("Load() error = %v, want ErrHelpRequested", err)
			}
		})
	}
}

func TestLoadRejectsTooFewArguments(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--target-url", "https://www.example.com", "--concurrent-requests", "2"})
	if !errors.Is(err, config.ErrInsufficientArgs) {
		t.Fatalf("Load() error = %v, want ErrInsufficientArgs", err)
	}
}

func TestLoadRejectsUnknownInputs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", validArgs("--method", "POST")},
		{"positional token", validArgs("stray")},
		{"non-numeric duration", []string{
			"--target-url", "https://www.example.com",
			"--run-duration-seconds", "ten",
			"--concurrent-requests", "5",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.NewLoader().Load(tt.args); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	if err := os.WriteFile(path, []byte(`
target_url: https://api.example.com/health
run_duration_seconds: 30
concurrent_requests: 8
test_summary: from file
output_dir: results
timeout: 2s
report_format: yaml
tracing:
  endpoint: localhost:4318
  protocol: http
  insecure: true
`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path, "--concurrent-requests", "3"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "https://api.example.com/health" {
		t.Errorf("TargetURL = %q", cfg.TargetURL)
	}
	if cfg.DurationSeconds != 30 {
		t.Errorf("DurationSeconds = %d, want 30", cfg.DurationSeconds)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3 (flag overrides file)", cfg.Concurrency)
	}
	if cfg.Summary != "from file" {
		t.Errorf("Summary = %q, want from file", cfg.Summary)
	}
	if cfg.OutputDir != "results" {
		t.Errorf("OutputDir = %q, want results", cfg.OutputDir)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %s, want 2s", cfg.Timeout)
	}
	if cfg.ReportFormat != config.ReportFormatYAML {
		t.Errorf("ReportFormat = %q, want yaml", cfg.ReportFormat)
	}
	if cfg.Tracing.Endpoint != "localhost:4318" || cfg.Tracing.Protocol != "http" || !cfg.Tracing.Insecure {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("Tracing.SampleRate = %v, want default 1.0", cfg.Tracing.SampleRate)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	if err := os.WriteFile(path, []byte(`{
		"target_url": "http://localhost:8080/ping",
		"run_duration_seconds": 1,
		"concurrent_requests": 1
	}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.TargetURL != "http://localhost:8080/ping" {
		t.Errorf("TargetURL = %q", cfg.TargetURL)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := config.Config{
		TargetURL:       "https://www.example.com",
		DurationSeconds: 1,
		Concurrency:     1,
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"missing target", func(c *config.Config) { c.TargetURL = "" }, "target-url is required"},
		{"bad scheme", func(c *config.Config) { c.TargetURL = "gopher://example.com" }, "invalid target-url"},
		{"zero duration", func(c *config.Config) { c.DurationSeconds = 0 }, "run-duration-seconds"},
		{"duration at max", func(c *config.Config) { c.DurationSeconds = config.MaxDurationSeconds }, ""},
		{"duration over max", func(c *config.Config) { c.DurationSeconds = config.MaxDurationSeconds + 1 }, "cannot be larger than"},
		{"duration wraps past uint64", func(c *config.Config) { c.DurationSeconds = 18446744074 }, "cannot be larger than"},
		{"negative concurrency", func(c *config.Config) { c.Concurrency = -1 }, "concurrent-requests"},
		{"summary at limit", func(c *config.Config) { c.Summary = strings.Repeat("a", config.MaxSummaryLength) }, ""},
		{"summary over limit", func(c *config.Config) { c.Summary = strings.Repeat("a", config.MaxSummaryLength+1) }, "test-summary is too long"},
		{"multibyte summary at limit", func(c *config.Config) { c.Summary = strings.Repeat("é", config.MaxSummaryLength) }, ""},
		{"negative timeout", func(c *config.Config) { c.Timeout = -time.Second }, "timeout must be >= 0"},
		{"bad report format", func(c *config.Config) { c.ReportFormat = "xml" }, "report-format"},
		{"bad tracing protocol", func(c *config.Config) { c.Tracing.Protocol = "udp" }, "tracing: protocol"},
		{"bad sample rate", func(c *config.Config) { c.Tracing.SampleRate = 1.5 }, "sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
			var verr config.ValidationError
			if !errors.As(err, &verr) || len(verr.Issues()) == 0 {
				t.Fatalf("expected ValidationError with issues, got %T", err)
			}
		})
	}
}

func TestDurationAtMaxDoesNotWrap(t *testing.T) {
	cfg := config.Config{DurationSeconds: config.MaxDurationSeconds}
	if got := cfg.Duration(); got < time.Duration(config.MaxDurationSeconds-1)*time.Second {
		t.Fatalf("Duration() = %v, want at least %d seconds", got, config.MaxDurationSeconds-1)
	}
}

func TestValidTargetURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.google.com", true},
		{"http://example.com/path/to/page", true},
		{"http://127.0.0.1:8080/health", true},
		{"https://example.com/search?q=go&page=2", true},
		{"ftp://files.example.com/pub", true},
		{"ftps://files.example.com", true},
		{"https://example.invalid", true},
		{"www.example.com", false},
		{"https://", false},
		{"https://-bad.example.com", false},
		{"mailto:someone@example.com", false},
		{"https://example.com/with space", false},
	}
	for _, tt := range tests {
		if got := config.ValidTargetURL(tt.url); got != tt.want {
			t.Errorf("ValidTargetURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
