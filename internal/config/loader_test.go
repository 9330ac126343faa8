package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"hello", "hello"},
		{123, "123"},
		{true, "true"},
		{nil, ""},
		{[]byte("bytes"), "bytes"},
	}

	for _, tt := range tests {
		got, err := asString(tt.input)
		if err != nil {
			t.Errorf("asString(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		input interface{}
		want  int
	}{
		{123, 123},
		{"456", 456},
		{int64(789), 789},
		{float64(10.0), 10},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asInt(tt.input)
		if err != nil {
			t.Errorf("asInt(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		input interface{}
		want  bool
	}{
		{true, true},
		{"true", true},
		{"1", true},
		{false, false},
		{"false", false},
		{"0", false},
		{nil, false},
	}

	for _, tt := range tests {
		got, err := asBool(tt.input)
		if err != nil {
			t.Errorf("asBool(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asBool(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAsDuration(t *testing.T) {
	tests := []struct {
		input interface{}
		want  time.Duration
	}{
		{time.Second, time.Second},
		{"1m", time.Minute},
		{10, 10 * time.Second}, // int treated as seconds
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asDuration(tt.input)
		if err != nil {
			t.Errorf("asDuration(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asDuration(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := &Config{}
	settings := map[string]interface{}{
		"target_url":           "http://example.com",
		"run_duration_seconds": 10,
		"concurrent_requests":  "4",
		"test_summary":         "nightly smoke",
		"timeout":              "5s",
		"report_format":        "JSON",
		"tracing": map[string]interface{}{
			"endpoint":    "localhost:4317",
			"sample_rate": 0.5,
			"propagate":   true,
		},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}

	if cfg.TargetURL != "http://example.com" {
		t.Errorf("TargetURL = %q, want http://example.com", cfg.TargetURL)
	}
	if cfg.DurationSeconds != 10 {
		t.Errorf("DurationSeconds = %d, want 10", cfg.DurationSeconds)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.Summary != "nightly smoke" {
		t.Errorf("Summary = %q, want nightly smoke", cfg.Summary)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.ReportFormat != ReportFormatJSON {
		t.Errorf("ReportFormat = %q, want json", cfg.ReportFormat)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" {
		t.Errorf("Tracing.Endpoint = %q, want localhost:4317", cfg.Tracing.Endpoint)
	}
	if cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("Tracing.SampleRate = %v, want 0.5", cfg.Tracing.SampleRate)
	}
	if !cfg.Tracing.Propagate {
		t.Errorf("Tracing.Propagate = false, want true")
	}
}

func TestApplyConfigSettingsRejectsBadTypes(t *testing.T) {
	cfg := &Config{}
	err := applyConfigSettings(cfg, map[string]interface{}{
		"concurrent_requests": "many",
	})
	if err == nil {
		t.Fatal("expected error for non-numeric concurrent_requests")
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := &Config{
		TargetURL:   "http://from-file.example",
		Concurrency: 1,
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)

	args := []string{
		"--concurrent-requests=5",
		"--test-summary=override",
		"--no-progress",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.Summary != "override" {
		t.Errorf("Summary = %q, want override", cfg.Summary)
	}
	if !cfg.NoProgress {
		t.Errorf("NoProgress = false, want true")
	}
	// Unchanged flags must not clobber file values.
	if cfg.TargetURL != "http://from-file.example" {
		t.Errorf("TargetURL = %q, want value from file", cfg.TargetURL)
	}
}
