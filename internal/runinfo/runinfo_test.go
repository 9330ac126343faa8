package runinfo_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/simpleload/internal/runinfo"
)

func TestRunInfoBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log_test_info.txt")
	var console bytes.Buffer

	f, err := runinfo.Create(path, "Log/log.csv", &console)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	start := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	end := start.Add(10 * time.Second)
	if err := f.WriteStart(runinfo.Settings{
		TargetURL:   "https://www.example.com",
		Duration:    10 * time.Second,
		Concurrency: 5,
		Summary:     "smoke test",
	}, start); err != nil {
		t.Fatalf("WriteStart() error = %v", err)
	}
	fmt.Fprintln(f, "report body")
	if err := f.WriteCompletion(end, ""); err != nil {
		t.Fatalf("WriteCompletion() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := strings.Join([]string{
		"Test result file:",
		"Log/log.csv",
		"Test summary: smoke test",
		"2024-03-09 14:05:07 Load test starting...",
		"Target URL: https://www.example.com",
		"Run duration (s): 10",
		"Concurrent requests: 5",
		"report body",
		"2024-03-09 14:05:17 Load test completed",
		"",
	}, "\n")
	if string(data) != want {
		t.Errorf("run info =\n%s\nwant\n%s", data, want)
	}

	if strings.Contains(console.String(), "report body") {
		t.Error("raw writes should not be echoed to the console")
	}
	if !strings.Contains(console.String(), "Load test completed") {
		t.Error("completion line should be echoed to the console")
	}
}

func TestRunInfoCompletionNote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.txt")
	f, err := runinfo.Create(path, "result.csv", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.WriteCompletion(time.Now(), "interrupted"); err != nil {
		t.Fatalf("WriteCompletion() error = %v", err)
	}
	f.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "Load test completed (interrupted)") {
		t.Errorf("run info = %q, want interruption note", data)
	}
}

func TestCreateFailsForMissingDirectory(t *testing.T) {
	_, err := runinfo.Create(filepath.Join(t.TempDir(), "missing", "info.txt"), "result.csv", nil)
	if err == nil {
		t.Fatal("expected error")
	}
}
