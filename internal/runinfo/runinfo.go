// Package runinfo writes the human-readable run summary that accompanies a
// result log.
package runinfo

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TimeLayout formats timestamps in the run-info file.
const TimeLayout = "2006-01-02 15:04:05"

// Settings is the configuration echoed into the run-info file.
type Settings struct {
	TargetURL   string
	Duration    time.Duration
	Concurrency int
	Summary     string
}

// File is an append-only run-info file. Every line written to it is also
// echoed to the console writer.
type File struct {
	mu         sync.Mutex
	path       string
	resultPath string
	file       *os.File
	echo       io.Writer
}

// Create opens the run-info file at path for appending.
func Create(path, resultPath string, echo io.Writer) (*File, error) {
	if echo == nil {
		echo = io.Discard
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create run info: %w", err)
	}
	return &File{path: path, resultPath: resultPath, file: f, echo: echo}, nil
}

// Path returns the run-info file path.
func (f *File) Path() string {
	return f.path
}

// WriteStart writes the opening block: result path, summary, start time and
// the run settings.
func (f *File) WriteStart(s Settings, start time.Time) error {
	return f.writeLines(
		"Test result file:",
		f.resultPath,
		"Test summary: "+s.Summary,
		start.Format(TimeLayout)+" Load test starting...",
		"Target URL: "+s.TargetURL,
		fmt.Sprintf("Run duration (s): %d", int(s.Duration/time.Second)),
		fmt.Sprintf("Concurrent requests: %d", s.Concurrency),
	)
}

// WriteCompletion appends the completion marker. note is appended to the
// marker line when not empty.
func (f *File) WriteCompletion(end time.Time, note string) error {
	line := end.Format(TimeLayout) + " Load test completed"
	if note != "" {
		line += " (" + note + ")"
	}
	return f.writeLines(line)
}

// Write appends p to the file without echoing it, so reports can be rendered
// straight into the run-info file.
func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Write(p)
}

// Close closes the underlying file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

func (f *File) writeLines(lines ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range lines {
		if _, err := fmt.Fprintln(f.file, line); err != nil {
			return fmt.Errorf("write run info: %w", err)
		}
		fmt.Fprintln(f.echo, line)
	}
	return nil
}
