package output

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// Counter reports the number of attempts made so far.
type Counter interface {
	Count() int64
}

// ProgressReporter prints a single-line countdown of the remaining run time.
// It only reads an atomic attempt counter and never touches the request path.
type ProgressReporter struct {
	counter  Counter
	interval time.Duration
	writer   io.Writer
	bar      progress.Model
}

// NewProgressReporter creates a countdown that redraws at the given interval.
func NewProgressReporter(counter Counter, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &ProgressReporter{
		counter:  counter,
		interval: interval,
		writer:   writer,
		bar: progress.New(
			progress.WithGradient("#7D56F4", "#04B575"),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// Run draws the countdown until the duration has elapsed or ctx is cancelled.
func (p *ProgressReporter) Run(ctx context.Context, start time.Time, duration time.Duration) {
	fmt.Fprintln(p.writer, "Run duration countdown (%):")
	fmt.Fprint(p.writer, p.line(0, duration))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.writer)
			return
		case now := <-ticker.C:
			elapsed := now.Sub(start)
			fmt.Fprint(p.writer, p.line(elapsed, duration))
			if elapsed >= duration {
				fmt.Fprintln(p.writer)
				return
			}
		}
	}
}

func (p *ProgressReporter) line(elapsed, duration time.Duration) string {
	pct := remainingPercent(elapsed, duration)
	var count int64
	if p.counter != nil {
		count = p.counter.Count()
	}
	return fmt.Sprintf("\r%3d%%   %s | Requests: %d", pct, p.bar.ViewAs(1-float64(pct)/100), count)
}

// remainingPercent returns the share of the run still to go, in [0, 100].
func remainingPercent(elapsed, duration time.Duration) int {
	if duration <= 0 {
		return 0
	}
	remaining := duration - elapsed
	if remaining <= 0 {
		return 0
	}
	if remaining >= duration {
		return 100
	}
	return int(remaining * 100 / duration)
}
