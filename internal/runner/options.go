package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"github.com/torosent/simpleload/internal/config"
)

// DefaultStagger is the delay between consecutive worker starts.
const DefaultStagger = 5 * time.Millisecond

// ErrInvalidRunConfig is returned by Execute before any file is created when
// the run parameters cannot produce a run.
var ErrInvalidRunConfig = errors.New("invalid run config")

// Outcome is the result of one request attempt. StatusCode is 0 and Err is
// set when no response was received.
type Outcome struct {
	StatusCode int
	Size       int64
	Err        error
}

// Requester abstracts executing a single request against the target.
type Requester interface {
	Do(ctx context.Context) Outcome
}

// Observer receives every attempt after it has been handed to the sink.
// Implementations must be safe for concurrent use.
type Observer interface {
	RecordRequest(workerID int, latency time.Duration, statusCode int, err error)
}

// Sink accepts formatted result lines.
type Sink interface {
	Record(entry string) error
}

// Countdown renders run progress until ctx is cancelled or the duration has
// elapsed.
type Countdown interface {
	Run(ctx context.Context, start time.Time, duration time.Duration)
}

// ReportFunc appends a run report to the run-info file.
type ReportFunc func(w io.Writer, s Summary) error

// RunConfig is the read-only description of one run.
type RunConfig struct {
	TargetURL   string
	Duration    time.Duration
	Concurrency int
	Summary     string
}

// RunConfigFrom converts validated CLI configuration.
func RunConfigFrom(cfg config.Config) RunConfig {
	return RunConfig{
		TargetURL:   cfg.TargetURL,
		Duration:    cfg.Duration(),
		Concurrency: cfg.Concurrency,
		Summary:     cfg.Summary,
	}
}

// Options configure the Coordinator.
type Options struct {
	OutputDir string        // result directory, defaults to config.DefaultOutputDir
	Requester Requester     // request executor (required)
	Observers []Observer    // notified of every attempt
	Countdown Countdown     // optional progress display
	Report    ReportFunc    // optional report appended to the run-info file
	Console   io.Writer     // run-info echo and worker start lines
	Stagger   time.Duration // delay between worker starts; < 0 disables
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Now       func() time.Time

	LimiterFactory func(stagger time.Duration) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.OutputDir == "" {
		o.OutputDir = config.DefaultOutputDir
	}
	if o.Console == nil {
		o.Console = io.Discard
	}
	if o.Stagger == 0 {
		o.Stagger = DefaultStagger
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("simpleload")
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(stagger time.Duration) *rate.Limiter {
			if stagger <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			return rate.NewLimiter(rate.Every(stagger), 1)
		}
	}
}
