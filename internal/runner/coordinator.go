package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/torosent/simpleload/internal/resultlog"
	"github.com/torosent/simpleload/internal/runinfo"
)

// Summary describes a finished run.
type Summary struct {
	ResultPath  string
	InfoPath    string
	Start       time.Time
	End         time.Time
	Attempts    int64
	Interrupted bool
	Log         resultlog.Stats
	LogErr      error // accumulated result log write failures
}

// Elapsed returns the wall time of the run.
func (s Summary) Elapsed() time.Duration {
	return s.End.Sub(s.Start)
}

// Coordinator runs a fixed number of workers against one target and owns the
// run's output files.
type Coordinator struct {
	opt Options
}

func New(opt Options) *Coordinator {
	opt.normalize()
	return &Coordinator{opt: opt}
}

// Execute performs one run. Errors are returned only from setup, before any
// worker starts; once workers are running the run always completes and both
// file paths are returned. Cancelling ctx stops workers between attempts and
// marks the run as interrupted.
func (c *Coordinator) Execute(ctx context.Context, cfg RunConfig) (Summary, error) {
	if err := validate(cfg, c.opt); err != nil {
		return Summary{}, err
	}
	log := c.opt.Logger

	start := c.opt.Now()
	results, err := resultlog.Open(resultlog.Options{
		Dir:    c.opt.OutputDir,
		Header: resultlog.Header,
		Now:    start,
		Logger: log,
	})
	if err != nil {
		return Summary{}, err
	}

	info, err := runinfo.Create(resultlog.InfoPath(results.Path()), results.Path(), c.opt.Console)
	if err != nil {
		_ = results.Close()
		return Summary{}, err
	}
	if err := info.WriteStart(runinfo.Settings{
		TargetURL:   cfg.TargetURL,
		Duration:    cfg.Duration,
		Concurrency: cfg.Concurrency,
		Summary:     cfg.Summary,
	}, start); err != nil {
		log.Warn("run info not written", "path", info.Path(), "error", err)
	}

	log.Debug("run starting",
		"target", cfg.TargetURL,
		"duration", cfg.Duration,
		"concurrency", cfg.Concurrency,
		"results", results.Path(),
	)

	var (
		wg       sync.WaitGroup
		attempts atomic.Int64
	)
	limiter := c.opt.LimiterFactory(c.opt.Stagger)
	wg.Add(cfg.Concurrency)
	for i := 0; i < cfg.Concurrency; i++ {
		_ = limiter.Wait(ctx)
		w := &Worker{
			ID:        i,
			Target:    cfg.TargetURL,
			Duration:  cfg.Duration,
			Requester: c.opt.Requester,
			Sink:      results,
			Observers: c.opt.Observers,
			Tracer:    c.opt.Tracer,
			Logger:    log,
		}
		go func() {
			defer wg.Done()
			attempts.Add(w.Run(ctx))
		}()
		fmt.Fprintf(c.opt.Console, "Concurrent Test ID: %d running...\n", i)
	}

	countdownCtx, stopCountdown := context.WithCancel(ctx)
	countdownDone := make(chan struct{})
	go func() {
		defer close(countdownDone)
		if c.opt.Countdown != nil {
			c.opt.Countdown.Run(countdownCtx, start, cfg.Duration)
		}
	}()

	wg.Wait()
	stopCountdown()
	<-countdownDone

	summary := Summary{
		ResultPath:  results.Path(),
		InfoPath:    info.Path(),
		Start:       start,
		End:         c.opt.Now(),
		Attempts:    attempts.Load(),
		Interrupted: ctx.Err() != nil,
	}
	summary.LogErr = results.Close()
	summary.Log = results.Stats()
	if summary.LogErr != nil {
		log.Warn("result log incomplete",
			"path", summary.ResultPath,
			"failed_writes", summary.Log.Failed,
			"error", summary.LogErr,
		)
	}

	if c.opt.Report != nil {
		if err := c.opt.Report(info, summary); err != nil {
			log.Warn("run report not written", "path", info.Path(), "error", err)
		}
	}

	note := ""
	if summary.Interrupted {
		note = "interrupted"
	}
	if err := info.WriteCompletion(summary.End, note); err != nil {
		log.Warn("completion marker not written", "path", info.Path(), "error", err)
	}
	if err := info.Close(); err != nil {
		log.Warn("run info not closed", "path", info.Path(), "error", err)
	}

	log.Debug("run finished",
		"attempts", summary.Attempts,
		"elapsed", summary.Elapsed(),
		"interrupted", summary.Interrupted,
	)
	return summary, nil
}

func validate(cfg RunConfig, opt Options) error {
	switch {
	case opt.Requester == nil:
		return fmt.Errorf("%w: requester is required", ErrInvalidRunConfig)
	case cfg.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidRunConfig, cfg.Duration)
	case cfg.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidRunConfig, cfg.Concurrency)
	}
	return nil
}
