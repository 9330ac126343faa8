package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/torosent/simpleload/internal/config"
	"github.com/torosent/simpleload/internal/httpclient"
	"github.com/torosent/simpleload/internal/metrics"
	"github.com/torosent/simpleload/internal/output"
	"github.com/torosent/simpleload/internal/runner"
	"github.com/torosent/simpleload/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	loader := config.Loader{Out: stdout}
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		config.Usage(stdout)
		return err
	}
	if err := cfg.Validate(); err != nil {
		config.Usage(stdout)
		return err
	}

	logger := newLogger(stderr, cfg.Verbose)

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	builder, err := httpclient.NewRequestBuilder(cfg.TargetURL, provider.ShouldPropagate())
	if err != nil {
		return err
	}
	client := httpclient.NewClient(cfg.Timeout)
	defer client.CloseIdleConnections()

	collector := metrics.NewCollector()
	observers := []runner.Observer{collector}

	if cfg.MetricsAddr != "" {
		metricsCtx, stopMetrics := context.WithCancel(ctx)
		defer stopMetrics()
		exporter := metrics.NewExporter()
		addr, err := exporter.Serve(metricsCtx, cfg.MetricsAddr)
		if err != nil {
			return err
		}
		logger.Info("serving prometheus metrics", "addr", addr.String(), "path", "/metrics")
		observers = append(observers, exporter)
	}

	format := cfg.ReportFormat
	if format == "" {
		format = config.ReportFormatText
	}
	// Machine-readable reports own stdout; progress goes to stderr.
	console := stdout
	if format != config.ReportFormatText {
		console = stderr
	}
	var countdown runner.Countdown
	if !cfg.NoProgress {
		countdown = output.NewProgressReporter(collector, progressInterval, console)
	}

	coordinator := runner.New(runner.Options{
		OutputDir: cfg.OutputDir,
		Requester: &httpRequester{client: client, builder: builder},
		Observers: observers,
		Countdown: countdown,
		Console:   console,
		Logger:    logger,
		Tracer:    provider.Tracer(),
		Report: func(w io.Writer, s runner.Summary) error {
			return output.Write(w, config.ReportFormatText, buildReport(*cfg, s, collector))
		},
	})

	summary, err := coordinator.Execute(ctx, runner.RunConfigFrom(*cfg))
	if err != nil {
		return err
	}

	if err := output.Write(stdout, format, buildReport(*cfg, summary, collector)); err != nil {
		return err
	}
	if format == config.ReportFormatText {
		fmt.Fprintln(stdout, "Test summary file:")
		fmt.Fprintln(stdout, summary.InfoPath)
		fmt.Fprintln(stdout, "Test result file:")
		fmt.Fprintln(stdout, summary.ResultPath)
	}
	return nil
}

func buildReport(cfg config.Config, s runner.Summary, collector *metrics.Collector) output.Report {
	return output.Report{
		TargetURL:   cfg.TargetURL,
		Summary:     cfg.Summary,
		Concurrency: cfg.Concurrency,
		ResultFile:  s.ResultPath,
		InfoFile:    s.InfoPath,
		Interrupted: s.Interrupted,
		ResultLog:   s.Log,
		Stats:       collector.Stats(s.Elapsed()),
		PerWorker:   collector.WorkerCounts(),
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
