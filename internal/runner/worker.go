package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/simpleload/internal/resultlog"
	"github.com/torosent/simpleload/internal/tracing"
)

// Worker issues requests back to back until its deadline passes.
type Worker struct {
	ID        int
	Target    string
	Duration  time.Duration
	Requester Requester
	Sink      Sink
	Observers []Observer
	Tracer    trace.Tracer
	Logger    *slog.Logger
}

// Run loops until now >= start+Duration or ctx is cancelled, and returns the
// number of attempts made. The deadline is checked only between attempts, so
// a request in flight when it passes still completes and is recorded.
func (w *Worker) Run(ctx context.Context) int64 {
	if w.Tracer == nil {
		w.Tracer = noop.NewTracerProvider().Tracer("simpleload")
	}
	deadline := time.Now().Add(w.Duration)
	var seq int64 = 1

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}
		w.attempt(ctx, seq)
		seq++
	}
	return seq - 1
}

func (w *Worker) attempt(ctx context.Context, seq int64) {
	start := time.Now()
	reqCtx, span := tracing.StartRequestSpan(ctx, w.Tracer, w.Target, w.ID, seq)
	out := w.Requester.Do(reqCtx)
	latency := time.Since(start)
	tracing.EndSpan(span, out.StatusCode, out.Err)

	rec := resultlog.Record{
		Time:       start,
		WorkerID:   w.ID,
		Sequence:   seq,
		StatusCode: out.StatusCode,
		Latency:    latency,
		Size:       out.Size,
		Error:      resultlog.OK,
	}
	if out.Err != nil {
		rec.StatusCode = 0
		rec.Size = 0
		rec.Error = failureDescription(out.Err)
	}

	if err := w.Sink.Record(rec.String()); err != nil && w.Logger != nil {
		w.Logger.Debug("result not recorded", "worker", w.ID, "seq", seq, "error", err)
	}
	for _, obs := range w.Observers {
		obs.RecordRequest(w.ID, latency, rec.StatusCode, out.Err)
	}
}

// failureDescription returns a non-empty description of err that cannot be
// mistaken for a successful attempt.
func failureDescription(err error) string {
	desc := err.Error()
	if strings.TrimSpace(desc) == "" || desc == resultlog.OK {
		return fmt.Sprintf("%T", err)
	}
	return desc
}
