package runner_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/torosent/simpleload/internal/resultlog"
	"github.com/torosent/simpleload/internal/runner"
)

// fakeRequester simulates performing a request with fixed latency.
type fakeRequester struct {
	latency time.Duration
	calls   atomic.Int64
	outcome runner.Outcome
}

func (f *fakeRequester) Do(ctx context.Context) runner.Outcome {
	f.calls.Add(1)
	select {
	case <-time.After(f.latency):
	case <-ctx.Done():
		return runner.Outcome{Err: ctx.Err()}
	}
	return f.outcome
}

// memSink collects result lines in memory.
type memSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *memSink) Record(entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, entry)
	return nil
}

func (s *memSink) records(t *testing.T) []resultlog.Record {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]resultlog.Record, 0, len(s.lines))
	for _, line := range s.lines {
		rec, err := resultlog.ParseRecord(line, time.Local)
		if err != nil {
			t.Fatalf("ParseRecord(%q) error = %v", line, err)
		}
		out = append(out, rec)
	}
	return out
}

// countingObserver counts attempts per status code.
type countingObserver struct {
	mu       sync.Mutex
	statuses map[int]int
	errs     int
}

func (o *countingObserver) RecordRequest(_ int, latency time.Duration, statusCode int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.statuses == nil {
		o.statuses = make(map[int]int)
	}
	o.statuses[statusCode]++
	if err != nil {
		o.errs++
	}
}

func TestWorkerSequencesStartAtOne(t *testing.T) {
	req := &fakeRequester{latency: 2 * time.Millisecond, outcome: runner.Outcome{StatusCode: 200, Size: 512}}
	sink := &memSink{}
	obs := &countingObserver{}
	w := &runner.Worker{
		ID:        7,
		Target:    "http://example.com/",
		Duration:  60 * time.Millisecond,
		Requester: req,
		Sink:      sink,
		Observers: []runner.Observer{obs},
	}

	start := time.Now()
	n := w.Run(context.Background())
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("worker returned before its deadline: %s", elapsed)
	}

	recs := sink.records(t)
	if int64(len(recs)) != n || n == 0 {
		t.Fatalf("Run() = %d attempts, sink has %d lines", n, len(recs))
	}
	for i, rec := range recs {
		if rec.Sequence != int64(i+1) {
			t.Fatalf("record %d has sequence %d", i, rec.Sequence)
		}
		if rec.WorkerID != 7 || rec.StatusCode != 200 || rec.Size != 512 || !rec.Succeeded() {
			t.Fatalf("unexpected record %+v", rec)
		}
		if rec.Latency < 0 {
			t.Fatalf("negative latency in %+v", rec)
		}
	}
	if obs.statuses[200] != len(recs) {
		t.Errorf("observer saw %d attempts, want %d", obs.statuses[200], len(recs))
	}
}

func TestWorkerRecordsTransportFailures(t *testing.T) {
	req := &fakeRequester{outcome: runner.Outcome{
		StatusCode: 502,
		Size:       99,
		Err:        errors.New("dial tcp: lookup example.invalid: no such host"),
	}}
	sink := &memSink{}
	obs := &countingObserver{}
	w := &runner.Worker{
		ID:        0,
		Duration:  20 * time.Millisecond,
		Requester: req,
		Sink:      sink,
		Observers: []runner.Observer{obs},
	}
	w.Run(context.Background())

	recs := sink.records(t)
	if len(recs) == 0 {
		t.Fatal("expected at least one record")
	}
	for _, rec := range recs {
		if rec.Status() != resultlog.StatusUnprocessable || rec.Size != 0 {
			t.Fatalf("failed attempt should use the sentinel status and size 0, got %+v", rec)
		}
		if !strings.Contains(rec.Error, "no such host") {
			t.Fatalf("error description = %q", rec.Error)
		}
	}
	if obs.errs != len(recs) || obs.statuses[0] != len(recs) {
		t.Errorf("observer = %+v, want %d failures with status 0", obs, len(recs))
	}
}

type blankError struct{}

func (blankError) Error() string { return "" }

func TestWorkerNeverRecordsFailureAsOK(t *testing.T) {
	for _, err := range []error{blankError{}, errors.New(resultlog.OK), errors.New("  ")} {
		sink := &memSink{}
		w := &runner.Worker{
			Duration:  5 * time.Millisecond,
			Requester: &fakeRequester{outcome: runner.Outcome{Err: err}},
			Sink:      sink,
		}
		w.Run(context.Background())

		recs := sink.records(t)
		if len(recs) == 0 {
			t.Fatalf("%T: expected at least one record", err)
		}
		for _, rec := range recs {
			if rec.Succeeded() || rec.Error == "" {
				t.Fatalf("%T(%q) recorded as %+v", err, err.Error(), rec)
			}
			if rec.Status() != resultlog.StatusUnprocessable {
				t.Fatalf("status = %q, want %q", rec.Status(), resultlog.StatusUnprocessable)
			}
		}
	}
}

func TestWorkerFinishesInFlightRequest(t *testing.T) {
	req := &fakeRequester{latency: 80 * time.Millisecond, outcome: runner.Outcome{StatusCode: 204}}
	sink := &memSink{}
	w := &runner.Worker{Duration: 10 * time.Millisecond, Requester: req, Sink: sink}

	start := time.Now()
	if n := w.Run(context.Background()); n != 1 {
		t.Fatalf("Run() = %d attempts, want 1", n)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("in-flight request was not awaited: %s", elapsed)
	}
	if recs := sink.records(t); len(recs) != 1 || recs[0].StatusCode != 204 {
		t.Fatalf("records = %+v", recs)
	}
}

func TestWorkerStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := &fakeRequester{outcome: runner.Outcome{StatusCode: 200}}
	w := &runner.Worker{Duration: time.Second, Requester: req, Sink: &memSink{}}

	start := time.Now()
	if n := w.Run(ctx); n != 0 {
		t.Fatalf("Run() = %d attempts on a cancelled context, want 0", n)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("cancelled worker did not return promptly")
	}
}
