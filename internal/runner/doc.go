// Package runner provides the load test execution engine for simpleload.
//
// A run starts a fixed number of workers against a single target. Each
// worker issues requests back to back, one at a time, until its own deadline
// passes, and writes one result line per attempt:
//   - Worker IDs are 0..concurrency-1
//   - Sequence numbers start at 1 and increase by one per attempt
//   - Transport failures are recorded, never retried
//   - A request in flight at the deadline completes and is recorded
//
// # Basic Usage
//
// Create a coordinator with options and a requester implementation:
//
//	c := runner.New(runner.Options{
//		OutputDir: "Log",
//		Requester: myRequester,
//		Observers: []runner.Observer{collector},
//		Console:   os.Stdout,
//	})
//	summary, err := c.Execute(ctx, runner.RunConfig{
//		TargetURL:   "https://www.example.com",
//		Duration:    10 * time.Second,
//		Concurrency: 5,
//	})
//
// Execute opens the result log and the run-info file, starts the workers
// with a small stagger, waits for all of them, appends the completion marker
// and returns both paths in the [Summary].
//
// # Requester Interface
//
// The [Requester] interface defines what a worker executes:
//
//	type Requester interface {
//		Do(ctx context.Context) Outcome
//	}
//
// An [Outcome] without an error carries the response status code and body
// size. An Outcome with an error is logged with the unprocessable status and
// size 0.
//
// # Interruption
//
// Cancelling the context passed to Execute stops workers between attempts.
// The run still completes, and the run-info file notes the interruption.
package runner
