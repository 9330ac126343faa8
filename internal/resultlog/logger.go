package resultlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
)

// DefaultQueueSize bounds the number of lines waiting for the writer.
const DefaultQueueSize = 4096

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("result log is closed")

// ErrLocked is returned by Open when another process holds the result file.
var ErrLocked = errors.New("result log is locked by another process")

var tryLock = (*flock.Flock).TryLock

// Options configure Open.
type Options struct {
	Dir       string    // output directory, created if missing
	Header    string    // first line of the file; empty writes none
	Now       time.Time // creation time used to name the file; zero means time.Now()
	RunID     string    // file name suffix; empty generates a new run ID
	QueueSize int       // pending line capacity; <= 0 means DefaultQueueSize
	Logger    *slog.Logger
}

// Stats summarizes the writer's activity.
type Stats struct {
	Written int64 `json:"written" yaml:"written"`
	Failed  int64 `json:"failed" yaml:"failed"`
}

// Logger is an append-only result log with a single writer goroutine.
// Record hands a line to the writer and returns; lines are written to the
// file one at a time in the order they were handed over.
type Logger struct {
	path string
	file io.WriteCloser
	lock *flock.Flock
	log  *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan string
	done   chan struct{}

	written atomic.Int64
	failed  atomic.Int64

	errMu    sync.Mutex
	firstErr error
}

// Open creates the output directory, derives a timestamp-named file path,
// takes an advisory lock on the new file, writes the header and starts the
// writer goroutine.
func Open(opts Options) (*Logger, error) {
	opts = opts.withDefaults()

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	path := FilePath(opts.Dir, opts.Now, opts.RunID)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create result log: %w", err)
	}

	// abandon removes the file created above so a failed Open leaves
	// nothing behind.
	abandon := func(err error) (*Logger, error) {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, err
	}

	lock := flock.New(path)
	locked, err := tryLock(lock)
	if err != nil {
		return abandon(fmt.Errorf("lock result log: %w", err))
	}
	if !locked {
		return abandon(fmt.Errorf("%s: %w", path, ErrLocked))
	}

	if opts.Header != "" {
		if _, err := io.WriteString(file, opts.Header+"\n"); err != nil {
			_ = lock.Unlock()
			return abandon(fmt.Errorf("write result log header: %w", err))
		}
	}

	l := newLogger(path, file, opts)
	l.lock = lock
	return l, nil
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.RunID == "" {
		o.RunID = NewRunID(o.Now)
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

func newLogger(path string, file io.WriteCloser, opts Options) *Logger {
	l := &Logger{
		path:  path,
		file:  file,
		log:   opts.Logger,
		queue: make(chan string, opts.QueueSize),
		done:  make(chan struct{}),
	}
	go l.run()
	l.log.Debug("result log opened", "path", path)
	return l
}

// Path returns the result log file path.
func (l *Logger) Path() string {
	return l.path
}

// Record appends entry as one line. It blocks only while the queue is full.
func (l *Logger) Record(entry string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	l.queue <- entry
	return nil
}

// Stats returns the number of written and failed lines so far.
func (l *Logger) Stats() Stats {
	return Stats{Written: l.written.Load(), Failed: l.failed.Load()}
}

// Err returns the first write error, if any.
func (l *Logger) Err() error {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	return l.firstErr
}

// Close stops accepting records, waits for queued lines to be written,
// releases the file lock and closes the file. It returns the first write
// error observed during the run, joined with any close error.
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done

	var errs []error
	if err := l.Err(); err != nil {
		errs = append(errs, fmt.Errorf("%d result lines not written: %w", l.failed.Load(), err))
	}
	if l.lock != nil {
		if err := l.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlock result log: %w", err))
		}
	}
	if err := l.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close result log: %w", err))
	}
	l.log.Debug("result log closed", "path", l.path, "written", l.written.Load(), "failed", l.failed.Load())
	return errors.Join(errs...)
}

func (l *Logger) run() {
	defer close(l.done)
	for line := range l.queue {
		if _, err := io.WriteString(l.file, line+"\n"); err != nil {
			l.fail(err)
			continue
		}
		l.written.Add(1)
	}
}

func (l *Logger) fail(err error) {
	l.failed.Add(1)
	l.errMu.Lock()
	if l.firstErr == nil {
		l.firstErr = err
	}
	l.errMu.Unlock()
	l.log.Warn("result log write failed", "path", l.path, "error", err)
}
