package metrics

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// StatusUnprocessable labels attempts that received no HTTP response.
const StatusUnprocessable = "unprocessable"

// Collector records per-request metrics in a thread-safe manner.
type Collector struct {
	mu           sync.Mutex
	hist         *hdrhistogram.Histogram
	successes    int64
	failures     int64
	minLatency   time.Duration
	maxLatency   time.Duration
	sumLatency   time.Duration
	statusCodes  map[string]int64
	errorsByType map[string]int64
	workers      map[int]int64

	count atomic.Int64
}

// Stats represents aggregated metrics.
type Stats struct {
	Total          int64         `json:"total" yaml:"total"`
	Successes      int64         `json:"successes" yaml:"successes"`
	Failures       int64         `json:"failures" yaml:"failures"`
	Workers        int           `json:"workers" yaml:"workers"`
	MinLatency     time.Duration `json:"-" yaml:"-"`
	MaxLatency     time.Duration `json:"-" yaml:"-"`
	MeanLatency    time.Duration `json:"-" yaml:"-"`
	P50Latency     time.Duration `json:"-" yaml:"-"`
	P90Latency     time.Duration `json:"-" yaml:"-"`
	P99Latency     time.Duration `json:"-" yaml:"-"`
	Duration       time.Duration `json:"-" yaml:"-"`
	RequestsPerSec float64       `json:"requests_per_sec" yaml:"requests_per_sec"`

	// Millisecond fields for machine-readable reports.
	MinLatencyMs  float64        `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMs  float64        `json:"max_latency_ms" yaml:"max_latency_ms"`
	MeanLatencyMs float64        `json:"mean_latency_ms" yaml:"mean_latency_ms"`
	P50LatencyMs  float64        `json:"p50_latency_ms" yaml:"p50_latency_ms"`
	P90LatencyMs  float64        `json:"p90_latency_ms" yaml:"p90_latency_ms"`
	P99LatencyMs  float64        `json:"p99_latency_ms" yaml:"p99_latency_ms"`
	DurationMs    float64        `json:"duration_ms" yaml:"duration_ms"`
	StatusCodes   map[string]int `json:"status_codes,omitempty" yaml:"status_codes,omitempty"`
	Errors        map[string]int `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 10 minutes with 3 significant figures.
	h := hdrhistogram.New(1, 600_000_000, 3)
	return &Collector{
		hist:         h,
		statusCodes:  make(map[string]int64),
		errorsByType: make(map[string]int64),
		workers:      make(map[int]int64),
	}
}

// Count returns the number of recorded attempts without taking the
// collector lock.
func (c *Collector) Count() int64 {
	return c.count.Load()
}

// RecordRequest records a single attempt. statusCode is 0 when no response
// was received; err is the transport failure, nil on success.
func (c *Collector) RecordRequest(workerID int, latency time.Duration, statusCode int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if latency > 0 {
		us := latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}
	c.sumLatency += latency

	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	c.statusCodes[statusLabel(statusCode)]++
	c.workers[workerID]++

	if err == nil {
		c.successes++
	} else {
		c.failures++
		c.errorsByType[FriendlyErrorName(ErrorType(err))]++
	}
	c.count.Add(1)
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := Stats{
		Total:      total,
		Successes:  c.successes,
		Failures:   c.failures,
		Workers:    len(c.workers),
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / total)
	}

	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinLatencyMs = float64(stats.MinLatency) / float64(time.Millisecond)
	stats.MaxLatencyMs = float64(stats.MaxLatency) / float64(time.Millisecond)
	stats.MeanLatencyMs = float64(stats.MeanLatency) / float64(time.Millisecond)
	stats.P50LatencyMs = float64(stats.P50Latency) / float64(time.Millisecond)
	stats.P90LatencyMs = float64(stats.P90Latency) / float64(time.Millisecond)
	stats.P99LatencyMs = float64(stats.P99Latency) / float64(time.Millisecond)

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && total > 0 {
		stats.RequestsPerSec = float64(total) / elapsed.Seconds()
	}

	if len(c.statusCodes) > 0 {
		stats.StatusCodes = make(map[string]int, len(c.statusCodes))
		for k, v := range c.statusCodes {
			stats.StatusCodes[k] = int(v)
		}
	}
	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	return stats
}

// WorkerCounts returns the number of attempts recorded per worker ID.
func (c *Collector) WorkerCounts() map[int]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[int]int64, len(c.workers))
	for k, v := range c.workers {
		result[k] = v
	}
	return result
}

func statusLabel(code int) string {
	if code <= 0 {
		return StatusUnprocessable
	}
	return strconv.Itoa(code)
}
