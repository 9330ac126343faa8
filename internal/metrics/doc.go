// Package metrics aggregates per-attempt measurements for a load test run.
//
// The central [Collector] records latency, status code and transport error of
// every request attempt and produces a [Stats] summary with hdrhistogram
// percentiles:
//
//	collector := metrics.NewCollector()
//	collector.RecordRequest(workerID, latency, statusCode, err)
//	stats := collector.Stats(elapsed)
//
// [Collector.Count] is lock-free so progress reporters can poll it without
// contending with the request path.
//
// # Prometheus
//
// [Exporter] mirrors the same measurements into a Prometheus registry and
// serves them over HTTP until ctx is cancelled:
//
//	exporter := metrics.NewExporter()
//	addr, err := exporter.Serve(ctx, ":9090")
package metrics
