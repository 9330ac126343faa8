package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/torosent/simpleload/internal/config"
	"github.com/torosent/simpleload/internal/metrics"
	"github.com/torosent/simpleload/internal/resultlog"
)

// Report is the end-of-run summary printed to the console and appended to the
// run-info file.
type Report struct {
	TargetURL   string          `json:"target_url" yaml:"target_url"`
	Summary     string          `json:"summary,omitempty" yaml:"summary,omitempty"`
	Concurrency int             `json:"concurrency" yaml:"concurrency"`
	ResultFile  string          `json:"result_file" yaml:"result_file"`
	InfoFile    string          `json:"info_file" yaml:"info_file"`
	Interrupted bool            `json:"interrupted" yaml:"interrupted"`
	ResultLog   resultlog.Stats `json:"result_log" yaml:"result_log"`
	Stats       metrics.Stats   `json:"stats" yaml:"stats"`
	PerWorker   map[int]int64   `json:"per_worker,omitempty" yaml:"per_worker,omitempty"`
}

// Write renders r in the requested format. An empty format means text.
func Write(w io.Writer, format config.ReportFormat, r Report) error {
	switch format {
	case config.ReportFormatJSON:
		return PrintJSONReport(w, r)
	case config.ReportFormatYAML:
		return PrintYAMLReport(w, r)
	case "", config.ReportFormatText:
		PrintReport(w, r)
		return nil
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, r Report) {
	stats := r.Stats
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	if r.Interrupted {
		fmt.Fprintln(w, "Run interrupted before the configured duration.")
	}
	fmt.Fprintf(w, "Total Requests:    %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:        %d\n", stats.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Workers:           %d\n", stats.Workers)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", stats.RequestsPerSec)
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)

	if len(stats.StatusCodes) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		for _, row := range metrics.FlattenStatusBuckets(stats.StatusCodes) {
			fmt.Fprintf(w, "  %s: %d\n", row.Code, row.Count)
		}
	}

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		names := make([]string, 0, len(stats.Errors))
		for name := range stats.Errors {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if stats.Errors[names[i]] == stats.Errors[names[j]] {
				return names[i] < names[j]
			}
			return stats.Errors[names[i]] > stats.Errors[names[j]]
		})
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, stats.Errors[name])
		}
	}

	if len(r.PerWorker) > 0 {
		fmt.Fprintln(w, "\nPer Worker:")
		ids := make([]int, 0, len(r.PerWorker))
		for id := range r.PerWorker {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Fprintf(w, "  Worker %d: %d\n", id, r.PerWorker[id])
		}
	}

	if r.ResultLog.Failed > 0 {
		fmt.Fprintf(w, "\nResult log write failures: %d (written: %d)\n", r.ResultLog.Failed, r.ResultLog.Written)
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
