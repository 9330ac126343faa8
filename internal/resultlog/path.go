package resultlog

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	fileExt        = ".csv"
	infoFileSuffix = "_test_info.txt"
)

// NewRunID returns a lexically sortable identifier for a run created at t.
func NewRunID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// FilePath derives the result log path for a run created at t under dir.
// The run ID keeps paths distinct when two runs start within the same second.
func FilePath(dir string, t time.Time, runID string) string {
	name := fmt.Sprintf("log_%s-%s", t.Format("20060102"), t.Format("150405"))
	if runID != "" {
		name += "_" + runID
	}
	return filepath.Join(dir, name+fileExt)
}

// InfoPath derives the run-info file path from a result log path.
func InfoPath(resultPath string) string {
	return strings.TrimSuffix(resultPath, fileExt) + infoFileSuffix
}
