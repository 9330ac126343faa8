package resultlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Header is the column header written as the first line of every result log.
const Header = "Time, Thread ID, Request #, HttpStatusCode, Response Time (ms), Response Size, Exception"

// StatusUnprocessable is written in place of an HTTP status code when the
// request failed before a response was received.
const StatusUnprocessable = "unprocessable"

// OK is the error description recorded for successful attempts.
const OK = "OK"

// TimeLayout formats the leading timestamp column.
const TimeLayout = "2006-01-02 15:04:05.000"

const (
	fieldSep  = ", "
	numFields = 7
)

// ErrMalformedRecord is returned by ParseRecord for lines that do not hold a
// result record.
var ErrMalformedRecord = errors.New("malformed result record")

// Record describes the outcome of a single request attempt.
type Record struct {
	Time       time.Time
	WorkerID   int
	Sequence   int64
	StatusCode int // 0 when no response was received
	Latency    time.Duration
	Size       int64
	Error      string // OK on success
}

// Status returns the status column value: the numeric code or StatusUnprocessable.
func (r Record) Status() string {
	if r.StatusCode <= 0 {
		return StatusUnprocessable
	}
	return strconv.Itoa(r.StatusCode)
}

// LatencyMillis returns the latency in fractional milliseconds.
func (r Record) LatencyMillis() float64 {
	return float64(r.Latency) / float64(time.Millisecond)
}

// Succeeded reports whether the attempt completed with a response.
func (r Record) Succeeded() bool {
	return r.Error == OK
}

// String formats the record as one result log line, without the newline.
// The error description is the last column and may itself contain the field
// separator; line breaks are flattened to keep one record per line.
func (r Record) String() string {
	desc := r.Error
	if desc == "" {
		desc = OK
	}
	desc = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(desc)

	var sb strings.Builder
	sb.Grow(96 + len(desc))
	sb.WriteString(r.Time.Format(TimeLayout))
	sb.WriteString(fieldSep)
	sb.WriteString(strconv.Itoa(r.WorkerID))
	sb.WriteString(fieldSep)
	sb.WriteString(strconv.FormatInt(r.Sequence, 10))
	sb.WriteString(fieldSep)
	sb.WriteString(r.Status())
	sb.WriteString(fieldSep)
	sb.WriteString(strconv.FormatFloat(r.LatencyMillis(), 'f', 3, 64))
	sb.WriteString(fieldSep)
	sb.WriteString(strconv.FormatInt(r.Size, 10))
	sb.WriteString(fieldSep)
	sb.WriteString(desc)
	return sb.String()
}

// ParseRecord parses one result log line back into a Record. Timestamps are
// interpreted in loc; nil means time.Local.
func ParseRecord(line string, loc *time.Location) (Record, error) {
	if loc == nil {
		loc = time.Local
	}
	fields := strings.SplitN(strings.TrimRight(line, "\r\n"), fieldSep, numFields)
	if len(fields) != numFields {
		return Record{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedRecord, numFields, len(fields))
	}

	var (
		rec Record
		err error
	)
	if rec.Time, err = time.ParseInLocation(TimeLayout, fields[0], loc); err != nil {
		return Record{}, fmt.Errorf("%w: time: %v", ErrMalformedRecord, err)
	}
	if rec.WorkerID, err = strconv.Atoi(fields[1]); err != nil || rec.WorkerID < 0 {
		return Record{}, fmt.Errorf("%w: worker id %q", ErrMalformedRecord, fields[1])
	}
	if rec.Sequence, err = strconv.ParseInt(fields[2], 10, 64); err != nil || rec.Sequence < 1 {
		return Record{}, fmt.Errorf("%w: sequence %q", ErrMalformedRecord, fields[2])
	}
	if fields[3] != StatusUnprocessable {
		code, err := strconv.Atoi(fields[3])
		if err != nil || code < 100 || code > 599 {
			return Record{}, fmt.Errorf("%w: status %q", ErrMalformedRecord, fields[3])
		}
		rec.StatusCode = code
	}
	ms, err := strconv.ParseFloat(fields[4], 64)
	if err != nil || ms < 0 {
		return Record{}, fmt.Errorf("%w: latency %q", ErrMalformedRecord, fields[4])
	}
	rec.Latency = time.Duration(ms * float64(time.Millisecond))
	if rec.Size, err = strconv.ParseInt(fields[5], 10, 64); err != nil || rec.Size < 0 {
		return Record{}, fmt.Errorf("%w: size %q", ErrMalformedRecord, fields[5])
	}
	rec.Error = fields[6]
	return rec, nil
}
