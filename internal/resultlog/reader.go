package resultlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"
)

// ReadRecords parses every record line from r, skipping the header.
func ReadRecords(r io.Reader, loc *time.Location) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || line == Header {
			continue
		}
		rec, err := ParseRecord(line, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadFile parses the result log at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f, time.Local)
}
