package httpclient

import (
	"io"
)

// DrainBody reads r to EOF and returns the number of bytes consumed. The
// count is valid even when an error interrupts the read.
func DrainBody(r io.Reader) (int64, error) {
	if r == nil {
		return 0, nil
	}
	return io.Copy(io.Discard, r)
}
