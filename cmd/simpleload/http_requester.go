package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/torosent/simpleload/internal/httpclient"
	"github.com/torosent/simpleload/internal/runner"
)

// httpRequester implements runner.Requester with a single GET per attempt.
type httpRequester struct {
	client  *http.Client
	builder *httpclient.RequestBuilder
}

// Do executes one GET and drains the response body. Any failure, including
// one while reading the body, is reported as an Outcome error.
func (r *httpRequester) Do(ctx context.Context) runner.Outcome {
	req, err := r.builder.Build(ctx)
	if err != nil {
		return runner.Outcome{Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return runner.Outcome{Err: err}
	}
	defer resp.Body.Close()

	size, err := httpclient.DrainBody(resp.Body)
	if err != nil {
		return runner.Outcome{
			StatusCode: resp.StatusCode,
			Size:       size,
			Err:        fmt.Errorf("read response body: %w", err),
		}
	}
	return runner.Outcome{StatusCode: resp.StatusCode, Size: size}
}
