// Package httpclient builds the HTTP client and requests used by simpleload
// workers.
//
// Every attempt is a plain GET carrying a fixed browser User-Agent. No other
// request headers are set unless W3C trace propagation is enabled:
//
//	builder, err := httpclient.NewRequestBuilder(target, false)
//	if err != nil {
//		return err
//	}
//	req, err := builder.Build(ctx)
//
// [NewClient] returns a client tuned for many concurrent connections to the
// same host, and [DrainBody] reads a response body to its end while counting
// the bytes received.
package httpclient
