package observability

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Transport wraps an http.RoundTripper to record exchange metrics.
//
// It captures:
//   - spark_http_requests_total (counter): incremented per exchange with method and status class labels
//   - spark_http_request_duration_seconds (histogram): time until response headers arrive
//   - spark_streams_active (gauge): held while a streaming response body stays open
type Transport struct {
	// Base performs the exchange. nil means http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	// Detect SSE streaming from the Accept header, the same marker the
	// client sets on its streaming requests.
	isStreaming := req.Header.Get("Accept") == "text/event-stream"

	resp, err := t.base().RoundTrip(req)
	duration := time.Since(start).Seconds()

	// Build a status class label like "2xx", "4xx", "5xx"; transport
	// failures that never produced a response count as "error".
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode/100) + "xx"
	}

	HTTPRequestsTotal.WithLabelValues(req.Method, status).Inc()
	HTTPRequestDuration.WithLabelValues(req.Method).Observe(duration)

	if err == nil && isStreaming && resp.StatusCode/100 == 2 {
		StreamsActive.Inc()
		resp.Body = &trackedBody{ReadCloser: resp.Body}
	}
	return resp, err
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// trackedBody decrements the active-stream gauge when the body closes.
// Close may be called more than once; the gauge moves exactly once.
type trackedBody struct {
	io.ReadCloser
	once sync.Once
}

// Close releases the gauge and delegates to the underlying body.
func (b *trackedBody) Close() error {
	b.once.Do(StreamsActive.Dec)
	return b.ReadCloser.Close()
}
