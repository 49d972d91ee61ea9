// Package fetcher retrieves the sensor server's response over HTTP.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"github.com/clambin/go-common/http/metrics"
	"github.com/clambin/go-common/http/roundtripper"
	"io"
	"net/http"
	"strconv"
	"time"
)

// maxBodySize caps the size of the response we're willing to read.
const maxBodySize = 1 << 20

var ErrStatus = errors.New("unexpected http status")

// Fetcher performs a GET request for every Fetch. Any non-2xx response is an error.
type Fetcher struct {
	Client *http.Client
}

// New returns a Fetcher whose requests time out after timeout. If requestMetrics is not nil, all requests are instrumented.
func New(timeout time.Duration, requestMetrics metrics.RequestMetrics) *Fetcher {
	var transport http.RoundTripper = http.DefaultTransport
	if requestMetrics != nil {
		transport = roundtripper.New(
			roundtripper.WithRequestMetrics(requestMetrics),
			roundtripper.WithRoundTripper(transport),
		)
	}
	return &Fetcher{Client: &http.Client{Timeout: timeout, Transport: transport}}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return body, nil
}

// NewMetrics returns request metrics (count and duration) labeled by method, path and status code.
func NewMetrics(namespace, subsystem string) metrics.RequestMetrics {
	return metrics.NewRequestMetrics(metrics.Options{
		Namespace: namespace,
		Subsystem: subsystem,
		LabelValues: func(request *http.Request, code int) (string, string, string) {
			return request.Method, request.URL.Path, strconv.Itoa(code)
		},
	})
}
