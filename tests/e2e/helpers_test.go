//go:build e2e

package e2e

import (
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"statuspact/internal/core"
)

const (
	healthPath  = "/health"
	metricsPath = "/metrics"
)

// statusURL returns the status endpoint URL with valid_date set to at.
func statusURL(at time.Time) string {
	q := url.Values{core.QueryValidDate: {core.FormatHTTPDate(at)}}
	return responderURL + core.StatusPath + "?" + q.Encode()
}

// get performs a GET and returns the response with its body read.
func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

// getNoT is get without testing.T, for use from goroutines.
func getNoT(url string) (int, []byte, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return 0, nil, err
	}
	defer closeBody(resp)
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

// closeBody is a helper to close response body in defer statements.
func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
