//go:build contract

package contract

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"testing"
)

type replayRoute struct {
	statusCode  int
	contentType string
	body        []byte
}

// replayTransport answers requests from recorded fixtures keyed by method and
// request URI.
type replayTransport struct {
	t      *testing.T
	routes map[string]replayRoute
}

func replayKey(method, requestURI string) string {
	return method + " " + requestURI
}

func (rt *replayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.t.Helper()

	key := replayKey(req.Method, req.URL.RequestURI())
	route, ok := rt.routes[key]
	if !ok {
		notFoundBody := []byte(fmt.Sprintf(`{"error":{"message":"missing replay route: %s"}}`, key))
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Header: http.Header{
				"Content-Type": []string{"application/json"},
			},
			Body:    io.NopCloser(bytes.NewReader(notFoundBody)),
			Request: req,
		}, nil
	}

	statusCode := route.statusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	contentType := route.contentType
	if contentType == "" {
		contentType = "application/json"
	}

	return &http.Response{
		StatusCode: statusCode,
		Status:     fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		Header: http.Header{
			"Content-Type": []string{contentType},
		},
		Body:    io.NopCloser(bytes.NewReader(route.body)),
		Request: req,
	}, nil
}

func newReplayHTTPClient(t *testing.T, routes map[string]replayRoute) *http.Client {
	t.Helper()
	return &http.Client{
		Transport: &replayTransport{
			t:      t,
			routes: routes,
		},
	}
}

func jsonFixtureRoute(t *testing.T, path string) replayRoute {
	t.Helper()
	return replayRoute{
		statusCode:  http.StatusOK,
		contentType: "application/json;charset=utf-8",
		body:        loadGoldenFileRaw(t, path),
	}
}
