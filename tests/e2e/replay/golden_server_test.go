//go:build e2e

package replay

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RequestMatcher inspects a request to decide if a route matches.
// Return true to claim the route.
type RequestMatcher func(r *http.Request) bool

// GoldenRoute maps an HTTP method + path (+ optional matcher) to a golden file.
type GoldenRoute struct {
	Method      string
	Path        string
	Match       RequestMatcher // nil = always matches
	GoldenFile  string         // relative to goldenDir; empty sends no body
	StatusCode  int            // 0 defaults to 200
	ContentType string         // defaults to "application/json;charset=utf-8"
}

// GoldenFileServer serves pre-recorded golden files as HTTP responses.
type GoldenFileServer struct {
	server   *httptest.Server
	routes   []GoldenRoute
	golden   string // absolute path to golden file directory
	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
}

// NewGoldenFileServer creates a server that replays golden files.
// Routes are evaluated in order; first match wins.
func NewGoldenFileServer(goldenDir string, routes []GoldenRoute) *GoldenFileServer {
	g := &GoldenFileServer{
		golden: goldenDir,
		routes: routes,
	}
	g.server = httptest.NewServer(http.HandlerFunc(g.handler))
	return g
}

func (g *GoldenFileServer) handler(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.requests = append(g.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
	})
	g.mu.Unlock()

	for _, route := range g.routes {
		if !strings.EqualFold(route.Method, r.Method) {
			continue
		}
		if route.Path != r.URL.Path {
			continue
		}
		if route.Match != nil && !route.Match(r) {
			continue
		}

		var data []byte
		if route.GoldenFile != "" {
			var err error
			data, err = os.ReadFile(filepath.Join(g.golden, route.GoldenFile))
			if err != nil {
				http.Error(w, "golden file not found: "+route.GoldenFile, http.StatusInternalServerError)
				return
			}
		}

		ct := route.ContentType
		if ct == "" {
			ct = "application/json;charset=utf-8"
		}
		status := route.StatusCode
		if status == 0 {
			status = http.StatusOK
		}

		w.Header().Set("Content-Type", ct)
		w.WriteHeader(status)
		_, _ = w.Write(data)
		return
	}

	http.Error(w, "no matching golden route for "+r.Method+" "+r.URL.Path, http.StatusNotFound)
}

// Requests returns the requests received so far.
func (g *GoldenFileServer) Requests() []recordedRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]recordedRequest(nil), g.requests...)
}

// URL returns the base URL of the golden file server.
func (g *GoldenFileServer) URL() string {
	return g.server.URL
}

// Close shuts down the server.
func (g *GoldenFileServer) Close() {
	g.server.Close()
}

// hasValidDate matches requests that carry a non-empty valid_date parameter.
func hasValidDate(r *http.Request) bool {
	return r.URL.Query().Get("valid_date") != ""
}
