// Package consumer implements the client side of the status contract: it
// fetches the responder's payload and derives a value and a date from it.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"statuspact/internal/core"
	"statuspact/internal/httpclient"
	"statuspact/internal/observability"
)

// DefaultTimeout bounds a single round trip when Config.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps the bytes read from (and inflated out of) a response.
const maxBodySize = 1 << 20

// Config identifies the responder to talk to.
type Config struct {
	// BaseURL is the responder's scheme://host[:port][/prefix]. A bare
	// host:port is treated as http.
	BaseURL string
	// Path overrides the status path (default core.StatusPath).
	Path string
	// Timeout bounds each round trip (default DefaultTimeout).
	Timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock replaces time.Now as the source of the valid_date parameter.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records each FetchAndProcess outcome.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client fetches and processes the status payload. It is immutable after New
// and safe for concurrent use.
type Client struct {
	endpoint   *url.URL
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Client for the responder described by cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	endpoint, err := resolveEndpoint(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		endpoint: endpoint,
		timeout:  timeout,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.NewWithTimeout(timeout)
	}
	return c, nil
}

func resolveEndpoint(baseURL, path string) (*url.URL, error) {
	if baseURL == "" {
		return nil, errors.New("consumer: base URL is required")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("consumer: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("consumer: base URL %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("consumer: base URL %q has no host", baseURL)
	}
	if path == "" {
		path = core.StatusPath
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u = u.JoinPath(path)
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// RequestURL returns the status URL with valid_date set to at as an HTTP-date.
func (c *Client) RequestURL(at time.Time) string {
	u := *c.endpoint
	u.RawQuery = url.Values{core.QueryValidDate: {core.FormatHTTPDate(at)}}.Encode()
	return u.String()
}

// FetchAndProcess fetches the payload and returns Count/100 (truncated) and
// the parsed date. On any failure the result is nil and the error is a
// *core.ContractError; core.IsUnavailable tells "no answer" apart from "bad answer".
func (c *Client) FetchAndProcess(ctx context.Context) (*core.Result, error) {
	start := time.Now()

	result, err := c.fetchAndProcess(ctx)

	outcome := observability.OutcomeOK
	if err != nil {
		outcome = string(core.ErrorTypeOf(err))
		c.logger.Warn("status fetch failed", "error", err, "unavailable", core.IsUnavailable(err))
	}
	c.metrics.ObserveFetch(outcome, time.Since(start))
	return result, err
}

func (c *Client) fetchAndProcess(ctx context.Context) (*core.Result, error) {
	payload, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Process(*payload)
}

// Fetch performs the GET and decodes the payload without transforming it.
func (c *Client) Fetch(ctx context.Context) (*core.StatusPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.RequestURL(c.now())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, core.NewConnectionError("creating request: "+err.Error(), false, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	if id := core.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	c.logger.Debug("fetching status", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectionError("sending request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, connectionError("reading response", err)
	}

	body, decodeErr := decompressBody(raw, resp.Header.Get("Content-Encoding"))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr != nil {
			body = raw
		}
		return nil, core.NewHTTPStatusError(resp.StatusCode, body)
	}
	if len(raw) > maxBodySize {
		return nil, core.NewParseError(fmt.Sprintf("response body too large (exceeds %d bytes)", maxBodySize), nil)
	}
	if decodeErr != nil {
		return nil, core.NewParseError("decoding response body: "+decodeErr.Error(), decodeErr)
	}

	return DecodePayload(body)
}

// Process derives the result from an already decoded payload.
func Process(payload core.StatusPayload) (*core.Result, error) {
	date, err := core.ParseTime(payload.Timestamp)
	if err != nil {
		return nil, err
	}
	return &core.Result{
		Value: payload.Count / 100,
		Date:  date,
	}, nil
}

func connectionError(op string, err error) *core.ContractError {
	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
	return core.NewConnectionError(op+": "+err.Error(), timeout, err)
}
