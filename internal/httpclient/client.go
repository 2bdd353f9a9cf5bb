// Package httpclient builds the outbound clients the consumer and tooling use
// to reach a responder.
package httpclient

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultDialTimeout      = 5 * time.Second
	defaultIdleConnsPerHost = 4
	idleConnTimeout         = 90 * time.Second
)

// Config describes a client for one responder. Zero fields take defaults.
type Config struct {
	// Timeout bounds the whole round trip, body included.
	Timeout time.Duration
	// ResponseHeaderTimeout bounds the wait for response headers. Never above Timeout.
	ResponseHeaderTimeout time.Duration
	// DialTimeout bounds connection setup (TCP and TLS).
	DialTimeout time.Duration
	// IdleConnsPerHost is the keep-alive pool size for the responder host.
	IdleConnsPerHost int
}

// FromEnv returns a Config for the given round-trip timeout. A non-positive
// timeout falls back to HTTP_TIMEOUT. HTTP_RESPONSE_HEADER_TIMEOUT sets the
// header wait. Both accept plain seconds or Go durations.
func FromEnv(timeout time.Duration) Config {
	cfg := Config{Timeout: timeout}
	if cfg.Timeout <= 0 {
		cfg.Timeout, _ = envDuration("HTTP_TIMEOUT")
	}
	cfg.ResponseHeaderTimeout, _ = envDuration("HTTP_RESPONSE_HEADER_TIMEOUT")
	return cfg
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.ResponseHeaderTimeout <= 0 || c.ResponseHeaderTimeout > c.Timeout {
		c.ResponseHeaderTimeout = c.Timeout
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.DialTimeout > c.Timeout {
		c.DialTimeout = c.Timeout
	}
	if c.IdleConnsPerHost <= 0 {
		c.IdleConnsPerHost = defaultIdleConnsPerHost
	}
	return c
}

// New returns a client with its own transport built from cfg.
func New(cfg Config) *http.Client {
	cfg = cfg.withDefaults()

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   cfg.IdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   cfg.DialTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}

// NewWithTimeout is New(FromEnv(timeout)).
func NewWithTimeout(timeout time.Duration) *http.Client {
	return New(FromEnv(timeout))
}

// envDuration reads key as integer seconds or a Go duration. Unset or
// unparsable values report false.
func envDuration(key string) (time.Duration, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d, true
	}
	return 0, false
}
