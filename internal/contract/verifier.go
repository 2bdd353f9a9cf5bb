package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// StateHandler puts the provider into a named state before an interaction
// is replayed.
type StateHandler func(ctx context.Context) error

// Verifier replays a pact's interactions against a provider. Set exactly one
// of Handler (in-process) or BaseURL (over the network).
type Verifier struct {
	Handler http.Handler
	BaseURL string
	// Client is used with BaseURL. Defaults to http.DefaultClient.
	Client *http.Client
	// States maps provider state names to their setup functions.
	States map[string]StateHandler
	Logger *slog.Logger
}

// Mismatch is one difference between the pact and the provider's behavior.
type Mismatch struct {
	// Kind is one of state, request, status, header, body.
	Kind    string
	Message string
}

// InteractionResult is the outcome of replaying one interaction.
type InteractionResult struct {
	Description   string
	ProviderState string
	Mismatches    []Mismatch
}

// Passed reports whether the interaction produced no mismatches.
func (r InteractionResult) Passed() bool {
	return len(r.Mismatches) == 0
}

// Report collects the results of a verification run.
type Report struct {
	Consumer string
	Provider string
	Results  []InteractionResult
}

// Passed reports whether every interaction passed.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Err joins every mismatch into a single error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		for _, m := range res.Mismatches {
			label := fmt.Sprintf("%q", res.Description)
			if res.ProviderState != "" {
				label += fmt.Sprintf(" given %q", res.ProviderState)
			}
			errs = append(errs, fmt.Errorf("%s: %s: %s", label, m.Kind, m.Message))
		}
	}
	return errors.Join(errs...)
}

// Verify replays every interaction of p in order.
func (v *Verifier) Verify(ctx context.Context, p *Pact) (*Report, error) {
	if (v.Handler == nil) == (v.BaseURL == "") {
		return nil, errors.New("contract: verifier needs exactly one of Handler or BaseURL")
	}
	var base *url.URL
	if v.BaseURL != "" {
		u, err := url.Parse(v.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("contract: invalid base URL %q: %w", v.BaseURL, err)
		}
		base = u
	}

	report := &Report{Consumer: p.Consumer.Name, Provider: p.Provider.Name}
	for _, interaction := range p.Interactions {
		res := v.verifyInteraction(ctx, base, interaction)
		if !res.Passed() {
			v.logger().Warn("interaction failed verification",
				"description", res.Description,
				"provider_state", res.ProviderState,
				"mismatches", len(res.Mismatches),
			)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func (v *Verifier) logger() *slog.Logger {
	if v.Logger != nil {
		return v.Logger
	}
	return slog.Default()
}

func (v *Verifier) verifyInteraction(ctx context.Context, base *url.URL, interaction Interaction) InteractionResult {
	res := InteractionResult{
		Description:   interaction.Description,
		ProviderState: interaction.ProviderState,
	}
	fail := func(kind, format string, args ...any) {
		res.Mismatches = append(res.Mismatches, Mismatch{Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	if state := interaction.ProviderState; state != "" {
		setup, ok := v.States[state]
		if !ok {
			fail("state", "no handler registered for provider state %q", state)
			return res
		}
		if err := setup(ctx); err != nil {
			fail("state", "setting up %q: %v", state, err)
			return res
		}
	}

	status, header, body, err := v.replay(ctx, base, interaction.Request)
	if err != nil {
		fail("request", "%v", err)
		return res
	}

	if status != interaction.Response.Status {
		fail("status", "got %d, want %d", status, interaction.Response.Status)
	}
	for _, msg := range headerMismatches(interaction.Response.Headers, header) {
		fail("header", "%s", msg)
	}
	for _, msg := range bodyMismatches(interaction.Response.Body, body) {
		fail("body", "%s", msg)
	}
	return res
}

func (v *Verifier) replay(ctx context.Context, base *url.URL, want Request) (int, http.Header, []byte, error) {
	target := &url.URL{Scheme: "http", Host: "provider.local"}
	if base != nil {
		clone := *base
		target = &clone
	}
	target.Path = strings.TrimSuffix(target.Path, "/") + want.Path
	target.RawQuery = normalizeQuery(want.Query)

	method := want.Method
	if method == "" {
		method = http.MethodGet
	}

	var reqBody io.Reader
	if len(want.Body) > 0 {
		reqBody = bytes.NewReader(want.Body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), target.String(), reqBody)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("building request: %w", err)
	}
	for name, value := range want.Headers {
		req.Header.Set(name, value)
	}

	if v.Handler != nil {
		rec := httptest.NewRecorder()
		v.Handler.ServeHTTP(rec, req)
		resp := rec.Result()
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		return resp.StatusCode, resp.Header, body, err
	}

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, resp.Header, body, nil
}
