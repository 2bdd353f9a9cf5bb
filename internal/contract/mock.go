package contract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// RecordedRequest is a request the mock service could not match.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    []byte
}

func (r RecordedRequest) String() string {
	if r.Query == "" {
		return r.Method + " " + r.Path
	}
	return r.Method + " " + r.Path + "?" + r.Query
}

type expectation struct {
	interaction Interaction
	received    bool
}

// MockService stands in for the provider during consumer tests. Expected
// interactions are registered with Given/UponReceiving, exercised by the
// code under test against URL(), and checked with Verify, which also adds
// them to the pact.
type MockService struct {
	server *httptest.Server
	logger *slog.Logger

	mu         sync.Mutex
	expected   []*expectation
	unexpected []RecordedRequest
	pact       *Pact
}

// NewMockService starts a mock provider on a loopback port.
// The caller must call Close.
func NewMockService(consumer, provider string) *MockService {
	m := &MockService{
		logger: slog.Default(),
		pact:   New(consumer, provider),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the mock service's base URL.
func (m *MockService) URL() string {
	return m.server.URL
}

// Close shuts the mock service down.
func (m *MockService) Close() {
	m.server.Close()
}

// Given starts an interaction that requires the named provider state.
func (m *MockService) Given(state string) *InteractionBuilder {
	return &InteractionBuilder{mock: m, interaction: Interaction{ProviderState: state}}
}

// UponReceiving starts an interaction without a provider state.
func (m *MockService) UponReceiving(description string) *InteractionBuilder {
	return &InteractionBuilder{mock: m, interaction: Interaction{Description: description}}
}

// InteractionBuilder assembles one expected interaction.
type InteractionBuilder struct {
	mock        *MockService
	interaction Interaction
}

// UponReceiving sets the interaction description.
func (b *InteractionBuilder) UponReceiving(description string) *InteractionBuilder {
	b.interaction.Description = description
	return b
}

// With sets the expected request.
func (b *InteractionBuilder) With(req Request) *InteractionBuilder {
	req.Method = strings.ToUpper(req.Method)
	b.interaction.Request = req
	return b
}

// WillRespondWith sets the canned response and registers the interaction.
func (b *InteractionBuilder) WillRespondWith(resp Response) {
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	b.interaction.Response = resp

	b.mock.mu.Lock()
	b.mock.expected = append(b.mock.expected, &expectation{interaction: b.interaction})
	b.mock.mu.Unlock()
}

func (m *MockService) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	recorded := RecordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Headers: r.Header.Clone(),
		Body:    body,
	}

	m.mu.Lock()
	exp := m.match(recorded)
	if exp == nil {
		m.unexpected = append(m.unexpected, recorded)
		m.mu.Unlock()

		m.logger.Warn("mock service received unexpected request", "request", recorded.String())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprintf(w, `{"error":{"type":"unexpected_request","message":%q}}`, "no interaction matches "+recorded.String())
		return
	}
	exp.received = true
	resp := exp.interaction.Response
	m.mu.Unlock()

	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

// match returns the first expectation matching req, preferring ones not yet
// received. Callers hold m.mu.
func (m *MockService) match(req RecordedRequest) *expectation {
	var fallback *expectation
	for _, exp := range m.expected {
		if !requestMatches(exp.interaction.Request, req) {
			continue
		}
		if !exp.received {
			return exp
		}
		if fallback == nil {
			fallback = exp
		}
	}
	return fallback
}

func requestMatches(want Request, got RecordedRequest) bool {
	if !strings.EqualFold(want.Method, got.Method) || want.Path != got.Path {
		return false
	}
	if !queryEqual(want.Query, got.Query) {
		return false
	}
	if len(headerMismatches(want.Headers, got.Headers)) > 0 {
		return false
	}
	return len(want.Body) == 0 || len(bodyMismatches(want.Body, got.Body)) == 0
}

// Verify reports expected interactions that were never received and requests
// that matched nothing. Received interactions are added to the pact. The
// expectation list is cleared either way.
func (m *MockService) Verify() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, exp := range m.expected {
		if !exp.received {
			errs = append(errs, fmt.Errorf("missing request: %q was expected but not received", exp.interaction.Description))
			continue
		}
		m.pact.AddInteraction(exp.interaction)
	}
	for _, req := range m.unexpected {
		errs = append(errs, fmt.Errorf("unexpected request: %s", req))
	}

	m.expected = nil
	m.unexpected = nil
	return errors.Join(errs...)
}

// Pact returns a copy of the verified interactions collected so far.
func (m *MockService) Pact() *Pact {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := *m.pact
	p.Interactions = append([]Interaction(nil), m.pact.Interactions...)
	return &p
}

// WritePact writes the verified interactions to dir. See Pact.WriteFile.
func (m *MockService) WritePact(dir string) (string, error) {
	return m.Pact().WriteFile(dir)
}
