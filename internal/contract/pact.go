// Package contract records consumer expectations of the responder as pact
// files and verifies a running responder against them.
//
// The file layout follows pact specification v1: a consumer and provider
// name, a list of interactions (an expected request with its canned
// response, optionally under a named provider state) and metadata.
package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SpecificationVersion is written into every pact file's metadata.
const SpecificationVersion = "1.0.0"

// Pacticipant names one side of a pact.
type Pacticipant struct {
	Name string `json:"name"`
}

// Request is the request the consumer is expected to send.
type Request struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	// Query is the raw query string, without the leading '?'.
	Query   string            `json:"query,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

// Response is the response the provider must produce.
type Response struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

// Interaction is one request/response pair.
type Interaction struct {
	Description   string   `json:"description"`
	ProviderState string   `json:"provider_state,omitempty"`
	Request       Request  `json:"request"`
	Response      Response `json:"response"`
}

// Metadata carries the pact specification version.
type Metadata struct {
	PactSpecificationVersion string `json:"pactSpecificationVersion"`
}

// Pact is the contract between one consumer and one provider.
type Pact struct {
	Consumer     Pacticipant   `json:"consumer"`
	Provider     Pacticipant   `json:"provider"`
	Interactions []Interaction `json:"interactions"`
	Metadata     Metadata      `json:"metadata"`
}

// New returns an empty pact between consumer and provider.
func New(consumer, provider string) *Pact {
	return &Pact{
		Consumer:     Pacticipant{Name: consumer},
		Provider:     Pacticipant{Name: provider},
		Interactions: []Interaction{},
		Metadata:     Metadata{PactSpecificationVersion: SpecificationVersion},
	}
}

// MustJSON marshals v for use as a request or response body. It panics if v
// cannot be marshaled.
func MustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("contract: marshal body: %v", err))
	}
	return raw
}

// FileName returns the conventional pact file name for a consumer/provider
// pair: both names lower-cased with spaces replaced by underscores.
func FileName(consumer, provider string) string {
	return normalizeName(consumer) + "-" + normalizeName(provider) + ".json"
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// FileName returns the pact's file name.
func (p *Pact) FileName() string {
	return FileName(p.Consumer.Name, p.Provider.Name)
}

// AddInteraction appends i, replacing any interaction with the same
// description and provider state.
func (p *Pact) AddInteraction(i Interaction) {
	for idx, existing := range p.Interactions {
		if existing.Description == i.Description && existing.ProviderState == i.ProviderState {
			p.Interactions[idx] = i
			return
		}
	}
	p.Interactions = append(p.Interactions, i)
}

// ReadFile loads a pact file.
func ReadFile(path string) (*Pact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pact %s: %w", path, err)
	}

	var p Pact
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing pact %s: %w", path, err)
	}
	if p.Consumer.Name == "" || p.Provider.Name == "" {
		return nil, fmt.Errorf("pact %s: consumer and provider names are required", path)
	}
	if p.Interactions == nil {
		p.Interactions = []Interaction{}
	}
	return &p, nil
}

// WriteFile writes the pact into dir under FileName, merging it with an
// existing file for the same pair. Interactions of p replace existing ones
// with the same description and provider state. It returns the file path.
func (p *Pact) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating pact dir: %w", err)
	}
	path := filepath.Join(dir, p.FileName())

	merged := New(p.Consumer.Name, p.Provider.Name)
	existing, err := ReadFile(path)
	switch {
	case err == nil:
		merged.Interactions = append(merged.Interactions, existing.Interactions...)
	case errors.Is(err, os.ErrNotExist):
	default:
		return "", err
	}
	for _, i := range p.Interactions {
		merged.AddInteraction(i)
	}

	raw, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling pact: %w", err)
	}
	raw = append(raw, '\n')

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing pact %s: %w", path, err)
	}
	return path, nil
}
