package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInteraction(description string, count int) Interaction {
	return Interaction{
		Description:   description,
		ProviderState: "provider is in a sane state",
		Request:       Request{Method: "GET", Path: "/provider.json", Query: "valid_date=x"},
		Response: Response{
			Status:  200,
			Headers: map[string]string{"Content-Type": "application/json;charset=utf-8"},
			Body:    MustJSON(map[string]any{"count": count}),
		},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "my_service_consumer-my_service_provider.json", FileName("My Service Consumer", "My Service Provider"))
	assert.Equal(t, "a-b.json", FileName(" A ", "b"))
}

func TestPact_AddInteractionReplacesSameKey(t *testing.T) {
	p := New("c", "p")
	p.AddInteraction(sampleInteraction("one", 1))
	p.AddInteraction(sampleInteraction("two", 2))
	p.AddInteraction(sampleInteraction("one", 3))

	require.Len(t, p.Interactions, 2)
	assert.JSONEq(t, `{"count":3}`, string(p.Interactions[0].Response.Body))

	other := sampleInteraction("one", 4)
	other.ProviderState = ""
	p.AddInteraction(other)
	assert.Len(t, p.Interactions, 3)
}

func TestPact_WriteFileAndReadFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pacts")

	p := New("Status Consumer", "Status Responder")
	p.AddInteraction(sampleInteraction("a request for provider json", 1000))

	path, err := p.WriteFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "status_consumer-status_responder.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pactSpecificationVersion": "1.0.0"`)
	assert.Contains(t, string(raw), `"provider_state": "provider is in a sane state"`)

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Status Consumer", loaded.Consumer.Name)
	assert.Equal(t, "Status Responder", loaded.Provider.Name)
	require.Len(t, loaded.Interactions, 1)
	assert.Equal(t, "/provider.json", loaded.Interactions[0].Request.Path)
	assert.JSONEq(t, `{"count":1000}`, string(loaded.Interactions[0].Response.Body))
}

func TestPact_WriteFileMergesExisting(t *testing.T) {
	dir := t.TempDir()

	first := New("c", "p")
	first.AddInteraction(sampleInteraction("kept", 1))
	first.AddInteraction(sampleInteraction("replaced", 2))
	_, err := first.WriteFile(dir)
	require.NoError(t, err)

	second := New("c", "p")
	second.AddInteraction(sampleInteraction("replaced", 20))
	second.AddInteraction(sampleInteraction("added", 3))
	path, err := second.WriteFile(dir)
	require.NoError(t, err)

	merged, err := ReadFile(path)
	require.NoError(t, err)

	var descriptions []string
	for _, i := range merged.Interactions {
		descriptions = append(descriptions, i.Description)
	}
	assert.Equal(t, []string{"kept", "replaced", "added"}, descriptions)
	assert.JSONEq(t, `{"count":20}`, string(merged.Interactions[1].Response.Body))
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = ReadFile(bad)
	assert.Error(t, err)

	anonymous := filepath.Join(dir, "anonymous.json")
	require.NoError(t, os.WriteFile(anonymous, []byte(`{"interactions":[]}`), 0o644))
	_, err = ReadFile(anonymous)
	assert.ErrorContains(t, err, "names are required")
}
