package contract

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string, header map[string]string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func registerStatusInteraction(m *MockService) {
	m.Given("provider is in a sane state").
		UponReceiving("a request for provider json").
		With(Request{
			Method:  "get",
			Path:    "/provider.json",
			Query:   "valid_date=Fri%2C+16+Aug+2013+05%3A31%3A20+GMT",
			Headers: map[string]string{"Accept": "application/json"},
		}).
		WillRespondWith(Response{
			Status:  200,
			Headers: map[string]string{"Content-Type": "application/json;charset=utf-8"},
			Body:    MustJSON(map[string]any{"test": "NO", "date": "2013-08-16T15:31:20+10:00", "count": 1000}),
		})
}

func TestMockService_ServesMatchingInteraction(t *testing.T) {
	m := NewMockService("Status Consumer", "Status Responder")
	defer m.Close()
	registerStatusInteraction(m)

	// Same query, different escaping.
	resp, body := get(t, m.URL()+"/provider.json?valid_date=Fri,%2016%20Aug%202013%2005:31:20%20GMT",
		map[string]string{"accept": "application/json"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json;charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"test":"NO","date":"2013-08-16T15:31:20+10:00","count":1000}`, string(body))

	require.NoError(t, m.Verify())

	p := m.Pact()
	require.Len(t, p.Interactions, 1)
	assert.Equal(t, "GET", p.Interactions[0].Request.Method)
	assert.Equal(t, "provider is in a sane state", p.Interactions[0].ProviderState)
}

func TestMockService_UnexpectedRequest(t *testing.T) {
	m := NewMockService("c", "p")
	defer m.Close()
	registerStatusInteraction(m)

	resp, body := get(t, m.URL()+"/producer.json", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "unexpected_request")

	err := m.Verify()
	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected request: GET /producer.json")
	assert.ErrorContains(t, err, `missing request: "a request for provider json"`)
	assert.Empty(t, m.Pact().Interactions)
}

func TestMockService_RequiresExpectedHeaders(t *testing.T) {
	m := NewMockService("c", "p")
	defer m.Close()
	registerStatusInteraction(m)

	resp, _ := get(t, m.URL()+"/provider.json?valid_date=Fri%2C+16+Aug+2013+05%3A31%3A20+GMT", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Error(t, m.Verify())
}

func TestMockService_QueryMismatch(t *testing.T) {
	m := NewMockService("c", "p")
	defer m.Close()
	registerStatusInteraction(m)

	resp, _ := get(t, m.URL()+"/provider.json?valid_date=yesterday", map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Error(t, m.Verify())
}

func TestMockService_VerifyClearsExpectations(t *testing.T) {
	m := NewMockService("c", "p")
	defer m.Close()

	registerStatusInteraction(m)
	require.Error(t, m.Verify())

	// Nothing registered, nothing received.
	require.NoError(t, m.Verify())
}

func TestMockService_WritePact(t *testing.T) {
	m := NewMockService("Status Consumer", "Status Responder")
	defer m.Close()

	m.UponReceiving("a health check").
		With(Request{Method: "GET", Path: "/health"}).
		WillRespondWith(Response{Body: MustJSON(map[string]string{"status": "ok"})})

	resp, _ := get(t, m.URL()+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, m.Verify())

	path, err := m.WritePact(t.TempDir())
	require.NoError(t, err)

	p, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, p.Interactions, 1)
	assert.Equal(t, "a health check", p.Interactions[0].Description)
	assert.Empty(t, p.Interactions[0].ProviderState)
	assert.Equal(t, 200, p.Interactions[0].Response.Status)
}
