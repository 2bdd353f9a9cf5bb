package contract

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// normalizeQuery re-encodes a raw query in canonical form. Queries that
// cannot be parsed are returned unchanged.
func normalizeQuery(raw string) string {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return raw
	}
	return values.Encode()
}

// queryEqual compares two raw query strings as parsed key/value sets, so
// parameter order and escaping style do not matter.
func queryEqual(want, got string) bool {
	wantValues, err := url.ParseQuery(want)
	if err != nil {
		return want == got
	}
	gotValues, err := url.ParseQuery(got)
	if err != nil {
		return false
	}
	return cmp.Equal(wantValues, gotValues, cmpopts.EquateEmpty())
}

// headerMismatches returns one message per expected header that is absent
// from got or has a different value. Header names compare case-insensitively.
func headerMismatches(want map[string]string, got http.Header) []string {
	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		values := got.Values(name)
		if len(values) == 0 {
			out = append(out, fmt.Sprintf("header %s: missing, want %q", name, want[name]))
			continue
		}
		if actual := strings.Join(values, ", "); actual != want[name] {
			out = append(out, fmt.Sprintf("header %s: got %q, want %q", name, actual, want[name]))
		}
	}
	return out
}

// bodyMismatches compares JSON bodies. Objects in want need only be a subset
// of got; arrays and scalars must be equal.
func bodyMismatches(want json.RawMessage, got []byte) []string {
	if len(want) == 0 {
		return nil
	}

	var wantValue any
	if err := json.Unmarshal(want, &wantValue); err != nil {
		return []string{fmt.Sprintf("body: expected body is not JSON: %v", err)}
	}
	var gotValue any
	if err := json.Unmarshal(got, &gotValue); err != nil {
		return []string{fmt.Sprintf("body: response is not JSON: %v", err)}
	}
	return matchJSON("$", wantValue, gotValue)
}

func matchJSON(path string, want, got any) []string {
	wantObject, ok := want.(map[string]any)
	if !ok {
		if diff := cmp.Diff(want, got); diff != "" {
			return []string{fmt.Sprintf("body %s mismatch (-want +got):\n%s", path, diff)}
		}
		return nil
	}

	gotObject, ok := got.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("body %s: want an object, got %T", path, got)}
	}

	keys := make([]string, 0, len(wantObject))
	for key := range wantObject {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []string
	for _, key := range keys {
		child := path + "." + key
		gotChild, present := gotObject[key]
		if !present {
			out = append(out, fmt.Sprintf("body %s: missing", child))
			continue
		}
		out = append(out, matchJSON(child, wantObject[key], gotChild)...)
	}
	return out
}
