package consumer

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/tidwall/gjson"

	"statuspact/internal/core"
)

// requiredFields must be present and non-null in every payload.
var requiredFields = []string{"count", "date"}

// DecodePayload validates body against the StatusPayload shape and decodes it.
func DecodePayload(body []byte) (*core.StatusPayload, error) {
	if !gjson.ValidBytes(body) {
		return nil, core.NewParseError("response body is not valid JSON", nil)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, core.NewParseError("response body is not a JSON object", nil)
	}
	for _, field := range requiredFields {
		v := root.Get(field)
		if !v.Exists() || v.Type == gjson.Null {
			return nil, core.NewMissingFieldError(field)
		}
	}

	var payload core.StatusPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, core.NewParseError("decoding payload: "+err.Error(), err)
	}
	if payload.Count < 0 {
		return nil, core.NewParseError(fmt.Sprintf("count must not be negative, got %d", payload.Count), nil)
	}
	return &payload, nil
}

// decompressBody inflates body according to Content-Encoding.
// Supports gzip, deflate, and brotli (br); identity and empty pass through.
// deflate is zlib-wrapped on the wire; a raw DEFLATE stream is also accepted.
func decompressBody(body []byte, contentEncoding string) ([]byte, error) {
	if len(body) == 0 || contentEncoding == "" {
		return body, nil
	}

	// Parse encoding (handle "gzip, deflate" - take first)
	encoding := strings.ToLower(strings.TrimSpace(strings.Split(contentEncoding, ",")[0]))

	var reader io.ReadCloser
	switch encoding {
	case "", "identity":
		return body, nil
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		reader = gz
	case "deflate":
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			reader = flate.NewReader(bytes.NewReader(body))
		} else {
			reader = zr
		}
	case "br":
		reader = io.NopCloser(brotli.NewReader(bytes.NewReader(body)))
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
	defer reader.Close()

	// Read with size limit (compression bomb protection)
	decompressed, err := io.ReadAll(io.LimitReader(reader, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(decompressed) > maxBodySize {
		return nil, fmt.Errorf("decompressed body exceeds %d bytes", maxBodySize)
	}
	return decompressed, nil
}
