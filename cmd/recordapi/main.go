// Package main provides a CLI tool to record a live responder response for contract tests.
// Usage:
//
//	go run ./cmd/recordapi \
//	  -base-url=http://localhost:8080 \
//	  -output=tests/contract/testdata/responder/status.json
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"statuspact/internal/core"
	"statuspact/internal/httpclient"
)

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "Responder base URL")
	validDate := flag.String("valid-date", "", "valid_date query value (default: now, as an HTTP-date)")
	output := flag.String("output", "", "Output file path (required)")
	flag.Parse()

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: -output flag is required")
		flag.Usage()
		os.Exit(1)
	}

	date := *validDate
	if date == "" {
		date = core.FormatHTTPDate(time.Now())
	}

	target, err := url.Parse(strings.TrimSuffix(*baseURL, "/") + core.StatusPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid base URL: %v\n", err)
		os.Exit(1)
	}
	target.RawQuery = url.Values{core.QueryValidDate: {date}}.Encode()

	req, err := http.NewRequest(http.MethodGet, target.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Accept", "application/json")

	client := httpclient.NewWithTimeout(60 * time.Second)
	fmt.Printf("Sending request to %s %s...\n", req.Method, target)

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	fmt.Printf("Response status: %d %s\n", resp.StatusCode, resp.Status)
	fmt.Printf("Content-Type: %s\n", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading response: %v\n", err)
		os.Exit(1)
	}

	// Pretty print JSON
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, body, "", "  "); err != nil {
		// If it's not valid JSON, write raw
		if err := writeOutput(*output, body); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Raw response saved to %s\n", *output)
		return
	}
	prettyJSON.WriteByte('\n')

	if err := writeOutput(*output, prettyJSON.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Response saved to %s\n", *output)

	// Print response summary
	var payload core.StatusPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		fmt.Printf("Marker: %s, date: %s, count: %d\n", payload.Marker, payload.Timestamp, payload.Count)
	}
}

// writeOutput writes data to the output file, creating directories as needed.
func writeOutput(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
