//go:build contract

// Package contract provides contract tests that validate the responder and the
// consumer against a shared pact file and recorded fixtures, without a
// separately running responder.
package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testdataDir is the path to the testdata directory.
const testdataDir = "testdata"

const (
	consumerName = "Status Consumer"
	providerName = "Status Responder"
	saneState    = "provider is in a sane state"
)

// pactDir is where consumer tests write, and provider tests read, pact files.
var pactDir = filepath.Join(testdataDir, "pacts")

// loadGoldenFileRaw reads a golden file from testdata as raw bytes.
func loadGoldenFileRaw(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join(testdataDir, path)
	data, err := os.ReadFile(fullPath)
	require.NoError(t, err, "failed to read golden file %s", fullPath)

	return data
}

// goldenFileExists checks if a golden file exists.
func goldenFileExists(t *testing.T, path string) bool {
	t.Helper()

	fullPath := filepath.Join(testdataDir, path)
	_, err := os.Stat(fullPath)
	return err == nil
}
