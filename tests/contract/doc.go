// Package contract provides contract tests for the status responder and its
// consumer. The consumer side runs against a mock responder and produces a
// pact file; the provider side replays that pact against the real responder.
// Recorded responder fixtures are replayed through the consumer and compared
// with golden outputs.
//
// Run with: go test -tags=contract ./tests/contract/...
// Refresh pacts and golden files with RECORD=1.
package contract
