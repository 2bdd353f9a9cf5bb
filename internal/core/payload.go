// Package core provides the types shared by the status responder and its consumer.
package core

import "time"

const (
	// StatusPath is the canonical path of the status endpoint.
	StatusPath = "/provider.json"

	// QueryValidDate is the required query parameter carrying the request date.
	QueryValidDate = "valid_date"

	// ContentTypeJSON is the exact content type the responder answers with.
	ContentTypeJSON = "application/json;charset=utf-8"
)

// Fixed payload values served by the responder regardless of valid_date.
const (
	FixedMarker    = "NO"
	FixedTimestamp = "2013-08-16T15:31:20+10:00"
	FixedCount     = 1000
)

// StatusPayload is the JSON document exchanged between responder and consumer.
// Field order matches the wire order: test, date, count.
type StatusPayload struct {
	Marker    string `json:"test"`
	Timestamp string `json:"date"`
	Count     int    `json:"count"`
}

// FixedPayload returns a fresh copy of the payload the responder serves.
func FixedPayload() StatusPayload {
	return StatusPayload{
		Marker:    FixedMarker,
		Timestamp: FixedTimestamp,
		Count:     FixedCount,
	}
}

// Result is the consumer's derived view of a StatusPayload.
type Result struct {
	// Value is Count / 100, truncated.
	Value int
	// Date is the parsed Timestamp.
	Date time.Time
}
