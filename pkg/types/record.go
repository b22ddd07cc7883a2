// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FailureRecord describes one URL that could not be fetched during a run.
// The orchestrator accumulates records in order and writes the full
// sequence to the failure log at the end of the run; the log never
// carries records across runs.
type FailureRecord struct {
	// URL is the source URL as it appeared in the input file.
	URL string `json:"url"`

	// AbstractID is the extracted identifier, or empty when extraction
	// itself failed.
	AbstractID string `json:"abstract_id"`

	// Error is the human-readable failure description.
	Error string `json:"error"`

	// Timestamp is the local time of the failure, formatted
	// "2006-01-02 15:04:05".
	Timestamp string `json:"timestamp"`
}
