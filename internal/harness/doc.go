// Package harness runs conformance scenarios: YAML files that pair a signed
// configuration with a small input document and describe what processing
// must produce.
//
// Each scenario runs end to end. The configuration goes through the
// integrity loader, the rows through the pipeline with a fixed "today", and
// the outcome is recorded in a fresh in-memory ledger. Assertions check
// individual facts; golden files in testdata/golden pin the complete
// selected output so any change to identifiers shows up in review.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
package harness
