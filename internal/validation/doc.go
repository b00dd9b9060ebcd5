// Package validation turns declarative rule descriptions into executable
// validators and runs them over every cell of a document.
//
// The catalog of rule kinds is closed. New maps a rule's op to its
// constructor and rejects malformed descriptions immediately, so a bad
// configuration fails before the first row is read. Compile builds the
// per-column validator lists for a whole validations section, appending
// the wildcard rules after each column's own rules.
//
// Per-cell failures are data, not errors: ValidateDocument always returns a
// DocumentResult, and RenderErrorDocument turns that result into an
// annotated document for output.
package validation
