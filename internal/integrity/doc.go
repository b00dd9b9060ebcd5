// Package integrity loads a processing configuration and refuses to hand it
// out unless it is structurally valid, matches its embedded signature, and
// has a usable salt.
//
// The signature is a hex digest over a canonical rendering of the
// configuration with meta.signature, messages and algorithm.salt.value
// removed and algorithm.salt.source forced to "STRING". A configuration
// therefore signs the same whether its salt is still a file reference or
// already inline, and edits to user-facing text do not invalidate it.
//
// Loading never mutates the decoded tree. Every stage returns a new
// *config.Config: first with sorted algorithm column groups, then with the
// salt file's contents inlined.
package integrity
