// Package pipeline runs one decoded document through the whole processing
// flow for a verified configuration:
//
//  1. classify: is this a mapping document?
//  2. validate, restricted to the required columns for mapping documents
//  3. valid: hash every row and select the destination columns
//  4. invalid: render the error document and select the error columns
//
// The hasher is supplied by the host as a hashing.Factory. Construction
// fails loudly for anything that would otherwise produce wrong identifiers:
// malformed rules, an unresolved salt, an unusable hash strategy.
//
// A Pipeline is read-only after New and may process several documents.
package pipeline
