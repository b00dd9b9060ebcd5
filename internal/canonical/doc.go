// Package canonical serializes decoded configuration trees into a stable,
// whitespace-free JSON form suitable for content hashing.
//
// The output is byte-identical regardless of map iteration order:
//   - Object keys are sorted by UTF-16 code units (the order a JavaScript
//     sort produces, which is what existing signatures were computed with)
//   - No HTML escaping (< > & are emitted verbatim)
//   - U+2028 and U+2029 are emitted verbatim
//   - Integral numbers print without a fraction, so int64 from TOML and
//     float64 from JSON hash identically
//
// This package imports nothing internal.
package canonical
