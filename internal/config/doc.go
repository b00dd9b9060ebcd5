// Package config defines the processing configuration that drives validation
// and identifier hashing, and the structural checks applied when it is loaded.
//
// A configuration is decoded twice: once into a generic tree (the exact
// shape of the file, used for the content signature) and once into the typed
// Config view used by the rest of the program. Both views are immutable once
// returned; Normalize and WithInlineSalt return new values.
//
// Structural checks never stop at the first problem. CheckSchema and
// Config.CrossCheck return every violation they find so an operator can fix a
// configuration in one pass.
package config
