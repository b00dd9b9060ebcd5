package config

import (
	"fmt"
	"strings"
)

// Violation codes (E100-E199).
const (
	// ErrSchema is a structural violation reported by the CUE schema.
	ErrSchema = "E100"
	// ErrRegionMismatch means meta.region differs from the requested region.
	ErrRegionMismatch = "E101"
	// ErrUnknownAlgorithmColumn is an algorithm alias missing from source.
	ErrUnknownAlgorithmColumn = "E102"
	// ErrUnknownValidationColumn is a validations key missing from source.
	ErrUnknownValidationColumn = "E103"
	// ErrDuplicateAlias is an alias declared twice in one column map.
	ErrDuplicateAlias = "E104"
	// ErrInvalidRule is a rule description its validator refused.
	ErrInvalidRule = "E105"
	// ErrNoAlgorithmColumns means no column feeds the identifier.
	ErrNoAlgorithmColumns = "E106"
	// ErrUnknownRuleTarget is a rule target missing from source.
	ErrUnknownRuleTarget = "E107"
	// ErrTypeMismatch is a value the typed view could not map.
	ErrTypeMismatch = "E108"
	// ErrInvalidSaltRegex is a validator_regex that does not compile.
	ErrInvalidSaltRegex = "E109"
)

// Violation is one broken structural constraint.
type Violation struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	if v.Path == "" {
		return fmt.Sprintf("[%s] %s", v.Code, v.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", v.Code, v.Path, v.Message)
}

// SchemaError aggregates every violation found in a configuration.
type SchemaError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.Error()
	}
	return fmt.Sprintf("configuration has %d violation(s):\n%s", len(e.Violations), strings.Join(lines, "\n"))
}

// LoadError is returned when a configuration file cannot be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load configuration %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
