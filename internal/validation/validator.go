package validation

import (
	"fmt"

	"github.com/roach88/commonid/internal/clock"
	"github.com/roach88/commonid/internal/document"
)

// Kind names a rule kind. It doubles as the op string in configurations.
type Kind string

const (
	FieldType           Kind = "field_type"
	Options             Kind = "options"
	RegexMatch          Kind = "regex_match"
	MinFieldLength      Kind = "min_field_length"
	MaxFieldLength      Kind = "max_field_length"
	MinValue            Kind = "min_value"
	MaxValue            Kind = "max_value"
	LanguageCheck       Kind = "language_check"
	LinkedField         Kind = "linked_field"
	DateDiff            Kind = "date_diff"
	DateFieldDiff       Kind = "date_field_diff"
	SameValueForAllRows Kind = "same_value_for_all_rows"

	// FieldName is reported when a column a validator expects is absent
	// from the row. No rule produces it.
	FieldName Kind = "field_name"
)

// Kinds lists every rule kind a configuration may use.
func Kinds() []Kind {
	return []Kind{
		FieldType, Options, RegexMatch, MinFieldLength, MaxFieldLength,
		MinValue, MaxValue, LanguageCheck, LinkedField, DateDiff,
		DateFieldDiff, SameValueForAllRows,
	}
}

// Failure is one rule violation for one cell.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Context gives validators that need it access to the rest of the row and
// the document. Column is the alias being validated.
type Context struct {
	Row      document.Row
	Document document.Document
	Column   string
}

// Validator checks one cell value. A nil Failure means the value passed.
type Validator interface {
	Kind() Kind
	Validate(v any, ctx Context) *Failure
}

// Targeted is implemented by validators that read a second column.
type Targeted interface {
	Target() string
}

// RuleError reports a rule description that cannot be turned into a
// validator. Column and Index locate the rule inside a validations section
// and are empty when the rule was built on its own.
type RuleError struct {
	Column string
	Index  int
	Op     string
	Reason string
}

func (e *RuleError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("invalid %s rule: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("invalid %s rule at validations.%s[%d]: %s", e.Op, e.Column, e.Index, e.Reason)
}

// Path is the rule's location in configuration terms.
func (e *RuleError) Path() string {
	if e.Column == "" {
		return "validations"
	}
	return fmt.Sprintf("validations.%s[%d]", e.Column, e.Index)
}

// Option configures validator construction.
type Option func(*settings)

type settings struct {
	clock clock.Clock
}

// WithClock sets the clock used for CURRENT_YEAR, CURRENT_MONTH and the
// "today" of date_diff. The default is the system clock.
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{clock: clock.System{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// base carries what every kind shares: its kind and the optional message
// override.
type base struct {
	kind     Kind
	override string
}

func (b base) Kind() Kind { return b.kind }

func (b base) fail(defaultMessage string) *Failure {
	msg := defaultMessage
	if b.override != "" {
		msg = b.override
	}
	return &Failure{Kind: b.kind, Message: msg}
}
