package validation

import (
	"github.com/roach88/commonid/internal/config"
)

type constructor func(rule config.Rule, b base, s *settings) (Validator, error)

var constructors = map[Kind]constructor{
	FieldType:           newFieldType,
	Options:             newOptions,
	RegexMatch:          newRegexMatch,
	MinFieldLength:      newFieldLength,
	MaxFieldLength:      newFieldLength,
	MinValue:            newValueBound,
	MaxValue:            newValueBound,
	LanguageCheck:       newLanguageCheck,
	LinkedField:         newLinkedField,
	DateDiff:            newDateDiff,
	DateFieldDiff:       newDateFieldDiff,
	SameValueForAllRows: newSameValue,
}

// New builds the validator a rule description asks for. Unknown ops and
// malformed values are returned as *RuleError.
func New(rule config.Rule, opts ...Option) (Validator, error) {
	kind := Kind(rule.Op)
	ctor, ok := constructors[kind]
	if !ok {
		return nil, &RuleError{Op: rule.Op, Reason: "unknown op"}
	}
	v, err := ctor(rule, base{kind: kind, override: rule.Message}, newSettings(opts))
	if err != nil {
		return nil, err
	}
	return v, nil
}

func ruleErr(rule config.Rule, reason string) error {
	return &RuleError{Op: rule.Op, Reason: reason}
}
