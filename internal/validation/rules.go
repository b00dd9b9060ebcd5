package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/roach88/commonid/internal/clock"
	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/daterange"
	"github.com/roach88/commonid/internal/document"
)

// Blank cells are left to min_field_length: every value check below passes
// an empty value, except where noted.

// --- field_type ---

type fieldType struct {
	base
	want string
}

func newFieldType(rule config.Rule, b base, _ *settings) (Validator, error) {
	want, _ := rule.Value.(string)
	if want != "string" && want != "number" {
		return nil, ruleErr(rule, `value must be "string" or "number"`)
	}
	return &fieldType{base: b, want: want}, nil
}

func (f *fieldType) Validate(v any, _ Context) *Failure {
	if document.IsEmpty(v) {
		return nil
	}
	var ok bool
	switch f.want {
	case "string":
		_, ok = v.(string)
	case "number":
		_, ok = document.Number(v)
	}
	if ok {
		return nil
	}
	return f.fail("must be of type " + f.want)
}

// --- options ---

type options struct {
	base
	allowed []string
}

func newOptions(rule config.Rule, b base, _ *settings) (Validator, error) {
	list, ok := rule.Value.([]any)
	if !ok || len(list) == 0 {
		return nil, ruleErr(rule, "value must be a non-empty list")
	}
	allowed := make([]string, len(list))
	for i, item := range list {
		switch item.(type) {
		case string, float64, int64, int:
			allowed[i] = document.Text(item)
		default:
			return nil, ruleErr(rule, fmt.Sprintf("option %d must be a string or a number", i))
		}
	}
	return &options{base: b, allowed: allowed}, nil
}

func (o *options) Validate(v any, _ Context) *Failure {
	if document.IsEmpty(v) {
		return nil
	}
	text := document.Text(v)
	for _, a := range o.allowed {
		if a == text {
			return nil
		}
	}
	return o.fail("must be one of " + strings.Join(o.allowed, ", "))
}

// --- regex_match ---

type regexMatch struct {
	base
	re *regexp.Regexp
}

func newRegexMatch(rule config.Rule, b base, _ *settings) (Validator, error) {
	pattern, ok := rule.Value.(string)
	if !ok || pattern == "" {
		return nil, ruleErr(rule, "value must be a non-empty pattern")
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, ruleErr(rule, err.Error())
	}
	return &regexMatch{base: b, re: re}, nil
}

func (r *regexMatch) Validate(v any, _ Context) *Failure {
	if document.IsEmpty(v) {
		return nil
	}
	if r.re.MatchString(document.Text(v)) {
		return nil
	}
	return r.fail("does not match the expected format")
}

// --- min_field_length / max_field_length ---

// Length counts characters of the trimmed text. min_field_length applies to
// blank cells too, which makes {op: min_field_length, value: 1} the
// "required" rule.
type fieldLength struct {
	base
	n int
}

func newFieldLength(rule config.Rule, b base, _ *settings) (Validator, error) {
	f, ok := document.Number(rule.Value)
	if !ok || f < 0 || f != math.Trunc(f) {
		return nil, ruleErr(rule, "value must be a non-negative integer")
	}
	return &fieldLength{base: b, n: int(f)}, nil
}

func (f *fieldLength) Validate(v any, _ Context) *Failure {
	n := utf8.RuneCountInString(strings.TrimSpace(document.Text(v)))
	if f.kind == MinFieldLength {
		if n < f.n {
			return f.fail(fmt.Sprintf("must be longer than %d characters", f.n))
		}
		return nil
	}
	if n > f.n {
		return f.fail(fmt.Sprintf("must be shorter than %d characters", f.n))
	}
	return nil
}

// --- min_value / max_value ---

const (
	tokenCurrentYear  = "CURRENT_YEAR"
	tokenCurrentMonth = "CURRENT_MONTH"
)

type valueBound struct {
	base
	bound float64
}

func newValueBound(rule config.Rule, b base, s *settings) (Validator, error) {
	bound, ok := resolveBound(rule, s.clock)
	if !ok {
		return nil, ruleErr(rule, "value must be a number")
	}
	return &valueBound{base: b, bound: bound}, nil
}

// resolveBound reads a numeric bound. max_value also accepts the live
// tokens CURRENT_YEAR and CURRENT_MONTH, fixed at construction in UTC.
func resolveBound(rule config.Rule, c clock.Clock) (float64, bool) {
	if s, ok := rule.Value.(string); ok && Kind(rule.Op) == MaxValue {
		now := c.Now().UTC()
		switch s {
		case tokenCurrentYear:
			return float64(now.Year()), true
		case tokenCurrentMonth:
			return float64(now.Month()), true
		}
	}
	return document.Number(rule.Value)
}

func (b *valueBound) Validate(v any, _ Context) *Failure {
	if document.IsEmpty(v) {
		return nil
	}
	n, ok := document.Number(v)
	if b.kind == MinValue {
		if !ok || n < b.bound {
			return b.fail("must be greater than " + document.Text(b.bound))
		}
		return nil
	}
	if !ok || n > b.bound {
		return b.fail("must be less than " + document.Text(b.bound))
	}
	return nil
}

// --- linked_field ---

type linkedField struct {
	base
	target string
}

func newLinkedField(rule config.Rule, b base, _ *settings) (Validator, error) {
	if rule.Target == "" {
		return nil, ruleErr(rule, "target is required")
	}
	return &linkedField{base: b, target: rule.Target}, nil
}

func (l *linkedField) Target() string { return l.target }

func (l *linkedField) Validate(v any, ctx Context) *Failure {
	if document.IsEmpty(v) {
		return nil
	}
	if !document.IsEmpty(ctx.Row[l.target]) {
		return nil
	}
	return l.fail("requires " + l.target + " to be filled in")
}

// --- date_diff / date_field_diff ---

const dateRangeMessage = "is not within the allowed date range"

type dateDiff struct {
	base
	window daterange.Window
	clock  clock.Clock
}

func parseWindow(rule config.Rule) (daterange.Window, error) {
	spec, ok := rule.Value.(string)
	if !ok {
		return daterange.Window{}, ruleErr(rule, `value must be a "<left>:<right>" window`)
	}
	w, err := daterange.Parse(spec)
	if err != nil {
		return daterange.Window{}, ruleErr(rule, err.Error())
	}
	return w, nil
}

func newDateDiff(rule config.Rule, b base, s *settings) (Validator, error) {
	w, err := parseWindow(rule)
	if err != nil {
		return nil, err
	}
	return &dateDiff{base: b, window: w, clock: s.clock}, nil
}

func (d *dateDiff) Validate(v any, _ Context) *Failure {
	if document.IsEmpty(v) {
		return nil
	}
	date, err := daterange.ParseDate(document.Text(v))
	if err != nil || !d.window.Contains(d.clock.Now(), date) {
		return d.fail(dateRangeMessage)
	}
	return nil
}

type dateFieldDiff struct {
	base
	window daterange.Window
	target string
}

func newDateFieldDiff(rule config.Rule, b base, _ *settings) (Validator, error) {
	if rule.Target == "" {
		return nil, ruleErr(rule, "target is required")
	}
	w, err := parseWindow(rule)
	if err != nil {
		return nil, err
	}
	return &dateFieldDiff{base: b, window: w, target: rule.Target}, nil
}

func (d *dateFieldDiff) Target() string { return d.target }

// An unreadable origin date fails the check: the window cannot be placed.
func (d *dateFieldDiff) Validate(v any, ctx Context) *Failure {
	if document.IsEmpty(v) {
		return nil
	}
	date, err := daterange.ParseDate(document.Text(v))
	if err != nil {
		return d.fail(dateRangeMessage)
	}
	origin, err := daterange.ParseDate(document.Text(ctx.Row[d.target]))
	if err != nil || !d.window.Contains(origin, date) {
		return d.fail(dateRangeMessage)
	}
	return nil
}

// --- same_value_for_all_rows ---

// sameValue compares against the first row of the whole document, blank
// cells included.
type sameValue struct {
	base
}

func newSameValue(_ config.Rule, b base, _ *settings) (Validator, error) {
	return &sameValue{base: b}, nil
}

func (s *sameValue) Validate(v any, ctx Context) *Failure {
	if len(ctx.Document.Rows) == 0 {
		return nil
	}
	first := ctx.Document.Rows[0][ctx.Column]
	if document.Text(v) == document.Text(first) {
		return nil
	}
	return s.fail("must be the same in every row")
}
