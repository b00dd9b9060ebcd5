package validation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/rangetable"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
)

// arabicBlocks covers Arabic, Arabic Supplement, Arabic Extended-A and the
// two presentation forms blocks.
var arabicBlocks = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0600, Hi: 0x06FF, Stride: 1},
		{Lo: 0x0750, Hi: 0x077F, Stride: 1},
		{Lo: 0x08A0, Hi: 0x08FF, Stride: 1},
		{Lo: 0xFB50, Hi: 0xFDFF, Stride: 1},
		{Lo: 0xFE70, Hi: 0xFEFF, Stride: 1},
	},
}

// scripts maps a language_check value to the characters it allows. Spaces
// are always allowed so multi-part names pass.
var scripts = map[string]*unicode.RangeTable{
	"arabic": rangetable.Merge(arabicBlocks, rangetable.New(' ')),
}

type languageCheck struct {
	base
	script string
	table  *unicode.RangeTable
}

func newLanguageCheck(rule config.Rule, b base, _ *settings) (Validator, error) {
	name, _ := rule.Value.(string)
	name = strings.ToLower(strings.TrimSpace(name))
	table, ok := scripts[name]
	if !ok {
		return nil, ruleErr(rule, "unsupported script "+document.Text(rule.Value))
	}
	return &languageCheck{base: b, script: name, table: table}, nil
}

func (l *languageCheck) Validate(v any, _ Context) *Failure {
	if document.IsEmpty(v) {
		return nil
	}
	text := norm.NFC.String(document.Text(v))
	for _, r := range text {
		if !unicode.Is(l.table, r) {
			return l.fail("must only contain " + l.script + " characters")
		}
	}
	return nil
}
