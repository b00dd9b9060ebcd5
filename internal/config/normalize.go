package config

import (
	"slices"

	"github.com/roach88/commonid/internal/canonical"
)

// Normalize returns a copy of c whose three algorithm column groups are
// sorted, so identifiers and signatures do not depend on the order columns
// were listed in the file. The receiver is left untouched.
func (c *Config) Normalize() *Config {
	out := c.clone()
	slices.SortFunc(out.Algorithm.Columns.Static, canonical.CompareUTF16)
	slices.SortFunc(out.Algorithm.Columns.Process, canonical.CompareUTF16)
	slices.SortFunc(out.Algorithm.Columns.Reference, canonical.CompareUTF16)

	if cols, ok := lookupObject(out.tree, "algorithm", "columns"); ok {
		cols["static"] = toAnySlice(out.Algorithm.Columns.Static)
		cols["process"] = toAnySlice(out.Algorithm.Columns.Process)
		cols["reference"] = toAnySlice(out.Algorithm.Columns.Reference)
	}
	return out
}

// WithInlineSalt returns a copy of c whose salt is the given inline value.
// Only the integrity loader should call this, after it has validated the
// salt contents.
func (c *Config) WithInlineSalt(value string) *Config {
	out := c.clone()
	out.Algorithm.Salt = Salt{
		Source:         SaltString,
		Value:          value,
		ValidatorRegex: c.Algorithm.Salt.ValidatorRegex,
	}
	if salt, ok := lookupObject(out.tree, "algorithm", "salt"); ok {
		salt["source"] = string(SaltString)
		salt["value"] = value
	}
	return out
}

func lookupObject(tree map[string]any, path ...string) (map[string]any, bool) {
	cur := tree
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
