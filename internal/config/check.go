package config

import (
	"fmt"
	"slices"
)

// CrossCheck verifies the references between sections that a schema cannot
// express: every alias used by the algorithm or the validations must exist in
// source, aliases are unique, and the region matches the one requested.
// An empty region skips the region check.
func (c *Config) CrossCheck(region string) []Violation {
	var errs []Violation

	if region != "" && c.Meta.Region != region {
		errs = append(errs, Violation{
			Code:    ErrRegionMismatch,
			Path:    "meta.region",
			Message: fmt.Sprintf("configuration is for region %q, expected %q", c.Meta.Region, region),
		})
	}

	maps := []struct {
		path string
		cm   ColumnMap
	}{
		{"source", c.Source},
		{"destination", c.Destination},
		{"destination_map", c.DestinationMap},
		{"destination_errors", c.DestinationErrors},
	}
	for _, m := range maps {
		seen := make(map[string]bool, len(m.cm.Columns))
		for i, col := range m.cm.Columns {
			if col.Alias == "" {
				continue
			}
			if seen[col.Alias] {
				errs = append(errs, Violation{
					Code:    ErrDuplicateAlias,
					Path:    fmt.Sprintf("%s.columns[%d].alias", m.path, i),
					Message: fmt.Sprintf("duplicate alias %q", col.Alias),
				})
			}
			seen[col.Alias] = true
		}
	}

	groups := []struct {
		name    string
		aliases []string
	}{
		{"static", c.Algorithm.Columns.Static},
		{"process", c.Algorithm.Columns.Process},
		{"reference", c.Algorithm.Columns.Reference},
	}
	for _, g := range groups {
		for i, alias := range g.aliases {
			if !c.Source.Has(alias) {
				errs = append(errs, Violation{
					Code:    ErrUnknownAlgorithmColumn,
					Path:    fmt.Sprintf("algorithm.columns.%s[%d]", g.name, i),
					Message: fmt.Sprintf("column %q is not defined in source", alias),
				})
			}
		}
	}
	if len(c.Algorithm.Columns.All()) == 0 {
		errs = append(errs, Violation{
			Code:    ErrNoAlgorithmColumns,
			Path:    "algorithm.columns",
			Message: "at least one column must feed the identifier",
		})
	}

	keys := make([]string, 0, len(c.Validations))
	for k := range c.Validations {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if key != Wildcard && !c.Source.Has(key) {
			errs = append(errs, Violation{
				Code:    ErrUnknownValidationColumn,
				Path:    "validations." + key,
				Message: fmt.Sprintf("column %q is not defined in source", key),
			})
		}
		for i, rule := range c.Validations[key] {
			if rule.Target != "" && !c.Source.Has(rule.Target) {
				errs = append(errs, Violation{
					Code:    ErrUnknownRuleTarget,
					Path:    fmt.Sprintf("validations.%s[%d].target", key, i),
					Message: fmt.Sprintf("target column %q is not defined in source", rule.Target),
				})
			}
		}
	}

	return errs
}
