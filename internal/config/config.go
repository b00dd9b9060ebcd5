package config

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/roach88/commonid/internal/canonical"
)

// Wildcard is the validations key whose rules apply to every source column.
const Wildcard = "*"

// SaltSource says where the salt lives.
type SaltSource string

const (
	SaltFile   SaltSource = "FILE"
	SaltString SaltSource = "STRING"
)

// Config is the typed view of a processing configuration.
type Config struct {
	Meta              Meta              `json:"meta"`
	Source            ColumnMap         `json:"source"`
	Destination       ColumnMap         `json:"destination"`
	DestinationMap    ColumnMap         `json:"destination_map"`
	DestinationErrors ColumnMap         `json:"destination_errors"`
	Algorithm         Algorithm         `json:"algorithm"`
	Validations       map[string][]Rule `json:"validations"`
	Messages          map[string]string `json:"messages,omitempty"`

	tree map[string]any
}

// Meta identifies the configuration.
type Meta struct {
	Region    string `json:"region"`
	Version   string `json:"version"`
	Signature string `json:"signature"`
}

// ColumnMap is an ordered list of columns. Order matters for output only;
// lookups go through the alias.
type ColumnMap struct {
	Columns []Column `json:"columns"`
	Postfix string   `json:"postfix,omitempty"`
}

// Column maps an external (human) column name to its internal alias.
type Column struct {
	Name    string `json:"name"`
	Alias   string `json:"alias"`
	Default any    `json:"default,omitempty"`
}

// Algorithm holds everything the hashing engine reads.
type Algorithm struct {
	Columns AlgorithmColumns `json:"columns"`
	Hash    HashSpec         `json:"hash"`
	Salt    Salt             `json:"salt"`
}

// AlgorithmColumns are the three alias groups an identifier is derived from.
type AlgorithmColumns struct {
	Static    []string `json:"static"`
	Process   []string `json:"process"`
	Reference []string `json:"reference"`
}

// HashSpec selects the hashing strategy and its tunables.
type HashSpec struct {
	Strategy        string `json:"strategy"`
	Output          string `json:"output,omitempty"`
	ReferenceOutput string `json:"reference_output,omitempty"`
}

// Salt is either an inline secret or a reference to a salt file. A file
// reference is a single path in Value or a per-platform map in Paths.
type Salt struct {
	Source         SaltSource        `json:"source"`
	Value          string            `json:"-"`
	Paths          map[string]string `json:"-"`
	ValidatorRegex string            `json:"validator_regex,omitempty"`
}

// Rule is one declarative validation rule description.
type Rule struct {
	Op      string `json:"op"`
	Value   any    `json:"value,omitempty"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message,omitempty"`
}

// UnmarshalJSON accepts a salt value that is either a string or an object
// keyed by platform.
func (s *Salt) UnmarshalJSON(data []byte) error {
	var aux struct {
		Source         SaltSource      `json:"source"`
		Value          json.RawMessage `json:"value"`
		ValidatorRegex string          `json:"validator_regex"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Source = aux.Source
	s.ValidatorRegex = aux.ValidatorRegex
	s.Value = ""
	s.Paths = nil
	if len(aux.Value) == 0 || string(aux.Value) == "null" {
		return nil
	}
	if aux.Value[0] == '{' {
		return json.Unmarshal(aux.Value, &s.Paths)
	}
	return json.Unmarshal(aux.Value, &s.Value)
}

// MarshalJSON mirrors UnmarshalJSON.
func (s Salt) MarshalJSON() ([]byte, error) {
	out := map[string]any{"source": s.Source}
	if s.Paths != nil {
		out["value"] = s.Paths
	} else {
		out["value"] = s.Value
	}
	if s.ValidatorRegex != "" {
		out["validator_regex"] = s.ValidatorRegex
	}
	return json.Marshal(out)
}

// Resolved reports whether the salt is inline and ready for hashing.
func (s Salt) Resolved() bool {
	return s.Source == SaltString
}

// All returns every alias across the three groups in static, process,
// reference order.
func (c AlgorithmColumns) All() []string {
	out := make([]string, 0, len(c.Static)+len(c.Process)+len(c.Reference))
	out = append(out, c.Static...)
	out = append(out, c.Process...)
	return append(out, c.Reference...)
}

// Aliases returns the column aliases in map order.
func (m ColumnMap) Aliases() []string {
	out := make([]string, len(m.Columns))
	for i, col := range m.Columns {
		out[i] = col.Alias
	}
	return out
}

// Lookup finds a column by alias.
func (m ColumnMap) Lookup(alias string) (Column, bool) {
	for _, col := range m.Columns {
		if col.Alias == alias {
			return col, true
		}
	}
	return Column{}, false
}

// NameOf returns the human name for alias, or the alias itself when the
// column is unknown.
func (m ColumnMap) NameOf(alias string) string {
	if col, ok := m.Lookup(alias); ok && col.Name != "" {
		return col.Name
	}
	return alias
}

// Has reports whether alias is part of the map.
func (m ColumnMap) Has(alias string) bool {
	_, ok := m.Lookup(alias)
	return ok
}

// Tree returns a deep copy of the decoded document this config was built
// from, reflecting any normalization applied since.
func (c *Config) Tree() map[string]any {
	if c.tree == nil {
		return nil
	}
	return canonical.Clone(c.tree).(map[string]any)
}

// Message returns a user-facing message by key, or fallback when the
// configuration does not define it.
func (c *Config) Message(key, fallback string) string {
	if msg, ok := c.Messages[key]; ok && msg != "" {
		return msg
	}
	return fallback
}

// clone deep-copies the config so normalization never aliases the caller's
// slices, maps or tree.
func (c *Config) clone() *Config {
	out := *c
	out.Source = c.Source.clone()
	out.Destination = c.Destination.clone()
	out.DestinationMap = c.DestinationMap.clone()
	out.DestinationErrors = c.DestinationErrors.clone()
	out.Algorithm.Columns = AlgorithmColumns{
		Static:    slices.Clone(c.Algorithm.Columns.Static),
		Process:   slices.Clone(c.Algorithm.Columns.Process),
		Reference: slices.Clone(c.Algorithm.Columns.Reference),
	}
	out.Algorithm.Salt.Paths = maps.Clone(c.Algorithm.Salt.Paths)
	if c.Validations != nil {
		out.Validations = make(map[string][]Rule, len(c.Validations))
		for k, rules := range c.Validations {
			out.Validations[k] = slices.Clone(rules)
		}
	}
	out.Messages = maps.Clone(c.Messages)
	out.tree = c.Tree()
	return &out
}

func (m ColumnMap) clone() ColumnMap {
	return ColumnMap{Columns: slices.Clone(m.Columns), Postfix: m.Postfix}
}
