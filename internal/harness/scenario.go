package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/commonid/internal/daterange"
)

// Scenario is one conformance case.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description says what the scenario demonstrates.
	Description string `yaml:"description"`

	// Config is the configuration file, relative to the scenario file.
	Config string `yaml:"config"`

	// Region is passed to the integrity loader.
	Region string `yaml:"region"`

	// Today fixes the clock, as yyyyMMdd.
	Today string `yaml:"today"`

	// Rows is the decoded input document.
	Rows []map[string]any `yaml:"rows"`

	// Assertions are checked against the outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one fact about the outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Expect is the expected boolean for valid and mapping_only.
	Expect *bool `yaml:"expect,omitempty"`

	// Row is a zero-based row index for row_error and output_value.
	Row int `yaml:"row,omitempty"`

	// Column is an alias for row_error and output_value.
	Column string `yaml:"column,omitempty"`

	// Kind is the failure kind for row_error.
	Kind string `yaml:"kind,omitempty"`

	// Value is the expected cell text for output_value.
	Value string `yaml:"value,omitempty"`

	// Columns is the expected output column aliases for columns.
	Columns []string `yaml:"columns,omitempty"`

	// Postfix is the expected output suffix for postfix.
	Postfix string `yaml:"postfix,omitempty"`
}

// Assertion types.
const (
	AssertValid       = "valid"
	AssertMappingOnly = "mapping_only"
	AssertRowError    = "row_error"
	AssertOutputValue = "output_value"
	AssertColumns     = "columns"
	AssertPostfix     = "postfix"
)

// LoadScenario reads a scenario file. Unknown fields are rejected and the
// config path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if _, err := os.Stat(s.Config); err != nil {
		return fmt.Errorf("config file not found: %s", s.Config)
	}
	if s.Region == "" {
		return fmt.Errorf("region is required")
	}
	if _, err := daterange.ParseDate(s.Today); err != nil {
		return fmt.Errorf("today: %w", err)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertValid, AssertMappingOnly:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertRowError:
		if a.Column == "" || a.Kind == "" {
			return fmt.Errorf("assertions[%d]: column and kind are required for row_error", index)
		}
	case AssertOutputValue:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for output_value", index)
		}
	case AssertColumns:
		if len(a.Columns) == 0 {
			return fmt.Errorf("assertions[%d]: columns is required for columns", index)
		}
	case AssertPostfix:
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
