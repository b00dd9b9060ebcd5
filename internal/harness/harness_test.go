package harness

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertions failed:\n%v", result.Errors)
		})
	}
}

func TestRunRecordsLedgerEntry(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "invalid_rows.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	run := result.Run
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "TST", run.Region)
	assert.Equal(t, "6bb046b73f7c312ba4b02f12ce6709a2", run.ConfigSignature)
	assert.Equal(t, "invalid_rows", run.Document)
	assert.Equal(t, 3, run.Rows)
	assert.Equal(t, 1, run.ErrorRows)
	assert.False(t, run.Valid)
	assert.Equal(t, "invalid_rows-ERRORS.csv", run.OutputFile)
	assert.True(t, run.RecordedAt.Equal(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)))
}

func TestFailedAssertionsAreReported(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "invalid_rows.yaml"))
	require.NoError(t, err)

	no := false
	scenario.Assertions = []Assertion{
		{Type: AssertMappingOnly, Expect: &no},
		{Type: AssertValid, Expect: &no},
		{Type: AssertRowError, Row: 0, Column: "dob", Kind: "regex_match"},
		{Type: AssertOutputValue, Row: 9, Column: "errors"},
		{Type: AssertPostfix, Postfix: "-OUTPUT"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "row 0 column dob fails regex_match")
	assert.Contains(t, result.Errors[1], "row 9")
	assert.Contains(t, result.Errors[2], "-OUTPUT")
}

func TestRunRejectsWrongRegion(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "mapping_only.yaml"))
	require.NoError(t, err)
	scenario.Region = "XYZ"

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping_only")
}
