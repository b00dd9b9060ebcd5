package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) (map[string]any, *Config) {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	tree, err := DecodeTree(data, DetectFormat(path))
	require.NoError(t, err)

	cfg, err := FromTree(tree)
	require.NoError(t, err)
	return tree, cfg
}

func TestDecodeFormatsProduceSameTree(t *testing.T) {
	jsonTree, _ := loadFixture(t, "config.json")
	tomlTree, _ := loadFixture(t, "config.toml")
	yamlTree, _ := loadFixture(t, "config.yaml")

	// JSON decodes every number as float64 while TOML and YAML keep int64,
	// so compare the typed views instead of raw trees.
	jsonCfg, err := FromTree(jsonTree)
	require.NoError(t, err)
	tomlCfg, err := FromTree(tomlTree)
	require.NoError(t, err)
	yamlCfg, err := FromTree(yamlTree)
	require.NoError(t, err)

	jsonCfg.tree, tomlCfg.tree, yamlCfg.tree = nil, nil, nil
	assert.Equal(t, jsonCfg, tomlCfg)
	assert.Equal(t, jsonCfg, yamlCfg)
}

func TestFromTreeTypedView(t *testing.T) {
	_, cfg := loadFixture(t, "config.json")

	assert.Equal(t, "TST", cfg.Meta.Region)
	assert.Equal(t, []string{"first_name", "last_name", "dob", "hh_id", "gender"}, cfg.Source.Aliases())
	assert.Equal(t, "-OUTPUT", cfg.Destination.Postfix)
	assert.Equal(t, []string{"last_name", "first_name", "dob"}, cfg.Algorithm.Columns.Static)
	assert.Equal(t, "SHA256", cfg.Algorithm.Hash.Strategy)
	assert.Equal(t, SaltString, cfg.Algorithm.Salt.Source)
	assert.Equal(t, "TEST", cfg.Algorithm.Salt.Value)
	assert.True(t, cfg.Algorithm.Salt.Resolved())

	require.Len(t, cfg.Validations["dob"], 1)
	assert.Equal(t, "regex_match", cfg.Validations["dob"][0].Op)
	assert.Equal(t, `^\d{8}$`, cfg.Validations["dob"][0].Value)
	assert.Equal(t, float64(1), cfg.Validations[Wildcard][0].Value)
	assert.Equal(t, "The salt file could not be read.", cfg.Message("error_in_salt", "fallback"))
	assert.Equal(t, "fallback", cfg.Message("missing", "fallback"))
}

func TestSaltPlatformPaths(t *testing.T) {
	tree, err := DecodeTree([]byte(`{"algorithm":{"salt":{"source":"FILE","value":{"linux":"$HOME/salt.asc","win32":"$APPDATA/salt.asc"}}}}`), FormatJSON)
	require.NoError(t, err)

	cfg, err := FromTree(tree)
	require.NoError(t, err)
	assert.Equal(t, SaltFile, cfg.Algorithm.Salt.Source)
	assert.Empty(t, cfg.Algorithm.Salt.Value)
	assert.Equal(t, "$HOME/salt.asc", cfg.Algorithm.Salt.Paths["linux"])
	assert.False(t, cfg.Algorithm.Salt.Resolved())
}

func TestDecodeTreeRejectsNonObject(t *testing.T) {
	_, err := DecodeTree([]byte(`[1, 2]`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an object")

	_, err = DecodeTree([]byte(`{"meta": `), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode json")
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatTOML, DetectFormat("a/config.TOML"))
	assert.Equal(t, FormatYAML, DetectFormat("config.yml"))
	assert.Equal(t, FormatJSON, DetectFormat("config.json"))
	assert.Equal(t, FormatJSON, DetectFormat("config"))
	assert.Equal(t, "toml", FormatTOML.String())
}

func TestColumnMapLookup(t *testing.T) {
	_, cfg := loadFixture(t, "config.json")

	assert.Equal(t, "Date of Birth", cfg.Source.NameOf("dob"))
	assert.Equal(t, "unknown", cfg.Source.NameOf("unknown"))
	col, ok := cfg.Source.Lookup("gender")
	require.True(t, ok)
	assert.Equal(t, "U", col.Default)
	assert.False(t, cfg.Source.Has("common_id"))
}

func TestNormalizeSortsGroupsWithoutMutating(t *testing.T) {
	tree, cfg := loadFixture(t, "config.json")

	normalized := cfg.Normalize()
	assert.Equal(t, []string{"dob", "first_name", "last_name"}, normalized.Algorithm.Columns.Static)
	assert.Equal(t, []string{"last_name", "first_name", "dob"}, cfg.Algorithm.Columns.Static)

	normTree := normalized.Tree()
	static := normTree["algorithm"].(map[string]any)["columns"].(map[string]any)["static"]
	assert.Equal(t, []any{"dob", "first_name", "last_name"}, static)

	original := tree["algorithm"].(map[string]any)["columns"].(map[string]any)["static"]
	assert.Equal(t, []any{"last_name", "first_name", "dob"}, original)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	_, cfg := loadFixture(t, "config.json")

	once := cfg.Normalize()
	twice := once.Normalize()
	assert.Equal(t, once.Algorithm.Columns, twice.Algorithm.Columns)
	assert.Equal(t, once.Tree(), twice.Tree())
}

func TestWithInlineSalt(t *testing.T) {
	tree, err := DecodeTree([]byte(`{"algorithm":{"salt":{"source":"FILE","value":"/tmp/salt.asc","validator_regex":"^KEY$"}}}`), FormatJSON)
	require.NoError(t, err)
	cfg, err := FromTree(tree)
	require.NoError(t, err)

	resolved := cfg.WithInlineSalt("KEY")
	assert.Equal(t, SaltString, resolved.Algorithm.Salt.Source)
	assert.Equal(t, "KEY", resolved.Algorithm.Salt.Value)
	assert.Equal(t, "^KEY$", resolved.Algorithm.Salt.ValidatorRegex)

	salt := resolved.Tree()["algorithm"].(map[string]any)["salt"].(map[string]any)
	assert.Equal(t, "STRING", salt["source"])
	assert.Equal(t, "KEY", salt["value"])

	assert.Equal(t, SaltFile, cfg.Algorithm.Salt.Source)
	assert.Equal(t, "/tmp/salt.asc", cfg.Algorithm.Salt.Value)
}
