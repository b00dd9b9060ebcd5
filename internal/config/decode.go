package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file encoding.
type Format int

const (
	// FormatAuto detects the format from the file extension.
	FormatAuto Format = iota
	FormatJSON
	FormatTOML
	FormatYAML
)

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// DetectFormat maps a file extension to a Format. Unknown extensions are
// treated as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeTree decodes raw configuration bytes into a generic tree made only of
// map[string]any, []any, string, bool, int64, float64 and nil.
func DecodeTree(data []byte, format Format) (map[string]any, error) {
	var raw any
	switch format {
	case FormatJSON, FormatAuto:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "decode json")
		}
	case FormatTOML:
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, errors.Wrap(err, "decode toml")
		}
		raw = m
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
	default:
		return nil, errors.Newf("unsupported config format %s", format)
	}

	tree, err := normalizeValue(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := tree.(map[string]any)
	if !ok {
		return nil, errors.Newf("configuration must be an object, got %T", raw)
	}
	return obj, nil
}

// normalizeValue folds decoder-specific shapes (TOML table arrays, YAML
// any-keyed maps, datetimes) into the plain JSON model.
func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int64, float64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint64:
		return float64(val), nil
	case float32:
		return float64(val), nil
	case time.Time:
		return val.Format(time.RFC3339), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := normalizeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			key := fmt.Sprint(k)
			n, err := normalizeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = n
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := normalizeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := normalizeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, errors.Newf("unsupported value of type %T", v)
	}
}

// FromTree builds the typed view of a decoded tree. Type mismatches are
// reported but the best-effort Config is still returned so cross-checks can
// run alongside schema errors.
func FromTree(tree map[string]any) (*Config, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(err, "re-encode configuration")
	}
	cfg := &Config{}
	decodeErr := json.Unmarshal(data, cfg)
	cfg.tree = tree
	if decodeErr != nil {
		return cfg, errors.Wrap(decodeErr, "map configuration")
	}
	return cfg, nil
}

// Parse decodes raw bytes into a Config without running any checks.
func Parse(data []byte, format Format) (*Config, error) {
	tree, err := DecodeTree(data, format)
	if err != nil {
		return nil, err
	}
	return FromTree(tree)
}
