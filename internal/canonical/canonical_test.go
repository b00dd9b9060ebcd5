package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"int64", int64(-100), "-100"},
		{"integral float", float64(2), "2"},
		{"fraction", 0.5, "0.5"},
		{"zero", float64(0), "0"},
		{"small exponent", 1e-7, "1e-7"},
		{"large exponent", 1e21, "1e+21"},
		{"bool", true, "true"},
		{"null", nil, "null"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"strings", []string{"b", "a"}, `["b","a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalSortsNestedKeys(t *testing.T) {
	obj := map[string]any{
		"z": map[string]any{"b": 1, "a": 2},
		"a": []any{map[string]any{"y": true, "x": false}},
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[{"x":false,"y":true}],"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalIntAndFloatHashEqually(t *testing.T) {
	fromTOML := map[string]any{"value": int64(3)}
	fromJSON := map[string]any{"value": float64(3)}

	a, err := Marshal(fromTOML)
	require.NoError(t, err)
	b, err := Marshal(fromJSON)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as the surrogate pair D800 DC00, which sorts before E000.
	obj := map[string]any{
		"\uE000": 1,
		"𐀀":      2,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"𐀀":2,"`+"\uE000"+`":1}`, string(result))
}

func TestMarshalEscaping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `^\d+$`, `"^\\d+$"`},
		{"control", "a\x01b", `"a\u0001b"`},
		{"html", "<a & b>", `"<a & b>"`},
		{"line separator", "a\u2028b", "\"a\u2028b\""},
		{"arabic", "محمد", `"محمد"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalRejectsUnsupported(t *testing.T) {
	_, err := Marshal(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")

	_, err = Marshal(map[string]any{"nested": []any{make(chan int)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `value for key "nested"`)
}

func TestCloneIsDeep(t *testing.T) {
	original := map[string]any{
		"meta": map[string]any{"signature": "abc"},
		"list": []any{"a", map[string]any{"k": "v"}},
	}

	copied := Clone(original).(map[string]any)
	delete(copied["meta"].(map[string]any), "signature")
	copied["list"].([]any)[1].(map[string]any)["k"] = "changed"

	assert.Equal(t, "abc", original["meta"].(map[string]any)["signature"])
	assert.Equal(t, "v", original["list"].([]any)[1].(map[string]any)["k"])
}

func TestCompareUTF16(t *testing.T) {
	assert.Equal(t, 0, CompareUTF16("abc", "abc"))
	assert.Equal(t, -1, CompareUTF16("ab", "abc"))
	assert.Equal(t, 1, CompareUTF16("b", "abc"))
	assert.Equal(t, -1, CompareUTF16("B", "a"))
}
