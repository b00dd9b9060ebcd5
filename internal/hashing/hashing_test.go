package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
)

// Known digests for salt "TEST".
const (
	vectorTEST123       = "4KPALKKEL6QRA3XD7AU2L74ECGOLBZES3F32VZQ3UDT7SLVTPLYQ===="
	vectorTEST123SHA512 = "V4Q4UOMWZCU55HTEBOEUOTM27EYNK5VXMUJSP2FIQPVIRSBSUKKESL35XAKTBZCTNEH4XXIPLWVOPM6BKKQNZUGYLPDUS5MBFIXRJGY="
)

func inlineSalt(value string) config.Salt {
	return config.Salt{Source: config.SaltString, Value: value}
}

func TestDigestRegressionVector(t *testing.T) {
	b, err := NewBase(config.Algorithm{Salt: inlineSalt("TEST")})
	require.NoError(t, err)

	got, err := b.Digest("TEST123", "sha256")
	require.NoError(t, err)
	assert.Equal(t, vectorTEST123, got)

	got, err = b.Digest("TEST123", "")
	require.NoError(t, err)
	assert.Equal(t, vectorTEST123, got, "sha256 is the default")

	got, err = b.Digest("TEST123", "sha512")
	require.NoError(t, err)
	assert.Equal(t, vectorTEST123SHA512, got)
}

func TestDigestIsDeterministicAndSaltDependent(t *testing.T) {
	a, err := NewBase(config.Algorithm{Salt: inlineSalt("TEST")})
	require.NoError(t, err)
	b, err := NewBase(config.Algorithm{Salt: inlineSalt("OTHER")})
	require.NoError(t, err)

	first, _ := a.Digest("TEST123", "sha256")
	second, _ := a.Digest("TEST123", "sha256")
	other, _ := b.Digest("TEST123", "sha256")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestDigestAlgorithms(t *testing.T) {
	b, err := NewBase(config.Algorithm{Salt: inlineSalt("TEST")})
	require.NoError(t, err)

	for _, algo := range []string{"sha1", "md5", "SHA256"} {
		_, err := b.Digest("x", algo)
		assert.NoError(t, err, algo)
	}
	_, err = b.Digest("x", "crc32")
	assert.Error(t, err)
}

func TestNewBaseRefusesFileSalt(t *testing.T) {
	_, err := NewBase(config.Algorithm{Salt: config.Salt{Source: config.SaltFile, Value: "$HOME/salt.asc"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedSalt)

	_, err = DefaultFactory(config.Algorithm{
		Hash: config.HashSpec{Strategy: "SHA256"},
		Salt: config.Salt{Source: config.SaltFile},
	})
	assert.ErrorIs(t, err, ErrUnresolvedSalt)
}

func TestExtractColumnGroups(t *testing.T) {
	cols := config.AlgorithmColumns{Static: []string{"b", "a"}, Process: []string{"p"}, Reference: []string{"missing"}}
	row := document.Row{"a": "1", "b": float64(2), "p": "x"}

	g := ExtractColumnGroups(cols, row)
	assert.Equal(t, []any{float64(2), "1"}, g.Static)
	assert.Equal(t, []any{"x"}, g.Process)
	assert.Equal(t, []any{nil}, g.Reference)
}

func TestConcatHasher(t *testing.T) {
	alg := config.Algorithm{
		Columns: config.AlgorithmColumns{Static: []string{"a"}, Process: []string{"p"}, Reference: []string{"r"}},
		Hash:    config.HashSpec{Strategy: "SHA256"},
		Salt:    inlineSalt("TEST"),
	}
	h, err := DefaultFactory(alg)
	require.NoError(t, err)
	assert.Equal(t, []string{"common_id", "reference_id"}, h.Outputs())

	out, err := h.Hash(document.Row{"a": "A", "p": "  x \t y ", "r": "R1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"common_id":    "D2IIWCSMMHASV6CKGTSDUSJECE2TSWZJ24M6AZHHUAET4X2G26EQ====",
		"reference_id": "HID3A5DRD7KK5GMRPS7YHVFRMOOJB6SIVRRBPFJ2Y7JNKSQPSISA====",
	}, out)
}

func TestConcatHasherBlanksNonStrings(t *testing.T) {
	alg := config.Algorithm{
		Columns: config.AlgorithmColumns{Static: []string{"a", "n"}},
		Hash:    config.HashSpec{Strategy: "SHA256"},
		Salt:    inlineSalt("TEST"),
	}
	h, err := DefaultFactory(alg)
	require.NoError(t, err)
	assert.Equal(t, []string{"common_id"}, h.Outputs())

	out, err := h.Hash(document.Row{"a": "A", "n": float64(42)})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"common_id": "ROK7UYSG3RCEM4MN4CYGZPYIGZ36JMPMHOWOCWM5JWXYI5UPM7XA===="}, out)
}

func TestConcatHasherConfigurableOutputs(t *testing.T) {
	alg := config.Algorithm{
		Columns: config.AlgorithmColumns{Static: []string{"a", "b"}, Reference: []string{"a"}},
		Hash:    config.HashSpec{Strategy: "sha512", Output: "cid", ReferenceOutput: "rid"},
		Salt:    inlineSalt("TEST"),
	}
	h, err := DefaultFactory(alg)
	require.NoError(t, err)
	assert.Equal(t, []string{"cid", "rid"}, h.Outputs())

	out, err := h.Hash(document.Row{"a": "TEST", "b": "123"})
	require.NoError(t, err)
	assert.Equal(t, vectorTEST123SHA512, out["cid"])
}

func TestDefaultFactoryUnknownStrategy(t *testing.T) {
	_, err := DefaultFactory(config.Algorithm{Hash: config.HashSpec{Strategy: "ROT13"}, Salt: inlineSalt("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROT13")
}

type stubHasher struct{}

func (stubHasher) Outputs() []string { return []string{"id"} }
func (stubHasher) Hash(row document.Row) (map[string]string, error) {
	return map[string]string{"id": "stub-" + document.Text(row["a"])}, nil
}

func TestRegisterCustomStrategy(t *testing.T) {
	Register("stub", func(config.Algorithm) (Hasher, error) { return stubHasher{}, nil })
	t.Cleanup(func() {
		mu.Lock()
		delete(strategies, "STUB")
		mu.Unlock()
	})

	f, ok := Lookup("STUB")
	require.True(t, ok)
	h, err := f(config.Algorithm{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, h.Outputs())
	assert.Contains(t, Strategies(), "STUB")
}

func TestApply(t *testing.T) {
	alg := config.Algorithm{
		Columns: config.AlgorithmColumns{Static: []string{"a", "b"}},
		Hash:    config.HashSpec{Strategy: "SHA256"},
		Salt:    inlineSalt("TEST"),
	}
	h, err := DefaultFactory(alg)
	require.NoError(t, err)

	doc := document.Document{Name: "in", Rows: []document.Row{{"a": "TEST", "b": "123"}}}
	out, err := Apply(h, doc)
	require.NoError(t, err)

	assert.Equal(t, "in", out.Name)
	assert.Equal(t, document.Row{"a": "TEST", "b": "123", "common_id": vectorTEST123}, out.Rows[0])
	assert.False(t, doc.Rows[0].Has("common_id"), "input rows are not modified")
}
