// Package hashing derives salted one-way identifiers from configured column
// groups of a row.
//
// A Base holds the resolved salt and exposes Digest, the single primitive
// every strategy builds on: hash(salt ‖ input), base32 encoded. Strategies
// decide which groups feed which output column. Changing the order or
// number of columns in a group changes every identifier produced.
package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base32"
	"hash"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
)

// ErrUnresolvedSalt is returned when a hasher is built from an algorithm
// whose salt still points at a file.
var ErrUnresolvedSalt = errors.New("salt is not resolved")

// Groups are the raw values of the three algorithm column groups, in
// configured order. Absent columns yield nil.
type Groups struct {
	Static    []any
	Process   []any
	Reference []any
}

// ExtractColumnGroups reads the three groups from a row.
func ExtractColumnGroups(cols config.AlgorithmColumns, row document.Row) Groups {
	pick := func(aliases []string) []any {
		out := make([]any, len(aliases))
		for i, alias := range aliases {
			out[i] = row[alias]
		}
		return out
	}
	return Groups{
		Static:    pick(cols.Static),
		Process:   pick(cols.Process),
		Reference: pick(cols.Reference),
	}
}

// Base is the salted digest primitive.
type Base struct {
	salt string
}

// NewBase builds a Base from a verified algorithm section. The salt must
// already be inline; only the integrity loader resolves salt files.
func NewBase(alg config.Algorithm) (*Base, error) {
	if !alg.Salt.Resolved() {
		return nil, errors.WithHint(
			errors.Wrapf(ErrUnresolvedSalt, "salt source is %q", alg.Salt.Source),
			"load the configuration through the integrity loader before hashing",
		)
	}
	return &Base{salt: alg.Salt.Value}, nil
}

// Digest hashes salt ‖ s with algo and returns the padded RFC 4648 base32
// text of the raw digest. An empty algo means sha256.
func (b *Base) Digest(s, algo string) (string, error) {
	h, err := newHash(algo)
	if err != nil {
		return "", err
	}
	h.Write([]byte(b.salt))
	h.Write([]byte(s))
	return base32.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

func newHash(algo string) (hash.Hash, error) {
	switch strings.ToLower(algo) {
	case "", "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "md5":
		return md5.New(), nil
	default:
		return nil, errors.Newf("unsupported digest algorithm %q", algo)
	}
}

// clean keeps strings and blanks everything else, so numeric formatting
// can never change an identifier.
func clean(v any) string {
	s, _ := v.(string)
	return s
}

// normalize prepares a process-group value: trimmed, inner whitespace
// collapsed to one space, upper-cased.
func normalize(v any) string {
	return strings.ToUpper(strings.Join(strings.Fields(clean(v)), " "))
}
