package hashing

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
)

// Default output column names.
const (
	CommonIDColumn    = "common_id"
	ReferenceIDColumn = "reference_id"
)

// Hasher produces the named hash outputs of one row.
type Hasher interface {
	// Outputs lists the column names Hash fills, in output order.
	Outputs() []string
	Hash(row document.Row) (map[string]string, error)
}

// Factory builds a Hasher for an algorithm section. Hosts pass one to the
// pipeline; DefaultFactory dispatches on hash.strategy.
type Factory func(config.Algorithm) (Hasher, error)

var (
	mu         sync.RWMutex
	strategies = map[string]Factory{}
)

func init() {
	Register("SHA256", concatFactory("sha256"))
	Register("SHA512", concatFactory("sha512"))
}

// Register adds or replaces the factory for a strategy name.
func Register(strategy string, f Factory) {
	mu.Lock()
	strategies[strings.ToUpper(strategy)] = f
	mu.Unlock()
}

// Lookup returns the factory registered for a strategy.
func Lookup(strategy string) (Factory, bool) {
	mu.RLock()
	f, ok := strategies[strings.ToUpper(strategy)]
	mu.RUnlock()
	return f, ok
}

// Strategies lists the registered strategy names, sorted.
func Strategies() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(strategies))
}

// DefaultFactory builds the hasher registered for alg.Hash.Strategy.
func DefaultFactory(alg config.Algorithm) (Hasher, error) {
	f, ok := Lookup(alg.Hash.Strategy)
	if !ok {
		return nil, errors.WithHintf(
			errors.Newf("unknown hash strategy %q", alg.Hash.Strategy),
			"registered strategies: %s", strings.Join(Strategies(), ", "),
		)
	}
	return f(alg)
}

// concat concatenates group values without a separator. common_id digests
// the static values followed by the normalized process values;
// reference_id digests the reference values and only exists when that
// group is configured.
type concat struct {
	base      *Base
	algo      string
	cols      config.AlgorithmColumns
	output    string
	refOutput string
}

func concatFactory(algo string) Factory {
	return func(alg config.Algorithm) (Hasher, error) {
		return NewConcat(alg, algo)
	}
}

// NewConcat builds the built-in concatenating hasher with digest algo.
func NewConcat(alg config.Algorithm, algo string) (Hasher, error) {
	b, err := NewBase(alg)
	if err != nil {
		return nil, err
	}
	if _, err := newHash(algo); err != nil {
		return nil, err
	}
	h := &concat{
		base:      b,
		algo:      algo,
		cols:      alg.Columns,
		output:    alg.Hash.Output,
		refOutput: alg.Hash.ReferenceOutput,
	}
	if h.output == "" {
		h.output = CommonIDColumn
	}
	if h.refOutput == "" {
		h.refOutput = ReferenceIDColumn
	}
	return h, nil
}

func (h *concat) Outputs() []string {
	if len(h.cols.Reference) == 0 {
		return []string{h.output}
	}
	return []string{h.output, h.refOutput}
}

func (h *concat) Hash(row document.Row) (map[string]string, error) {
	g := ExtractColumnGroups(h.cols, row)

	var sb strings.Builder
	for _, v := range g.Static {
		sb.WriteString(clean(v))
	}
	for _, v := range g.Process {
		sb.WriteString(normalize(v))
	}
	id, err := h.base.Digest(sb.String(), h.algo)
	if err != nil {
		return nil, err
	}
	out := map[string]string{h.output: id}

	if len(g.Reference) > 0 {
		sb.Reset()
		for _, v := range g.Reference {
			sb.WriteString(clean(v))
		}
		ref, err := h.base.Digest(sb.String(), h.algo)
		if err != nil {
			return nil, err
		}
		out[h.refOutput] = ref
	}
	return out, nil
}

// Apply hashes every row and returns a new document whose rows are copies
// of the originals extended with the hash outputs.
func Apply(h Hasher, doc document.Document) (document.Document, error) {
	out := document.Document{Name: doc.Name, Rows: make([]document.Row, len(doc.Rows))}
	for i, row := range doc.Rows {
		values, err := h.Hash(row)
		if err != nil {
			return document.Document{}, errors.Wrapf(err, "hash row %d", i)
		}
		r := row.Clone()
		for k, v := range values {
			r[k] = v
		}
		out.Rows[i] = r
	}
	return out, nil
}
