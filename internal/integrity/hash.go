package integrity

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/canonical"
	"github.com/roach88/commonid/internal/config"
)

// DefaultHashAlgorithm signs configurations unless told otherwise.
const DefaultHashAlgorithm = "md5"

// ComputeHash returns the hex signature of a decoded configuration tree.
// algo is one of md5 (the default when empty), sha1, sha256 or sha512.
// The tree is not modified.
func ComputeHash(tree map[string]any, algo string) (string, error) {
	h, err := signatureHash(algo)
	if err != nil {
		return "", err
	}

	stripped, ok := canonical.Clone(tree).(map[string]any)
	if !ok || stripped == nil {
		return "", errors.New("configuration is not an object")
	}
	if meta, ok := stripped["meta"].(map[string]any); ok {
		delete(meta, "signature")
	}
	delete(stripped, "messages")
	if alg, ok := stripped["algorithm"].(map[string]any); ok {
		if salt, ok := alg["salt"].(map[string]any); ok {
			delete(salt, "value")
			salt["source"] = string(config.SaltString)
		}
	}

	data, err := canonical.Marshal(stripped)
	if err != nil {
		return "", errors.Wrap(err, "canonicalize configuration")
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func signatureHash(algo string) (hash.Hash, error) {
	switch strings.ToLower(algo) {
	case "", "md5":
		return md5.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, errors.Newf("unsupported signature algorithm %q", algo)
	}
}

// Sign returns the signature an operator embeds in meta.signature after
// editing a configuration. The algorithm column groups are sorted first,
// exactly as LoadAndVerify does before comparing.
func Sign(tree map[string]any, algo string) (string, error) {
	cfg, err := config.FromTree(canonical.Clone(tree).(map[string]any))
	if err != nil {
		return "", errors.Wrap(err, "read configuration")
	}
	return ComputeHash(cfg.Normalize().Tree(), algo)
}
