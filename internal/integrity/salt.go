package integrity

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/config"
)

// DefaultSaltPattern accepts an ASCII armored PGP public key block.
const DefaultSaltPattern = `(?s)^-----BEGIN PGP PUBLIC KEY BLOCK-----.+-----END PGP PUBLIC KEY BLOCK-----\s*$`

var pathToken = regexp.MustCompile(`\$\{(HOME|APPDATA)\}|\$(HOME|APPDATA)\b|%(HOME|APPDATA)%`)

// Environment is what salt resolution needs from the host.
type Environment struct {
	// GOOS selects the per-platform salt path.
	GOOS string
	// HomeDir resolves $HOME.
	HomeDir func() (string, error)
	// AppDataDir resolves $APPDATA.
	AppDataDir func() (string, error)
	ReadFile   func(name string) ([]byte, error)
}

// SystemEnvironment reads from the running host.
func SystemEnvironment() Environment {
	return Environment{
		GOOS:       runtime.GOOS,
		HomeDir:    os.UserHomeDir,
		AppDataDir: os.UserConfigDir,
		ReadFile:   os.ReadFile,
	}
}

// platformKeys lists the salt map keys tried for a GOOS, most specific
// first. Configurations use the win32/darwin/linux names.
func platformKeys(goos string) []string {
	if goos == "windows" {
		return []string{"win32", "windows"}
	}
	return []string{goos}
}

// SaltPath returns the salt file path for the environment with tokens
// expanded.
func SaltPath(salt config.Salt, env Environment) (string, error) {
	raw := salt.Value
	if salt.Paths != nil {
		raw = ""
		for _, key := range platformKeys(env.GOOS) {
			if p, ok := salt.Paths[key]; ok {
				raw = p
				break
			}
		}
		if raw == "" {
			return "", errors.Newf("no salt path configured for platform %q", env.GOOS)
		}
	}
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("salt path is empty")
	}
	return expandTokens(raw, env)
}

func expandTokens(path string, env Environment) (string, error) {
	var firstErr error
	out := pathToken.ReplaceAllStringFunc(path, func(tok string) string {
		m := pathToken.FindStringSubmatch(tok)
		name := m[1] + m[2] + m[3]
		resolve := env.HomeDir
		if name == "APPDATA" {
			resolve = env.AppDataDir
		}
		if resolve == nil {
			if firstErr == nil {
				firstErr = errors.Newf("cannot resolve %s", name)
			}
			return tok
		}
		dir, err := resolve()
		if err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "resolve %s", name)
			}
			return tok
		}
		return dir
	})
	if firstErr != nil {
		return "", firstErr
	}
	return filepath.Clean(out), nil
}

// compileSaltPattern anchors a validator_regex so it must match the whole
// file. An empty pattern selects DefaultSaltPattern.
func compileSaltPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = DefaultSaltPattern
	}
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

// readSalt reads the salt file and checks its full contents against the
// configured pattern. The contents are returned unmodified.
func readSalt(path, pattern string, env Environment) (string, error) {
	re, err := compileSaltPattern(pattern)
	if err != nil {
		return "", errors.Wrap(err, "compile validator_regex")
	}
	read := env.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(path)
	if err != nil {
		return "", errors.Wrap(err, "read salt file")
	}
	content := string(data)
	if !re.MatchString(content) {
		return "", errors.WithHint(
			errors.New("salt file content does not match validator_regex"),
			"check that the salt file is the one distributed for this configuration",
		)
	}
	return content, nil
}
