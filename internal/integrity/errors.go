package integrity

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/config"
)

// SignatureError means the configuration content does not match the
// signature embedded in it.
type SignatureError struct {
	Expected string
	Actual   string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("configuration signature mismatch: embedded %q, computed %q", e.Expected, e.Actual)
}

// SaltFileError means the configuration verified but its salt file could
// not be used. Config is the verified configuration, salt still
// unresolved, so callers can show its messages to the user.
type SaltFileError struct {
	Config *config.Config
	Path   string
	Err    error
}

func (e *SaltFileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("salt file: %v", e.Err)
	}
	return fmt.Sprintf("salt file %s: %v", e.Path, e.Err)
}

func (e *SaltFileError) Unwrap() error {
	return e.Err
}

// IsSaltFileError reports whether err is a salt failure and returns the
// configuration it carries.
func IsSaltFileError(err error) (*config.Config, bool) {
	var sfe *SaltFileError
	if errors.As(err, &sfe) {
		return sfe.Config, true
	}
	return nil, false
}
