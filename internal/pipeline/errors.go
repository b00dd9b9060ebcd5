package pipeline

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// RuntimeErrorCode categorizes pipeline failures.
type RuntimeErrorCode string

const (
	// ErrCodeUnresolvedSalt means the configuration's salt still points at
	// a file.
	ErrCodeUnresolvedSalt RuntimeErrorCode = "UNRESOLVED_SALT"

	// ErrCodeHashFailed means the hasher could not be built or failed on a
	// row.
	ErrCodeHashFailed RuntimeErrorCode = "HASH_FAILED"

	// ErrCodeInvalidRules means a validation rule could not be built.
	ErrCodeInvalidRules RuntimeErrorCode = "INVALID_RULES"
)

// RuntimeError is returned for failures that stop a document from being
// processed at all. Per-cell validation failures are never RuntimeErrors.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of a RuntimeError anywhere in err's chain, or
// "" when there is none.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
