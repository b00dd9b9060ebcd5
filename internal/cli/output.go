package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/integrity"
	"github.com/roach88/commonid/internal/pipeline"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A document failed validation
	ExitCommandError = 2 // Command error (bad configuration, unreadable input, etc.)
)

// Error codes reported in CLI responses.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeUsage        = "E002" // Missing or invalid flag
	ErrCodeConfigLoad   = "E003" // Configuration unreadable or unparsable
	ErrCodeSchema       = "E004" // Configuration failed structural checks
	ErrCodeSignature    = "E005" // Signature mismatch
	ErrCodeSalt         = "E006" // Salt file missing or malformed
	ErrCodeInput        = "E007" // Input document unreadable
	ErrCodeWriteFailed  = "E008" // Output write error
	ErrCodeLedger       = "E009" // Run ledger error
	ErrCodeRuntime      = "E010" // Processing failed
	ErrCodeInvalidInput = "E011" // Input document failed validation
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(e CLIError) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &e,
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", e.Code, e.Message)
	if e.Hint != "" {
		fmt.Fprintf(f.Writer, "Hint: %s\n", e.Hint)
	}
	if f.Verbose && e.Details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", e.Details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// describe maps a loading or processing failure to its response.
func describe(err error) CLIError {
	e := CLIError{Code: ErrCodeGeneric, Message: err.Error()}
	if hints := errors.FlattenHints(err); hints != "" {
		e.Hint = hints
	}

	var (
		loadErr   *config.LoadError
		schemaErr *config.SchemaError
		sigErr    *integrity.SignatureError
		saltErr   *integrity.SaltFileError
		rtErr     *pipeline.RuntimeError
	)
	switch {
	case errors.As(err, &loadErr):
		e.Code = ErrCodeConfigLoad
	case errors.As(err, &schemaErr):
		e.Code = ErrCodeSchema
		e.Message = fmt.Sprintf("configuration has %d violation(s)", len(schemaErr.Violations))
		e.Details = schemaErr.Violations
	case errors.As(err, &sigErr):
		e.Code = ErrCodeSignature
		e.Details = map[string]string{"expected": sigErr.Expected, "actual": sigErr.Actual}
	case errors.As(err, &saltErr):
		e.Code = ErrCodeSalt
		if saltErr.Config != nil {
			e.Message = saltErr.Config.Message("error_in_salt", e.Message)
		}
		e.Details = map[string]string{"path": saltErr.Path, "cause": fmt.Sprint(saltErr.Err)}
	case errors.As(err, &rtErr):
		e.Code = ErrCodeRuntime
		e.Details = map[string]string{"runtime_code": string(rtErr.Code)}
	}
	return e
}

// fail reports err through the formatter and converts it to an ExitError.
func fail(f *OutputFormatter, exitCode int, err error) error {
	e := describe(err)
	if outErr := f.Error(e); outErr != nil {
		return outErr
	}
	return WrapExitError(exitCode, e.Code, err)
}

// failWith reports a failure that has no underlying typed error.
func failWith(f *OutputFormatter, exitCode int, code, message string) error {
	if err := f.Error(CLIError{Code: code, Message: message}); err != nil {
		return err
	}
	return NewExitError(exitCode, message)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
