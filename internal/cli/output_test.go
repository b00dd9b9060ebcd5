package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/integrity"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(CLIError{Code: "E005", Message: "signature mismatch", Hint: "run sign"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "run sign", resp.Error.Hint)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error(CLIError{Code: "E001", Message: "boom", Details: "hidden"}))
	assert.Equal(t, "Error [E001]: boom\n", buf.String())

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error(CLIError{Code: "E001", Message: "boom", Details: "shown"}))
	assert.Contains(t, buf.String(), "Details: shown")
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag}

	formatter.VerboseLog("quiet %d", 1)
	assert.Empty(t, diag.String())

	formatter.Verbose = true
	formatter.VerboseLog("loud %d", 2)
	assert.Equal(t, "loud 2\n", diag.String())
	assert.Empty(t, out.String())
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := errors.Wrap(WrapExitError(ExitCommandError, "load", errors.New("cause")), "outer")
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, "load: cause", WrapExitError(ExitFailure, "load", errors.New("cause")).Error())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"generic", errors.New("boom"), ErrCodeGeneric},
		{"load", &config.LoadError{Path: "x.json", Err: errors.New("missing")}, ErrCodeConfigLoad},
		{"schema", &config.SchemaError{Violations: []config.Violation{{Code: config.ErrRegionMismatch}}}, ErrCodeSchema},
		{"signature", errors.WithHint(&integrity.SignatureError{Expected: "a", Actual: "b"}, "re-sign"), ErrCodeSignature},
		{"salt", &integrity.SaltFileError{Path: "/salt.asc", Err: errors.New("gone")}, ErrCodeSalt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, describe(tt.err).Code)
		})
	}

	e := describe(errors.WithHint(&integrity.SignatureError{Expected: "a", Actual: "b"}, "re-sign"))
	assert.Equal(t, "re-sign", e.Hint)
	assert.Equal(t, map[string]string{"expected": "a", "actual": "b"}, e.Details)
}

func TestDescribeSaltUsesConfiguredMessage(t *testing.T) {
	cfg := &config.Config{Messages: map[string]string{"error_in_salt": "Ask your administrator for the salt file."}}
	e := describe(&integrity.SaltFileError{Config: cfg, Path: "/salt.asc", Err: errors.New("gone")})
	assert.Equal(t, ErrCodeSalt, e.Code)
	assert.Equal(t, "Ask your administrator for the salt file.", e.Message)
}
