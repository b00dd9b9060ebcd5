package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "commonid", cmd.Use)
	assert.Contains(t, cmd.Long, "COMMONID_REGION")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"sign", "verify", "validate", "process", "runs"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "region", "ledger"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := execute(t, "sign", "--format", "xml", "testdata/config.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestProcessCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	processCmd, _, err := cmd.Find([]string{"process"})
	require.NoError(t, err)

	outFlag := processCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)
	assert.Equal(t, ".", outFlag.DefValue)
}

func TestSettingsFromEnvironment(t *testing.T) {
	t.Setenv("COMMONID_CONFIG", "testdata/config.json")
	t.Setenv("COMMONID_REGION", "TST")

	out, err := execute(t, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration verified: testdata/config.json")
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("COMMONID_REGION", "XYZ")

	out, err := execute(t, "verify", "--config", "testdata/config.json", "--region", "TST")
	require.NoError(t, err)
	assert.Contains(t, out, "region:    TST")
}
