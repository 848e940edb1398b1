package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand is a test helper that runs the CLI with the given args and
// captures both stdout and stderr.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

// ---------------------------------------------------------------------------
// Help output
// ---------------------------------------------------------------------------

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"apply", "inspect", "watch", "version", "completion"} {
		assert.Contains(t, stdout, sub, "help should mention %q subcommand", sub)
	}

	for _, flag := range []string{"--config", "--log-level", "--log-format", "--quiet", "--workers", "--gpu"} {
		assert.Contains(t, stdout, flag, "help should mention %q flag", flag)
	}
}

func TestApplyCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("apply", "--help")
	require.NoError(t, err)

	for _, flag := range []string{
		"--include-red", "--include-green", "--include-blue",
		"--exclude-red", "--exclude-green", "--exclude-blue",
		"--excluded", "--opacity", "--output", "--packets", "--quality",
	} {
		assert.Contains(t, stdout, flag)
	}
}

// ---------------------------------------------------------------------------
// Exit codes
// ---------------------------------------------------------------------------

func TestRootCommand_UnknownFlag(t *testing.T) {
	_, _, err := executeCommand("--nonexistent")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	_, _, err := executeCommand("--config", missing, "inspect", "x.png")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRootCommand_InvalidFlagValue(t *testing.T) {
	_, _, err := executeCommand("--log-level", "loud", "inspect", "x.png")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	e := &ExitError{Code: 3, Err: inner}

	assert.Equal(t, "boom", e.Error())
	assert.ErrorIs(t, e, inner)
	assert.Equal(t, "exit code 4", (&ExitError{Code: 4}).Error())
}

// ---------------------------------------------------------------------------
// version / completion
// ---------------------------------------------------------------------------

func TestVersionCommand_Human(t *testing.T) {
	stdout, _, err := executeCommand("version")
	require.NoError(t, err)

	assert.Contains(t, stdout, "chanavg")
}

func TestVersionCommand_JSON(t *testing.T) {
	stdout, _, err := executeCommand("version", "--json")
	require.NoError(t, err)

	assert.Contains(t, stdout, `"goVersion"`)
	assert.Contains(t, stdout, `"gpu"`)
}

func TestVersionCommand_NoArgs(t *testing.T) {
	_, _, err := executeCommand("version", "extra")
	require.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCommand("completion", shell)
			require.NoError(t, err)
			assert.NotEmpty(t, stdout)
		})
	}

	_, _, err := executeCommand("completion", "tcsh")
	require.Error(t, err)
}
