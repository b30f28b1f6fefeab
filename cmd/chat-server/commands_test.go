package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	stderrors "chat-intake/internal/common/errors"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequest(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(`{"messages": []}`))

	body, err := readRequest(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"messages": []}`, string(body))

	cmd.SetIn(strings.NewReader(`from stdin`))
	body, err = readRequest(cmd, []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(body))

	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"messages": [{"role": "user", "content": "hi"}]}`), 0o600))
	body, err = readRequest(cmd, []string{path})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"hi"`)

	_, err = readRequest(cmd, []string{filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestTurnCommand_RejectsInvalidRequestWithoutConfig(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(`{"messages": "hello"}`))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"turn", "--config", filepath.Join(t.TempDir(), "never-read.yaml")})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()

	require.Error(t, err)
	stdErr, ok := stderrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeRequestValidationFailed, stdErr.Code)
	assert.Empty(t, out.String())
}
