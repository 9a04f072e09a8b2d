package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestElementPutAndGet(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	_, err := runCommand(t, dataDir, "element", "put", "1", "task-a")
	require.NoError(t, err)

	_, err = runCommand(t, dataDir, "element", "get", "1")
	assert.NoError(t, err)
}

func TestElementGetMissing(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	_, err := runCommand(t, dataDir, "element", "get", "42")
	assert.Error(t, err)
}

func TestElementDelete(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	_, err := runCommand(t, dataDir, "element", "put", "1", "task-a")
	require.NoError(t, err)

	_, err = runCommand(t, dataDir, "element", "delete", "1")
	require.NoError(t, err)

	_, err = runCommand(t, dataDir, "element", "get", "1")
	assert.Error(t, err)
}
