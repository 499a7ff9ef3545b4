package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcs-project/wcs/internal/repo"
	"github.com/wcs-project/wcs/pkg/model"
)

func executeCommand(root *cobra.Command, args ...string) (stdout string, err error) {
	// Capture os.Stdout since commands use fmt.Printf directly
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	root.SetArgs(args)
	err = root.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), err
}

func setupTestDir(t *testing.T) string {
	dir := t.TempDir()
	dir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	originalWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(originalWd)
	})
	return dir
}

func TestInitCommand(t *testing.T) {
	dir := setupTestDir(t)

	out, err := executeCommand(rootCmd, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized working copy")

	info, err := os.Stat(filepath.Join(dir, ".wcs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAddCommand(t *testing.T) {
	dir := setupTestDir(t)
	_, err := executeCommand(rootCmd, "init")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.txt"), []byte("hello"), 0644))

	out, err := executeCommand(rootCmd, "add", "foo.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "foo.txt")

	entries, err := repo.LoadEntries(dir)
	require.NoError(t, err)
	require.NotNil(t, entries["foo.txt"])
	assert.Equal(t, model.ScheduleAdd, entries["foo.txt"].Schedule)
}

func TestDeleteCommandForce(t *testing.T) {
	dir := setupTestDir(t)
	_, err := executeCommand(rootCmd, "init")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.txt"), []byte("hello"), 0644))
	_, err = executeCommand(rootCmd, "add", "foo.txt")
	require.NoError(t, err)

	out, err := executeCommand(rootCmd, "delete", "--force", "foo.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "foo.txt")

	entries, err := repo.LoadEntries(dir)
	require.NoError(t, err)
	assert.Nil(t, entries["foo.txt"])
}

func TestInfoCommand(t *testing.T) {
	dir := setupTestDir(t)
	_, err := executeCommand(rootCmd, "init")
	require.NoError(t, err)

	out, err := executeCommand(rootCmd, "info")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
	assert.Contains(t, out, "native")
}
