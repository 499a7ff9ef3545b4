package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcs-project/wcs/pkg/config"
)

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Engine)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Engine = "native"
	cfg.User = "alice"
	cfg.Ignore.Patterns = []string{"*.o", "build/"}
	require.NoError(t, config.Save(dir, cfg))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "native", loaded.Engine)
	assert.Equal(t, "alice", loaded.User)
	assert.Equal(t, []string{"*.o", "build/"}, loaded.Ignore.Patterns)
}

func TestDiscover_FromSubdirectory(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Engine = "native"
	cfg.Ignore.Patterns = []string{"*.o"}
	require.NoError(t, config.Save(root, cfg))

	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	found, err := config.Discover(sub)
	require.NoError(t, err)
	assert.Equal(t, "native", found.Engine)
	assert.Equal(t, []string{"*.o"}, found.Ignore.Patterns)
}

func TestDiscover_NoConfigReturnsDefaults(t *testing.T) {
	cfg, err := config.Discover(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Engine)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".wcs"), 0755))
	require.NoError(t, os.WriteFile(config.Path(dir), []byte("engine: [unclosed"), 0644))

	_, err := config.Load(dir)
	require.Error(t, err)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".wcs"), 0755))
	require.NoError(t, os.WriteFile(config.Path(dir), []byte("user: bob\n"), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.User)
	assert.Equal(t, "auto", cfg.Engine)
}
