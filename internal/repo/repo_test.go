package repo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcs-project/wcs/internal/repo"
	"github.com/wcs-project/wcs/pkg/errclass"
	"github.com/wcs-project/wcs/pkg/model"
)

func TestInit_CreatesControlArea(t *testing.T) {
	dir := t.TempDir()

	wc, err := repo.Init(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, wc.Root)

	assert.DirExists(t, filepath.Join(dir, ".wcs", "pristine"))
	assert.FileExists(t, filepath.Join(dir, ".wcs", "format_version"))
	assert.FileExists(t, filepath.Join(dir, ".wcs", "entries.json"))
}

func TestDiscover_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := repo.Init(dir)
	require.NoError(t, err)

	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	wc, err := repo.Discover(sub)
	require.NoError(t, err)
	assert.Equal(t, dir, wc.Root)
}

func TestDiscover_NotAWorkingCopy(t *testing.T) {
	dir := t.TempDir()

	_, err := repo.Discover(dir)
	require.ErrorIs(t, err, errclass.ErrNotWorkingCopy)
}

func TestEntries_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	_, err := repo.Init(dir)
	require.NoError(t, err)

	entries := map[string]*model.Entry{
		"a.txt": {Path: "a.txt", Schedule: model.ScheduleAdd, RecordedAt: time.Now().UTC()},
		"b.txt": {Path: "b.txt", Schedule: model.ScheduleDelete, RecordedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.SaveEntries(dir, entries))

	loaded, err := repo.LoadEntries(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, model.ScheduleAdd, loaded["a.txt"].Schedule)
	assert.Equal(t, model.ScheduleDelete, loaded["b.txt"].Schedule)
}

func TestLoadEntries_EmptyWorkingCopy(t *testing.T) {
	dir := t.TempDir()
	_, err := repo.Init(dir)
	require.NoError(t, err)

	entries, err := repo.LoadEntries(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPristinePath(t *testing.T) {
	got := repo.PristinePath("/wc", "sub/f.txt")
	assert.Equal(t, filepath.Join("/wc", ".wcs", "pristine", "sub", "f.txt"), got)
}
