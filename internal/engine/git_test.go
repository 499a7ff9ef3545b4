package engine_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcs-project/wcs/internal/arena"
	"github.com/wcs-project/wcs/internal/engine"
	"github.com/wcs-project/wcs/internal/revision"
	"github.com/wcs-project/wcs/pkg/errclass"
	"github.com/wcs-project/wcs/pkg/model"
)

func setupGit(t *testing.T) (*engine.GitSession, string, *arena.Arena) {
	t.Helper()
	root := t.TempDir()

	r, err := gogit.PlainInit(root, false)
	require.NoError(t, err)
	w, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, root, "committed.txt", "committed content")
	_, err = w.Add("committed.txt")
	require.NoError(t, err)
	_, err = w.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	s, err := engine.NewGitSession(root)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, root, arena.New()
}

func gitStatus(t *testing.T, root string) gogit.Status {
	t.Helper()
	r, err := gogit.PlainOpen(root)
	require.NoError(t, err)
	w, err := r.Worktree()
	require.NoError(t, err)
	st, err := w.Status()
	require.NoError(t, err)
	return st
}

func TestGit_Engine(t *testing.T) {
	s, _, _ := setupGit(t)
	assert.Equal(t, model.EngineGit, s.Engine())
}

func TestGit_Add(t *testing.T) {
	s, root, a := setupGit(t)
	writeFile(t, root, "new.txt", "x")

	err := s.Add(canon(a, root, "new.txt"), engine.AddFlags{Recurse: true})
	require.NoError(t, err)

	st := gitStatus(t, root)
	assert.Equal(t, gogit.Added, st.File("new.txt").Staging)
}

func TestGit_Add_Missing(t *testing.T) {
	s, root, a := setupGit(t)

	err := s.Add(canon(a, root, "ghost.txt"), engine.AddFlags{})
	require.ErrorIs(t, err, errclass.ErrEngineOperation)
}

func TestGit_Delete_Unmodified(t *testing.T) {
	s, root, a := setupGit(t)

	err := s.Delete([]arena.Str{canon(a, root, "committed.txt")}, false)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(root, "committed.txt"))
}

func TestGit_Delete_ModifiedNeedsForce(t *testing.T) {
	s, root, a := setupGit(t)
	writeFile(t, root, "committed.txt", "changed")

	err := s.Delete([]arena.Str{canon(a, root, "committed.txt")}, false)
	require.ErrorIs(t, err, errclass.ErrEngineOperation)

	require.NoError(t, s.Delete([]arena.Str{canon(a, root, "committed.txt")}, true))
	assert.NoFileExists(t, filepath.Join(root, "committed.txt"))
}

func TestGit_Delete_Untracked(t *testing.T) {
	s, root, a := setupGit(t)
	writeFile(t, root, "loose.txt", "x")

	err := s.Delete([]arena.Str{canon(a, root, "loose.txt")}, false)
	require.ErrorIs(t, err, errclass.ErrEngineOperation)
}

func TestGit_Delete_NestedDirectory(t *testing.T) {
	root := t.TempDir()
	r, err := gogit.PlainInit(root, false)
	require.NoError(t, err)
	w, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, root, "dir/a.txt", "a")
	writeFile(t, root, "dir/sub/b.txt", "b")
	_, err = w.Add("dir")
	require.NoError(t, err)
	_, err = w.Commit("tree", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	s, err := engine.NewGitSession(root)
	require.NoError(t, err)
	defer s.Close()
	a := arena.New()

	err = s.Delete([]arena.Str{canon(a, root, "dir")}, false)
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(root, "dir"))

	// Entries at every depth must be staged for deletion, not just direct
	// children.
	idx, err := r.Storer.Index()
	require.NoError(t, err)
	for _, e := range idx.Entries {
		assert.NotEqual(t, "dir/a.txt", e.Name)
		assert.NotEqual(t, "dir/sub/b.txt", e.Name)
	}
	st := gitStatus(t, root)
	assert.Equal(t, gogit.Deleted, st.File("dir/a.txt").Staging)
	assert.Equal(t, gogit.Deleted, st.File("dir/sub/b.txt").Staging)
}

func TestGit_Move(t *testing.T) {
	s, root, a := setupGit(t)

	err := s.Move(canon(a, root, "committed.txt"), canon(a, root, "renamed.txt"), false)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(root, "committed.txt"))
	assert.FileExists(t, filepath.Join(root, "renamed.txt"))
}

func TestGit_Copy_WorkingRevision(t *testing.T) {
	s, root, a := setupGit(t)

	err := s.Copy(canon(a, root, "committed.txt"), revision.Ref{}, canon(a, root, "copy.txt"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "copy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "committed content", string(content))

	st := gitStatus(t, root)
	assert.Equal(t, gogit.Added, st.File("copy.txt").Staging)
}

func TestGit_Copy_AtHead(t *testing.T) {
	s, root, a := setupGit(t)
	// Drift the working file; HEAD still has the committed bytes.
	writeFile(t, root, "committed.txt", "drifted")

	ref, err := revision.Parse("HEAD")
	require.NoError(t, err)
	require.NoError(t, s.Copy(canon(a, root, "committed.txt"), ref, canon(a, root, "copy.txt")))

	content, err := os.ReadFile(filepath.Join(root, "copy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "committed content", string(content))
}

func TestGit_Copy_UnsupportedRevision(t *testing.T) {
	s, root, a := setupGit(t)

	ref, err := revision.Parse("42")
	require.NoError(t, err)
	err = s.Copy(canon(a, root, "committed.txt"), ref, canon(a, root, "copy.txt"))
	require.ErrorIs(t, err, errclass.ErrEngineOperation)
}

func TestGit_Revert_RestoresCommittedContent(t *testing.T) {
	s, root, a := setupGit(t)
	writeFile(t, root, "committed.txt", "scribbled")

	err := s.Revert([]arena.Str{canon(a, root, "committed.txt")}, false)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "committed.txt"))
	require.NoError(t, err)
	assert.Equal(t, "committed content", string(content))
}

func TestGit_Resolve_NoConflict(t *testing.T) {
	s, root, a := setupGit(t)

	err := s.Resolve(canon(a, root, "committed.txt"), true)
	require.ErrorIs(t, err, errclass.ErrEngineOperation)
}
