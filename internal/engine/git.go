package engine

import (
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/wcs-project/wcs/internal/arena"
	"github.com/wcs-project/wcs/internal/revision"
	"github.com/wcs-project/wcs/pkg/errclass"
	"github.com/wcs-project/wcs/pkg/fsutil"
	"github.com/wcs-project/wcs/pkg/model"
	"github.com/wcs-project/wcs/pkg/pathutil"
)

// GitSession is a session against an existing git checkout, driven through
// go-git's worktree API.
type GitSession struct {
	root   string
	repo   *gogit.Repository
	wt     *gogit.Worktree
	closed bool
}

// NewGitSession opens a git session for the checkout at or above root.
func NewGitSession(root string) (*GitSession, error) {
	r, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	w, err := r.Worktree()
	if err != nil {
		return nil, err
	}
	return &GitSession{root: w.Filesystem.Root(), repo: r, wt: w}, nil
}

// Engine returns the backend identifier.
func (s *GitSession) Engine() model.EngineType {
	return model.EngineGit
}

// Close releases the session.
func (s *GitSession) Close() error {
	s.closed = true
	return nil
}

// Root returns the checkout root the session operates on.
func (s *GitSession) Root() string {
	return s.root
}

func (s *GitSession) ensureOpen() error {
	if s.closed {
		return errclass.ErrEngineOperation.WithMessage("session is closed")
	}
	return nil
}

func (s *GitSession) rel(p arena.Str) (string, error) {
	rel, err := pathutil.Rel(s.root, p.String())
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", errclass.ErrEngineOperation.WithMessagef("path outside working copy: %s", p.String())
	}
	return rel, nil
}

func (s *GitSession) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Add stages path. Force and NoIgnore bypass the status-based ignore
// filtering by staging the path directly.
func (s *GitSession) Add(path arena.Str, flags AddFlags) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	rel, err := s.rel(path)
	if err != nil {
		return err
	}

	info, err := os.Lstat(s.abs(rel))
	if err != nil {
		return errclass.ErrEngineOperation.WithMessagef("cannot add %s: %v", rel, err)
	}
	if info.IsDir() && !flags.Recurse {
		return errclass.ErrEngineOperation.WithMessage(
			"the git engine cannot add a directory without its contents")
	}

	if flags.Force || flags.NoIgnore {
		if err := s.wt.AddWithOptions(&gogit.AddOptions{Path: rel, SkipStatus: true}); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		return nil
	}
	if _, err := s.wt.Add(rel); err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}
	return nil
}

// Delete removes paths from the worktree and index, in order.
func (s *GitSession) Delete(paths []arena.Str, force bool) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	for _, p := range paths {
		rel, err := s.rel(p)
		if err != nil {
			return err
		}
		if err := s.deleteOne(rel, force); err != nil {
			return err
		}
	}
	return nil
}

func (s *GitSession) deleteOne(rel string, force bool) error {
	// Trackedness comes from the index: Status only lists changed files,
	// so a clean committed file is absent from it.
	tracked, err := s.indexEntriesAt(rel)
	if err != nil {
		return err
	}

	if len(tracked) == 0 {
		if !force {
			return errclass.ErrEngineOperation.WithMessagef("%s is not under version control", rel)
		}
		if err := os.RemoveAll(s.abs(rel)); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		return nil
	}

	if !force {
		st, err := s.wt.Status()
		if err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		for _, p := range tracked {
			fs := st.File(p)
			if fs.Worktree == gogit.Modified || fs.Staging == gogit.Modified {
				return errclass.ErrEngineOperation.WithMessagef("%s has local modifications (use force)", p)
			}
		}
	}

	for _, p := range tracked {
		if _, err := s.wt.Remove(p); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
	}
	// Remove the directory shell and anything unversioned left inside it.
	if info, err := os.Lstat(s.abs(rel)); err == nil && info.IsDir() {
		if err := os.RemoveAll(s.abs(rel)); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
	}
	return nil
}

// indexEntriesAt returns the index paths covered by rel: the entry for rel
// itself plus every entry below it when rel is a directory.
func (s *GitSession) indexEntriesAt(rel string) ([]string, error) {
	idx, err := s.repo.Storer.Index()
	if err != nil {
		return nil, errclass.ErrEngineOperation.Wrap(err)
	}

	var paths []string
	if _, err := idx.Entry(rel); err == nil {
		paths = append(paths, rel)
	}
	prefix := rel + "/"
	for _, e := range idx.Entries {
		if strings.HasPrefix(e.Name, prefix) {
			paths = append(paths, e.Name)
		}
	}
	return paths, nil
}

// Copy copies src at rev to dst and stages dst.
func (s *GitSession) Copy(src arena.Str, rev revision.Ref, dst arena.Str) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	relSrc, err := s.rel(src)
	if err != nil {
		return err
	}
	relDst, err := s.rel(dst)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(s.abs(relDst)); err == nil {
		return errclass.ErrEngineOperation.WithMessagef("destination %s already exists", relDst)
	}

	switch rev.Kind {
	case revision.Unspecified:
		info, err := os.Lstat(s.abs(relSrc))
		if err != nil {
			return errclass.ErrEngineOperation.WithMessagef("cannot copy %s: %v", relSrc, err)
		}
		if info.IsDir() {
			err = fsutil.CopyTree(s.abs(relSrc), s.abs(relDst))
		} else {
			err = fsutil.CopyFile(s.abs(relSrc), s.abs(relDst))
		}
		if err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}

	case revision.Head, revision.Base, revision.Committed, revision.Previous:
		commit, err := s.commitFor(rev.Kind)
		if err != nil {
			return err
		}
		f, err := commit.File(relSrc)
		if err != nil {
			return errclass.ErrEngineOperation.WithMessagef("%s not found at %s", relSrc, rev.Kind)
		}
		contents, err := f.Contents()
		if err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		if err := os.MkdirAll(filepath.Dir(s.abs(relDst)), 0755); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		mode, err := f.Mode.ToOSFileMode()
		if err != nil {
			mode = 0644
		}
		if err := os.WriteFile(s.abs(relDst), []byte(contents), mode.Perm()); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}

	default:
		return errclass.ErrEngineOperation.WithMessagef(
			"revision kind %s not supported by the git engine", rev.Kind)
	}

	if _, err := s.wt.Add(relDst); err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}
	return nil
}

// commitFor maps a revision kind to a commit. BASE and COMMITTED resolve to
// HEAD; PREV resolves to HEAD's first parent.
func (s *GitSession) commitFor(kind revision.Kind) (*object.Commit, error) {
	head, err := s.repo.Head()
	if err != nil {
		return nil, errclass.ErrEngineOperation.Wrap(err)
	}
	commit, err := s.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, errclass.ErrEngineOperation.Wrap(err)
	}
	if kind == revision.Previous {
		parent, err := commit.Parents().Next()
		if err != nil {
			return nil, errclass.ErrEngineOperation.WithMessage("HEAD has no parent")
		}
		return parent, nil
	}
	return commit, nil
}

// Move moves src to dst in the worktree and index.
func (s *GitSession) Move(src, dst arena.Str, force bool) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	relSrc, err := s.rel(src)
	if err != nil {
		return err
	}
	relDst, err := s.rel(dst)
	if err != nil {
		return err
	}

	if !force {
		st, err := s.wt.Status()
		if err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		fs := st.File(relSrc)
		if fs.Worktree == gogit.Modified || fs.Staging == gogit.Modified {
			return errclass.ErrEngineOperation.WithMessagef("%s has local modifications (use force)", relSrc)
		}
	}

	if _, err := s.wt.Move(relSrc, relDst); err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}
	return nil
}

// Resolve checks the index for unmerged stage entries on path and, when
// found, stages the working file to collapse them.
func (s *GitSession) Resolve(path arena.Str, recurse bool) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	rel, err := s.rel(path)
	if err != nil {
		return err
	}

	idx, err := s.repo.Storer.Index()
	if err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}

	conflicted := false
	for _, e := range idx.Entries {
		if e.Stage != index.OurMode && e.Stage != index.TheirMode {
			continue
		}
		if e.Name == rel || (recurse && strings.HasPrefix(e.Name, rel+"/")) {
			conflicted = true
			break
		}
	}
	if !conflicted {
		return errclass.ErrEngineOperation.WithMessagef("no conflict recorded on %s", rel)
	}

	if _, err := s.wt.Add(rel); err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}
	return nil
}

// Revert restores paths from the last commit, discarding staged and local
// changes.
func (s *GitSession) Revert(paths []arena.Str, recurse bool) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := s.rel(p)
		if err != nil {
			return err
		}
		rels = append(rels, rel)
	}
	if len(rels) == 0 {
		return nil
	}

	err := s.wt.Restore(&gogit.RestoreOptions{Files: rels, Staged: true, Worktree: true})
	if err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}
	return nil
}
