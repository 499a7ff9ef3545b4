package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wcs-project/wcs/internal/arena"
	"github.com/wcs-project/wcs/internal/repo"
	"github.com/wcs-project/wcs/internal/revision"
	"github.com/wcs-project/wcs/pkg/config"
	"github.com/wcs-project/wcs/pkg/errclass"
	"github.com/wcs-project/wcs/pkg/fsutil"
	"github.com/wcs-project/wcs/pkg/model"
	"github.com/wcs-project/wcs/pkg/pathutil"
)

// NativeSession is a session against the schedule-based native engine. State
// lives in the .wcs/ control area: an entries table recording per-path
// scheduling and a pristine store backing reverts.
type NativeSession struct {
	root   string
	ignore *ignoreMatcher
	closed bool
}

// NewNativeSession opens a native session for the working copy at or above
// root.
func NewNativeSession(root string, cfg *config.Config) (*NativeSession, error) {
	wc, err := repo.Discover(root)
	if err != nil {
		return nil, err
	}

	ignore, err := loadIgnoreMatcher(wc.Root, cfg.Ignore.Patterns)
	if err != nil {
		return nil, fmt.Errorf("load ignore patterns: %w", err)
	}

	return &NativeSession{root: wc.Root, ignore: ignore}, nil
}

// Engine returns the backend identifier.
func (s *NativeSession) Engine() model.EngineType {
	return model.EngineNative
}

// Close releases the session.
func (s *NativeSession) Close() error {
	s.closed = true
	return nil
}

// Root returns the working-copy root the session operates on.
func (s *NativeSession) Root() string {
	return s.root
}

func (s *NativeSession) ensureOpen() error {
	if s.closed {
		return errclass.ErrEngineOperation.WithMessage("session is closed")
	}
	return nil
}

// rel maps a canonical absolute path to the root-relative form entries are
// keyed by.
func (s *NativeSession) rel(p arena.Str) (string, error) {
	rel, err := pathutil.Rel(s.root, p.String())
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", errclass.ErrEngineOperation.WithMessagef("path outside working copy: %s", p.String())
	}
	return rel, nil
}

func (s *NativeSession) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Add schedules path for addition, capturing a pristine copy for later
// reverts.
func (s *NativeSession) Add(path arena.Str, flags AddFlags) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	rel, err := s.rel(path)
	if err != nil {
		return err
	}

	abs := s.abs(rel)
	info, err := os.Lstat(abs)
	if err != nil {
		return errclass.ErrEngineOperation.WithMessagef("cannot add %s: %v", rel, err)
	}

	entries, err := repo.LoadEntries(s.root)
	if err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}

	if e := entries[rel]; e != nil && e.Schedule != model.ScheduleDelete {
		return errclass.ErrEngineOperation.WithMessagef("%s is already under version control", rel)
	}
	if s.ignore.Ignored(rel, info.IsDir()) && !flags.Force {
		return errclass.ErrEngineOperation.WithMessagef("%s is ignored (use force to add)", rel)
	}

	if err := s.addOne(entries, rel, info.IsDir()); err != nil {
		return err
	}

	if info.IsDir() && flags.Recurse {
		err := filepath.Walk(abs, func(p string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if p == abs {
				return nil
			}
			if fi.Name() == repo.ControlDirName || fi.Name() == ".git" {
				if fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			childRel, err := pathutil.Rel(s.root, filepath.ToSlash(p))
			if err != nil {
				return err
			}
			if !flags.NoIgnore && s.ignore.Ignored(childRel, fi.IsDir()) {
				if fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if e := entries[childRel]; e != nil && e.Schedule != model.ScheduleDelete {
				return nil
			}
			return s.addOne(entries, childRel, fi.IsDir())
		})
		if err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
	}

	return s.save(entries)
}

// Delete schedules paths for deletion in order. On failure, paths already
// processed stay scheduled.
func (s *NativeSession) Delete(paths []arena.Str, force bool) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	entries, err := repo.LoadEntries(s.root)
	if err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}

	for _, p := range paths {
		rel, err := s.rel(p)
		if err == nil {
			err = s.deleteOne(entries, rel, force)
		}
		if err != nil {
			s.save(entries)
			return err
		}
	}
	return s.save(entries)
}

func (s *NativeSession) deleteOne(entries map[string]*model.Entry, rel string, force bool) error {
	abs := s.abs(rel)
	e := entries[rel]

	if e == nil {
		if !force {
			return errclass.ErrEngineOperation.WithMessagef("%s is not under version control", rel)
		}
		if err := os.RemoveAll(abs); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		return nil
	}

	if e.Schedule == model.ScheduleAdd {
		if !force {
			return errclass.ErrEngineOperation.WithMessagef("%s is scheduled for addition (use force)", rel)
		}
		if err := os.RemoveAll(abs); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		os.RemoveAll(repo.PristinePath(s.root, rel))
		delete(entries, rel)
		return nil
	}

	if mod := s.modified(e); mod && !force {
		return errclass.ErrEngineOperation.WithMessagef("%s has local modifications (use force)", rel)
	}
	if err := os.RemoveAll(abs); err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}
	e.Schedule = model.ScheduleDelete
	return nil
}

// Copy copies src at rev to dst and schedules dst for addition with a
// copied-from record.
func (s *NativeSession) Copy(src arena.Str, rev revision.Ref, dst arena.Str) error {
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

	entries, err := repo.LoadEntries(s.root)
	if err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}

	if _, err := os.Lstat(s.abs(relDst)); err == nil {
		return errclass.ErrEngineOperation.WithMessagef("destination %s already exists", relDst)
	}

	var srcPath string
	switch rev.Kind {
	case revision.Unspecified, revision.Head:
		srcPath = s.abs(relSrc)
	case revision.Base:
		if entries[relSrc] == nil {
			return errclass.ErrEngineOperation.WithMessagef("%s is not under version control", relSrc)
		}
		srcPath = repo.PristinePath(s.root, relSrc)
	default:
		return errclass.ErrEngineOperation.WithMessagef(
			"revision kind %s not supported by the native engine", rev.Kind)
	}

	info, err := os.Lstat(srcPath)
	if err != nil {
		return errclass.ErrEngineOperation.WithMessagef("cannot copy %s: %v", relSrc, err)
	}

	if info.IsDir() {
		err = fsutil.CopyTree(srcPath, s.abs(relDst))
	} else {
		err = fsutil.CopyFile(srcPath, s.abs(relDst))
	}
	if err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}

	if err := s.addOne(entries, relDst, info.IsDir()); err != nil {
		return err
	}
	entries[relDst].CopiedFrom = relSrc
	return s.save(entries)
}

// Move moves src to dst: dst is scheduled for addition with a copied-from
// record, src for deletion. force overrides the local-modifications check.
func (s *NativeSession) Move(src, dst arena.Str, force bool) error {
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

	entries, err := repo.LoadEntries(s.root)
	if err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}

	e := entries[relSrc]
	if e == nil {
		return errclass.ErrEngineOperation.WithMessagef("%s is not under version control", relSrc)
	}
	if !force {
		if mod := s.modified(e); mod {
			return errclass.ErrEngineOperation.WithMessagef("%s has local modifications (use force)", relSrc)
		}
	}
	if _, err := os.Lstat(s.abs(relDst)); err == nil {
		return errclass.ErrEngineOperation.WithMessagef("destination %s already exists", relDst)
	}

	info, err := os.Lstat(s.abs(relSrc))
	if err != nil {
		return errclass.ErrEngineOperation.WithMessagef("cannot move %s: %v", relSrc, err)
	}
	if err := os.Rename(s.abs(relSrc), s.abs(relDst)); err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}

	if err := s.addOne(entries, relDst, info.IsDir()); err != nil {
		return err
	}
	entries[relDst].CopiedFrom = relSrc

	if e.Schedule == model.ScheduleAdd {
		os.RemoveAll(repo.PristinePath(s.root, relSrc))
		delete(entries, relSrc)
	} else {
		e.Schedule = model.ScheduleDelete
	}
	return s.save(entries)
}

// Resolve clears the conflict marker on path. Without a recorded conflict
// the call fails and the working copy is unchanged.
func (s *NativeSession) Resolve(path arena.Str, recurse bool) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	rel, err := s.rel(path)
	if err != nil {
		return err
	}

	entries, err := repo.LoadEntries(s.root)
	if err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}

	resolved := false
	if e := entries[rel]; e != nil && e.Conflicted {
		e.Conflicted = false
		resolved = true
	}
	if recurse {
		prefix := rel + "/"
		if rel == "." {
			prefix = ""
		}
		for p, e := range entries {
			if strings.HasPrefix(p, prefix) && e.Conflicted {
				e.Conflicted = false
				resolved = true
			}
		}
	}
	if !resolved {
		return errclass.ErrEngineOperation.WithMessagef("no conflict recorded on %s", rel)
	}
	return s.save(entries)
}

// Revert restores paths to their last-known state, in order. A path
// scheduled for addition is forgotten and left on disk un-added.
func (s *NativeSession) Revert(paths []arena.Str, recurse bool) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	entries, err := repo.LoadEntries(s.root)
	if err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}

	for _, p := range paths {
		rel, err := s.rel(p)
		if err == nil {
			err = s.revertOne(entries, rel, recurse)
		}
		if err != nil {
			s.save(entries)
			return err
		}
	}
	return s.save(entries)
}

func (s *NativeSession) revertOne(entries map[string]*model.Entry, rel string, recurse bool) error {
	targets := make([]string, 0, 1)
	if entries[rel] != nil {
		targets = append(targets, rel)
	}
	if recurse {
		prefix := rel + "/"
		if rel == "." {
			prefix = ""
		}
		for p := range entries {
			if strings.HasPrefix(p, prefix) {
				targets = append(targets, p)
			}
		}
	}
	if len(targets) == 0 {
		return errclass.ErrEngineOperation.WithMessagef("%s is not under version control", rel)
	}

	for _, t := range targets {
		if e := entries[t]; e != nil {
			if err := s.revertEntry(entries, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *NativeSession) revertEntry(entries map[string]*model.Entry, e *model.Entry) error {
	switch e.Schedule {
	case model.ScheduleAdd:
		// Forget the add; the file stays on disk un-added.
		os.RemoveAll(repo.PristinePath(s.root, e.Path))
		delete(entries, e.Path)
		return nil

	case model.ScheduleDelete:
		if err := s.restorePristine(e.Path); err != nil {
			return err
		}
		e.Schedule = model.ScheduleNormal
		e.Conflicted = false
		return nil

	default:
		if mod := s.modified(e); mod {
			if err := s.restorePristine(e.Path); err != nil {
				return err
			}
		}
		e.Conflicted = false
		return nil
	}
}

func (s *NativeSession) restorePristine(rel string) error {
	pristine := repo.PristinePath(s.root, rel)
	info, err := os.Lstat(pristine)
	if err != nil {
		return errclass.ErrEngineOperation.WithMessagef("no pristine copy of %s: %v", rel, err)
	}
	if info.IsDir() {
		if err := os.MkdirAll(s.abs(rel), info.Mode()); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		return nil
	}
	if err := fsutil.CopyFile(pristine, s.abs(rel)); err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}
	return nil
}

func (s *NativeSession) addOne(entries map[string]*model.Entry, rel string, isDir bool) error {
	e := &model.Entry{Path: rel, Schedule: model.ScheduleAdd, RecordedAt: time.Now().UTC()}

	if isDir {
		if err := os.MkdirAll(repo.PristinePath(s.root, rel), 0755); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
	} else {
		if err := fsutil.CopyFile(s.abs(rel), repo.PristinePath(s.root, rel)); err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		h, err := hashFile(s.abs(rel))
		if err != nil {
			return errclass.ErrEngineOperation.Wrap(err)
		}
		e.PristineHash = h
	}

	entries[rel] = e
	return nil
}

// modified reports whether the on-disk content differs from the pristine
// copy. Missing or unreadable files count as modified.
func (s *NativeSession) modified(e *model.Entry) bool {
	abs := s.abs(e.Path)
	info, err := os.Lstat(abs)
	if err != nil {
		return true
	}
	if info.IsDir() {
		return false
	}
	h, err := hashFile(abs)
	if err != nil {
		return true
	}
	return h != e.PristineHash
}

func (s *NativeSession) save(entries map[string]*model.Entry) error {
	if err := repo.SaveEntries(s.root, entries); err != nil {
		return errclass.ErrEngineOperation.Wrap(err)
	}
	return nil
}

func hashFile(path string) (model.HashValue, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return model.HashValue(hex.EncodeToString(h.Sum(nil))), nil
}

// MarkConflicted records a conflict on a versioned path in a native working
// copy. Conflict markers are produced by merge machinery outside this
// package; Resolve is what clears them.
func MarkConflicted(root, relPath string) error {
	entries, err := repo.LoadEntries(root)
	if err != nil {
		return err
	}
	e := entries[relPath]
	if e == nil {
		return fmt.Errorf("%s is not under version control", relPath)
	}
	e.Conflicted = true
	return repo.SaveEntries(root, entries)
}
