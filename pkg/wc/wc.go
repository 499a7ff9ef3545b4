package wc

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/wcs-project/wcs/internal/arena"
	"github.com/wcs-project/wcs/internal/engine"
	"github.com/wcs-project/wcs/internal/revision"
	"github.com/wcs-project/wcs/pkg/config"
	"github.com/wcs-project/wcs/pkg/errclass"
	"github.com/wcs-project/wcs/pkg/logging"
	"github.com/wcs-project/wcs/pkg/model"
	"github.com/wcs-project/wcs/pkg/pathutil"
)

var initOnce sync.Once

// Initialize performs process-wide setup. It is idempotent and invoked by
// Open; calling it explicitly is only needed to front-load the work.
func Initialize() {
	initOnce.Do(func() {
		if lvl := os.Getenv("WCS_LOG_LEVEL"); lvl != "" {
			logging.Global().SetLevel(logging.Level(lvl))
		}
	})
}

// WorkingCopy is a handle on one local working copy. It owns a client
// session and two arenas: a long-lived pool backing the handle's own state,
// and a scratch arena cleared after every operation.
//
// A WorkingCopy is not safe for concurrent use: the scratch arena is reused
// and cleared per call. Callers must not retain canonical path values past
// an operation's return.
type WorkingCopy struct {
	root    arena.Str
	user    string
	session engine.Session
	pool    *arena.Arena
	scratch *arena.Arena
	log     *logging.Logger
}

// Open opens the working copy at path (default: current directory). The
// client session is created once here and reused by every operation; if it
// cannot be established, Open fails with errclass.ErrContextCreation and no
// operations are usable.
func Open(path string, opts OpenOptions) (*WorkingCopy, error) {
	Initialize()

	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errclass.ErrContextCreation.Wrap(err)
		}
		path = cwd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errclass.ErrContextCreation.Wrap(err)
	}

	// Config lives at the working-copy root, which may sit above the
	// opened path; discovery walks up so engine overrides and ignore
	// patterns apply from any subdirectory.
	cfg, err := config.Discover(abs)
	if err != nil {
		return nil, errclass.ErrContextCreation.Wrap(err)
	}
	user := opts.User
	if user == "" {
		user = cfg.User
	}

	pool := arena.New()
	session, err := engine.NewSession(abs, cfg)
	if err != nil {
		pool.Close()
		return nil, errclass.ErrContextCreation.Wrap(err)
	}

	if cfg.Logging.Level != "" {
		logging.Global().SetLevel(logging.Level(cfg.Logging.Level))
	}

	// The session may discover a root above the opened path.
	root := session.Root()
	w := &WorkingCopy{
		root:    pool.Strdup(pathutil.Canon("", root)),
		user:    user,
		session: session,
		pool:    pool,
		scratch: arena.New(),
		log:     logging.Global().WithFields(map[string]any{"root": root, "engine": string(session.Engine())}),
	}
	w.log.Debug("working copy opened")
	return w, nil
}

// Close releases the handle: the session is closed and both arenas are
// released. The handle is unusable afterward.
func (w *WorkingCopy) Close() error {
	err := w.session.Close()
	w.scratch.Close()
	w.pool.Close()
	return err
}

// Root returns the working-copy root path the handle was opened with.
func (w *WorkingCopy) Root() string {
	return w.root.String()
}

// Info summarizes the open working copy.
func (w *WorkingCopy) Info() model.Info {
	return model.Info{Root: w.Root(), Engine: w.session.Engine(), User: w.user}
}

// Copy copies src at the revision named in opts to dest and schedules dest
// for addition. An empty revision means the working revision; an
// unparseable one fails with errclass.ErrInvalidRevision before any engine
// work.
func (w *WorkingCopy) Copy(_ context.Context, src, dest string, opts CopyOptions) error {
	defer w.scratch.Clear()

	ref, err := revision.Parse(opts.Rev)
	if err != nil {
		return err
	}
	s, err := w.buildPath(src)
	if err != nil {
		return err
	}
	d, err := w.buildPath(dest)
	if err != nil {
		return err
	}

	if err := w.session.Copy(s, ref, d); err != nil {
		return err
	}
	w.log.WithOp("copy").Debug("copied", map[string]any{"src": src, "dest": dest, "rev": opts.Rev})
	return nil
}

// Move moves src to dest. opts.Force permits moving despite local
// modifications.
func (w *WorkingCopy) Move(_ context.Context, src, dest string, opts MoveOptions) error {
	defer w.scratch.Clear()

	s, err := w.buildPath(src)
	if err != nil {
		return err
	}
	d, err := w.buildPath(dest)
	if err != nil {
		return err
	}

	if err := w.session.Move(s, d, opts.Force); err != nil {
		return err
	}
	w.log.WithOp("move").Debug("moved", map[string]any{"src": src, "dest": dest})
	return nil
}

// Delete schedules paths for deletion, in the order given. Application
// across a list is not atomic: paths scheduled before a failure stay
// scheduled.
func (w *WorkingCopy) Delete(_ context.Context, paths Paths, opts DeleteOptions) error {
	defer w.scratch.Clear()

	list, err := w.buildPathList(paths)
	if err != nil {
		return err
	}

	if err := w.session.Delete(list, opts.Force); err != nil {
		return err
	}
	w.log.WithOp("delete").Debug("scheduled for deletion", map[string]any{"paths": paths.Len()})
	return nil
}

// Add schedules path for addition.
func (w *WorkingCopy) Add(_ context.Context, path string, opts AddOptions) error {
	defer w.scratch.Clear()

	p, err := w.buildPath(path)
	if err != nil {
		return err
	}

	flags := engine.AddFlags{Recurse: opts.recurse(), Force: opts.Force, NoIgnore: opts.NoIgnore}
	if err := w.session.Add(p, flags); err != nil {
		return err
	}
	w.log.WithOp("add").Debug("scheduled for addition", map[string]any{"path": path})
	return nil
}

// Resolve marks the conflict on path as resolved. The path is canonicalized
// like every other operation's arguments.
func (w *WorkingCopy) Resolve(_ context.Context, path string, opts ResolveOptions) error {
	defer w.scratch.Clear()

	p, err := w.buildPath(path)
	if err != nil {
		return err
	}

	if err := w.session.Resolve(p, opts.recurse()); err != nil {
		return err
	}
	w.log.WithOp("resolve").Debug("conflict resolved", map[string]any{"path": path})
	return nil
}

// Revert restores paths to their last-known state, in the order given.
func (w *WorkingCopy) Revert(_ context.Context, paths Paths, opts RevertOptions) error {
	defer w.scratch.Clear()

	list, err := w.buildPathList(paths)
	if err != nil {
		return err
	}

	if err := w.session.Revert(list, opts.Recurse); err != nil {
		return err
	}
	w.log.WithOp("revert").Debug("reverted", map[string]any{"paths": paths.Len()})
	return nil
}

// buildPath canonicalizes one path argument into the scratch arena and
// verifies it does not escape the working copy.
func (w *WorkingCopy) buildPath(p string) (arena.Str, error) {
	c := pathutil.Canon(w.Root(), p)
	if err := pathutil.ValidatePathSafety(w.Root(), filepath.FromSlash(c)); err != nil {
		return arena.Str{}, err
	}
	return w.scratch.Strdup(c), nil
}

// buildPathList canonicalizes an ordered path sequence into the scratch
// arena, preserving input order. An empty sequence yields an empty list.
func (w *WorkingCopy) buildPathList(paths Paths) ([]arena.Str, error) {
	list := make([]arena.Str, 0, len(paths.elems))
	for _, p := range paths.elems {
		s, err := w.buildPath(p)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, nil
}
