// Package engine provides working-copy engines behind a single session
// interface. Two backends exist: the native schedule-based engine operating
// on a .wcs/ control area, and a git engine operating on an existing git
// checkout via go-git.
package engine

import (
	"github.com/wcs-project/wcs/internal/arena"
	"github.com/wcs-project/wcs/internal/revision"
	"github.com/wcs-project/wcs/pkg/model"
)

// AddFlags carries the recognized options of an add operation.
type AddFlags struct {
	Recurse  bool // descend into directory contents
	Force    bool // admit an explicitly named ignored path
	NoIgnore bool // disable ignore-pattern filtering during recursion
}

// Session is one authenticated, configured connection to a working-copy
// engine. A Session is created once per working-copy handle and reused for
// every operation. It is not safe for concurrent use.
//
// All path arguments are canonical absolute paths allocated from the
// caller's scratch arena; implementations must not retain them past the
// call.
type Session interface {
	// Engine returns the backend identifier.
	Engine() model.EngineType

	// Root returns the working-copy root the session operates on. It may
	// sit above the directory the session was opened from.
	Root() string

	// Copy copies src at the given revision to dst and schedules dst for
	// addition.
	Copy(src arena.Str, rev revision.Ref, dst arena.Str) error

	// Move moves src to dst. force permits moving despite local
	// modifications.
	Move(src, dst arena.Str, force bool) error

	// Delete schedules paths for deletion, in order. force permits deleting
	// modified or unversioned items. No atomicity across the list: paths
	// scheduled before a failure stay scheduled.
	Delete(paths []arena.Str, force bool) error

	// Add schedules path for addition.
	Add(path arena.Str, flags AddFlags) error

	// Resolve clears the recorded conflict on path.
	Resolve(path arena.Str, recurse bool) error

	// Revert restores paths to their last-known state, in order.
	Revert(paths []arena.Str, recurse bool) error

	// Close releases the session. The session is unusable afterward.
	Close() error
}
