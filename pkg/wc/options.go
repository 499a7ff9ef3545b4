package wc

// Paths names one working-copy path or an ordered sequence of paths. Use
// Path for a single path and PathList for many; operations preserve the
// order given.
type Paths struct {
	elems []string
}

// Path lifts a single path into a one-element Paths value.
func Path(p string) Paths {
	return Paths{elems: []string{p}}
}

// PathList builds an ordered Paths value. An empty list is valid and makes
// the operation a no-op.
func PathList(ps ...string) Paths {
	return Paths{elems: ps}
}

// Len returns the number of paths named.
func (p Paths) Len() int {
	return len(p.elems)
}

// OpenOptions configures working-copy open.
type OpenOptions struct {
	User string // overrides the configured user; informational
}

// CopyOptions configures a copy operation.
type CopyOptions struct {
	// Rev names the source revision. The empty string means the working
	// revision.
	Rev string
}

// MoveOptions configures a move operation.
type MoveOptions struct {
	Force bool // move despite local modifications
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Force bool // delete modified or unversioned items
}

// AddOptions configures an add operation. Recursion into directory contents
// is on by default.
type AddOptions struct {
	NoRecurse bool // do not descend into directory contents
	Force     bool // add the named path even if it matches an ignore pattern
	NoIgnore  bool // disable ignore-pattern filtering during recursion
}

func (o AddOptions) recurse() bool { return !o.NoRecurse }

// ResolveOptions configures a resolve operation. Recursion is on by default.
type ResolveOptions struct {
	NoRecurse bool
}

func (o ResolveOptions) recurse() bool { return !o.NoRecurse }

// RevertOptions configures a revert operation. Recursion is off by default.
type RevertOptions struct {
	Recurse bool // extend the revert to directory contents
}
