// Package arena provides bump-style allocation scopes with explicit,
// deterministic release. All values obtained from an arena are invalidated
// together when Clear is called; using a value after its arena was cleared
// is a programming error and panics.
package arena

import "fmt"

// Arena is a scoped allocation context. The zero value is not usable; use New.
// An Arena is not safe for concurrent use.
type Arena struct {
	buf    []byte
	gen    uint32
	closed bool
}

// New creates an empty arena.
func New() *Arena {
	return &Arena{}
}

// Strdup copies s into the arena and returns a reference scoped to the
// arena's current generation.
func (a *Arena) Strdup(s string) Str {
	if a.closed {
		panic("arena: allocation from closed arena")
	}
	off := len(a.buf)
	a.buf = append(a.buf, s...)
	return Str{a: a, gen: a.gen, off: off, n: len(s)}
}

// Clear invalidates all prior allocations and reclaims their space. The
// underlying buffer is retained for reuse. Safe to call repeatedly.
func (a *Arena) Clear() {
	a.buf = a.buf[:0]
	a.gen++
}

// Close clears the arena and releases its buffer. Any further allocation
// panics.
func (a *Arena) Close() {
	a.Clear()
	a.buf = nil
	a.closed = true
}

// Len reports the number of bytes currently allocated.
func (a *Arena) Len() int {
	return len(a.buf)
}

// Str is a string value allocated from an Arena. It stays valid until the
// arena's next Clear or Close.
type Str struct {
	a      *Arena
	gen    uint32
	off, n int
}

// String returns the value. It panics with E_ARENA_CLEARED if the owning
// arena was cleared since the allocation.
func (s Str) String() string {
	if s.a == nil {
		panic("arena: zero Str")
	}
	if s.gen != s.a.gen || s.a.closed {
		panic(fmt.Sprintf("arena: E_ARENA_CLEARED: value used after clear (gen %d, arena gen %d)", s.gen, s.a.gen))
	}
	return string(s.a.buf[s.off : s.off+s.n])
}

// Valid reports whether the value can still be read.
func (s Str) Valid() bool {
	return s.a != nil && !s.a.closed && s.gen == s.a.gen
}
