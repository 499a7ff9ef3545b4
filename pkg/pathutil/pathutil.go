// Package pathutil provides path canonicalization and safety checks for WCS
// working copies.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/wcs-project/wcs/pkg/errclass"
)

// Canon builds the canonical form of a working-copy path: rel joined onto
// root (an absolute rel overrides root), cleaned of redundant separators and
// "."/".." segments, forward-slash separated, NFC normalized, and without a
// trailing separator. Canon is idempotent: feeding its result back in with
// the same root returns it unchanged.
func Canon(root, rel string) string {
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.ToSlash(filepath.Clean(p))
	return norm.NFC.String(p)
}

// Rel converts a canonical path back to a root-relative, forward-slash
// form. Returns "." for the root itself.
func Rel(root, canonical string) (string, error) {
	rel, err := filepath.Rel(filepath.FromSlash(root), filepath.FromSlash(canonical))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// ValidatePathSafety verifies target path does not escape the working-copy
// root, resolving symlinks where the target (or its closest existing
// ancestor) exists.
func ValidatePathSafety(root, targetPath string) error {
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return errclass.ErrPathEscape.WithMessagef("cannot resolve working-copy root: %v", err)
	}

	resolvedTarget, err := filepath.EvalSymlinks(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			resolvedTarget = resolveClosestAncestor(targetPath)
		} else {
			return errclass.ErrPathEscape.WithMessagef("cannot resolve target: %v", err)
		}
	}

	if !strings.HasPrefix(resolvedTarget+"/", resolvedRoot+"/") &&
		resolvedTarget != resolvedRoot {
		return errclass.ErrPathEscape.WithMessagef("path escapes working copy: %s", targetPath)
	}

	return nil
}

// resolveClosestAncestor walks up from path to find the closest existing
// ancestor, resolves it, then appends the remaining components.
func resolveClosestAncestor(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = resolveClosestAncestor(dir)
		} else {
			return filepath.Clean(path)
		}
	}
	return filepath.Join(resolved, base)
}
