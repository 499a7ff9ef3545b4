// Package repo manages the .wcs/ control area of a native working copy:
// creation, discovery, the entries table, and the pristine content store.
package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcs-project/wcs/pkg/errclass"
	"github.com/wcs-project/wcs/pkg/fsutil"
	"github.com/wcs-project/wcs/pkg/model"
)

const (
	FormatVersion     = 1
	ControlDirName    = ".wcs"
	FormatVersionFile = "format_version"
	EntriesFile       = "entries.json"
	PristineDirName   = "pristine"
)

// WC represents an initialized native working copy.
type WC struct {
	Root          string
	FormatVersion int
}

// Init creates the control area for a new working copy at path.
func Init(path string) (*WC, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	ctlDir := filepath.Join(abs, ControlDirName)
	if err := os.MkdirAll(filepath.Join(ctlDir, PristineDirName), 0755); err != nil {
		return nil, fmt.Errorf("create control directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(ctlDir, FormatVersionFile), []byte("1\n"), 0644); err != nil {
		return nil, fmt.Errorf("write format_version: %w", err)
	}

	if err := SaveEntries(abs, nil); err != nil {
		return nil, fmt.Errorf("write entries: %w", err)
	}

	if err := fsutil.FsyncDir(abs); err != nil {
		return nil, fmt.Errorf("fsync working-copy root: %w", err)
	}

	return &WC{Root: abs, FormatVersion: FormatVersion}, nil
}

// Discover walks up from dir to find the working-copy root (the directory
// containing .wcs/).
func Discover(dir string) (*WC, error) {
	path, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	for {
		ctlDir := filepath.Join(path, ControlDirName)
		if info, err := os.Stat(ctlDir); err == nil && info.IsDir() {
			return &WC{Root: path, FormatVersion: FormatVersion}, nil
		}

		parent := filepath.Dir(path)
		if parent == path {
			return nil, errclass.ErrNotWorkingCopy.WithMessagef(
				"no working copy found at or above %s", dir)
		}
		path = parent
	}
}

// EntriesPath returns the location of the entries table.
func EntriesPath(root string) string {
	return filepath.Join(root, ControlDirName, EntriesFile)
}

// LoadEntries reads the entries table, keyed by root-relative path.
func LoadEntries(root string) (map[string]*model.Entry, error) {
	data, err := os.ReadFile(EntriesPath(root))
	if os.IsNotExist(err) {
		return map[string]*model.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	var list []*model.Entry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse entries: %w", err)
	}

	entries := make(map[string]*model.Entry, len(list))
	for _, e := range list {
		entries[e.Path] = e
	}
	return entries, nil
}

// SaveEntries atomically writes the entries table in stable path order.
func SaveEntries(root string, entries map[string]*model.Entry) error {
	list := make([]*model.Entry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Path < list[j].Path })

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}
	return fsutil.AtomicWrite(EntriesPath(root), data, 0644)
}

// PristinePath returns the pristine-store location for a root-relative path.
func PristinePath(root, relPath string) string {
	return filepath.Join(root, ControlDirName, PristineDirName, filepath.FromSlash(relPath))
}
