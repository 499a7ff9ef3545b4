package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcs-project/wcs/internal/repo"
	"github.com/wcs-project/wcs/pkg/config"
	"github.com/wcs-project/wcs/pkg/model"
)

// Detect returns the engine type best suited to the given root: git when a
// .git directory is present at or above it, native otherwise. A .wcs/
// control area found first wins.
func Detect(root string) model.EngineType {
	dir := root
	for {
		if info, err := os.Stat(filepath.Join(dir, repo.ControlDirName)); err == nil && info.IsDir() {
			return model.EngineNative
		}
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return model.EngineGit
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return model.EngineNative
		}
		dir = parent
	}
}

// NewSession creates a session for the working copy at root, honoring the
// configured engine selection ("auto" detects).
func NewSession(root string, cfg *config.Config) (Session, error) {
	engineType := model.EngineType(cfg.Engine)
	if cfg.Engine == "" || cfg.Engine == "auto" {
		engineType = Detect(root)
	}

	switch engineType {
	case model.EngineGit:
		return NewGitSession(root)
	case model.EngineNative:
		return NewNativeSession(root, cfg)
	default:
		return nil, fmt.Errorf("unknown engine type: %s", cfg.Engine)
	}
}
