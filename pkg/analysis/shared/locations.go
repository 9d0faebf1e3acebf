package shared

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowther/workflow-extractor/pkg/models"
)

// LocationResolver maps raw front-end source mappings to workspace-relative
// display locations.
type LocationResolver struct {
	logger        *slog.Logger
	workspaceRoot string
}

// NewLocationResolver creates a location resolver rooted at workspaceRoot.
// When workspaceRoot points at a file, its directory is used.
func NewLocationResolver(logger *slog.Logger, workspaceRoot string) *LocationResolver {
	return &LocationResolver{logger: logger, workspaceRoot: workspaceRoot}
}

// Resolve turns a source mapping into a display location. The file path is
// workspace-relative when the mapping falls under the workspace root,
// otherwise the front end's relative path, otherwise the absolute path.
// Returns nil when the mapping carries no usable path at all; callers omit
// such entities from output rather than failing the run.
func (r *LocationResolver) Resolve(src *models.SourceMapping) *models.Location {
	if src == nil {
		return nil
	}

	filename := ""
	if src.AbsolutePath != "" && filepath.IsAbs(src.AbsolutePath) {
		root := r.workspaceRoot
		if root != "" {
			if info, err := os.Stat(root); err == nil && !info.IsDir() {
				root = filepath.Dir(root)
			}
		}
		if root != "" {
			if rel, err := filepath.Rel(root, src.AbsolutePath); err == nil && !strings.HasPrefix(rel, "..") {
				filename = rel
			}
		}
	}
	if filename == "" {
		filename = src.RelativePath
	}
	if filename == "" {
		filename = src.AbsolutePath
	}
	if filename == "" {
		return nil
	}

	line, ok := src.FirstLine()
	if !ok {
		return &models.Location{File: filename, Line: 0, Character: 0}
	}
	line0 := line - 1
	if line0 < 0 {
		line0 = 0
	}
	return &models.Location{File: filename, Line: line0, Character: 0}
}
