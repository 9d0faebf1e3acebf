package rules

import (
	"strings"

	"github.com/flowther/workflow-extractor/pkg/config"
	"github.com/flowther/workflow-extractor/pkg/models"
)

// Classifier decides whether program-model entities belong to vendored or
// otherwise excluded code. Entities classified as dependencies are hidden
// from output by default.
type Classifier struct {
	cfg *config.Config
}

// NewClassifier creates a new classifier with the given configuration
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// IsDependencySource reports whether a source mapping belongs to vendored
// code, either by the front end's explicit flag or by path heuristics.
func (c *Classifier) IsDependencySource(src *models.SourceMapping) bool {
	if src == nil {
		return false
	}
	if src.Dependency {
		return true
	}
	filename := src.RelativePath
	if filename == "" {
		filename = src.AbsolutePath
	}
	if filename == "" {
		return false
	}
	parts := strings.Split(strings.ReplaceAll(filename, "\\", "/"), "/")
	for _, part := range parts {
		if c.cfg.IsExcludedDir(part) {
			return true
		}
	}
	return false
}

// IsDependencyDeclaration reports whether a declaration is vendored code.
func (c *Classifier) IsDependencyDeclaration(decl *models.Declaration) bool {
	return decl != nil && c.IsDependencySource(decl.Source)
}

// IsDependencyScope reports whether a scope is vendored code.
func (c *Classifier) IsDependencyScope(scope *models.Scope) bool {
	return scope != nil && c.IsDependencySource(scope.Source)
}
