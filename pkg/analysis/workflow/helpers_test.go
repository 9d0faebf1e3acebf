package workflow

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowther/workflow-extractor/pkg/analysis/rules"
	"github.com/flowther/workflow-extractor/pkg/config"
	"github.com/flowther/workflow-extractor/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.DefaultConfig()
	require.NoError(t, err)
	return cfg
}

func testRules(t *testing.T) *rules.Rules {
	t.Helper()
	return rules.NewRules(testConfig(t))
}

// newScope builds a scope with a project-local source file.
func newScope(name string, kind models.ScopeKind) *models.Scope {
	return &models.Scope{
		Name:   name,
		Kind:   kind,
		Source: &models.SourceMapping{RelativePath: "contracts/" + name + ".sol", ByteOffset: -1, Lines: []int{1}},
	}
}

// inherit records scope deriving from parent, maintaining both directions.
func inherit(scope, parent *models.Scope) {
	scope.Parents = append(scope.Parents, parent)
	parent.Derived = append(parent.Derived, scope)
}

// newFn builds an implemented, public, mutating function declared on scope.
func newFn(scope *models.Scope, canonical, name string, line int) *models.Declaration {
	decl := &models.Declaration{
		CanonicalID: canonical,
		Name:        name,
		Signature:   name + "()",
		Implemented: true,
		Mutability:  models.MutabilityMutating,
		Kind:        models.KindRegular,
		Visibility:  models.VisibilityPublic,
		Scope:       scope,
	}
	if scope != nil {
		decl.Source = &models.SourceMapping{RelativePath: scope.Source.RelativePath, ByteOffset: -1, Lines: []int{line}}
		scope.Declared = append(scope.Declared, decl)
	}
	return decl
}

// callOp builds a body call operation at the given byte offset.
func callOp(kind models.OperationKind, target models.CallTarget, offset, seq int) *models.Operation {
	return &models.Operation{
		Kind:   kind,
		Target: target,
		Seq:    seq,
		Source: &models.SourceMapping{RelativePath: "contracts/call.sol", ByteOffset: offset, Lines: []int{1}},
	}
}

func declTarget(decl *models.Declaration) models.CallTarget {
	return &models.DeclarationTarget{Decl: decl}
}
