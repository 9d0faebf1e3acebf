package workflow

import (
	"log/slog"

	"github.com/flowther/workflow-extractor/pkg/analysis/rules"
	"github.com/flowther/workflow-extractor/pkg/models"
)

// EntryPoint is a state-mutating, externally reachable declaration selected
// for output. InheritedFrom and ConcreteScope are set only for entries
// surfaced through inheritance from an abstract scope.
type EntryPoint struct {
	Decl          *models.Declaration
	InheritedFrom string
	ConcreteScope *models.Scope
}

// Inherited reports whether the entry was surfaced through inheritance.
func (e EntryPoint) Inherited() bool { return e.InheritedFrom != "" }

// EntryPointAnalyzer selects and deduplicates entry points from the program
// model.
type EntryPointAnalyzer struct {
	logger *slog.Logger
	rules  *rules.Rules
}

// NewEntryPointAnalyzer creates a new entry point analyzer
func NewEntryPointAnalyzer(logger *slog.Logger, rules *rules.Rules) *EntryPointAnalyzer {
	return &EntryPointAnalyzer{logger: logger, rules: rules}
}

// IsStateChangingEntryPoint reports whether a declaration qualifies as a
// state-mutating entry point: implemented, not a synthetic state-variable
// initializer, not view/pure, and either a constructor/fallback/receive or
// publicly reachable.
func (e *EntryPointAnalyzer) IsStateChangingEntryPoint(decl *models.Declaration) bool {
	if decl == nil || !decl.Implemented {
		return false
	}
	if decl.SyntheticInitializer {
		return false
	}
	if decl.Mutability == models.MutabilityView || decl.Mutability == models.MutabilityPure {
		return false
	}
	switch decl.Kind {
	case models.KindConstructor, models.KindFallback, models.KindReceive:
		return true
	}
	return decl.Visibility == models.VisibilityPublic || decl.Visibility == models.VisibilityExternal
}

// Collect returns the entry points of the program: qualifying declarations
// of concrete scopes, plus qualifying declarations that concrete scopes
// inherit unmodified from their direct abstract parents. Declarations are
// deduplicated by canonical identity, first occurrence wins.
func (e *EntryPointAnalyzer) Collect(program *models.Program, excludeDependencies bool) []EntryPoint {
	abstractScopes := make(map[string]bool)
	var concreteScopes []*models.Scope
	for _, scope := range program.Scopes {
		if scope == nil {
			continue
		}
		if excludeDependencies && e.rules.Classifier.IsDependencyScope(scope) {
			continue
		}
		if scope.IsAbstract() {
			abstractScopes[scope.Name] = true
		} else if !scope.IsInterface() {
			concreteScopes = append(concreteScopes, scope)
		}
	}

	var entries []EntryPoint

	// Direct entries. Declarations owned by abstract scopes are excluded
	// here; they surface only via inheritance below.
	seen := make(map[string]bool)
	for _, decl := range program.Declarations {
		if decl == nil || decl.Scope == nil || decl.CanonicalID == "" {
			continue
		}
		if seen[decl.CanonicalID] {
			continue
		}
		seen[decl.CanonicalID] = true

		if excludeDependencies && e.rules.Classifier.IsDependencyDeclaration(decl) {
			continue
		}
		if !e.IsStateChangingEntryPoint(decl) {
			continue
		}
		if abstractScopes[decl.Scope.Name] {
			continue
		}
		entries = append(entries, EntryPoint{Decl: decl})
	}

	// Inherited entries: qualifying declarations of direct abstract parents
	// that the concrete scope does not override.
	for _, concrete := range concreteScopes {
		for _, parent := range concrete.Parents {
			if parent == nil || !abstractScopes[parent.Name] {
				continue
			}
			for _, decl := range parent.Declared {
				if !e.IsStateChangingEntryPoint(decl) {
					continue
				}
				if e.overrides(concrete, decl) {
					continue
				}
				if excludeDependencies && e.rules.Classifier.IsDependencyDeclaration(decl) {
					continue
				}
				entries = append(entries, EntryPoint{
					Decl:          decl,
					InheritedFrom: parent.Name,
					ConcreteScope: concrete,
				})
			}
		}
	}

	return entries
}

// overrides reports whether scope directly declares a declaration with the
// same full signature, or same name when no signature is available.
func (e *EntryPointAnalyzer) overrides(scope *models.Scope, decl *models.Declaration) bool {
	name := decl.Signature
	if name == "" {
		name = decl.Name
	}
	for _, own := range scope.Declared {
		if own == nil {
			continue
		}
		ownName := own.Signature
		if ownName == "" {
			ownName = own.Name
		}
		if ownName == name {
			return true
		}
	}
	return false
}
