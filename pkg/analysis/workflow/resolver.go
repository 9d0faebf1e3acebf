package workflow

import (
	"log/slog"
	"sort"

	"github.com/flowther/workflow-extractor/pkg/analysis/rules"
	"github.com/flowther/workflow-extractor/pkg/models"
)

// Resolver maps abstract/interface-declared declarations to the concrete
// implementation that should represent them in output.
type Resolver struct {
	logger *slog.Logger
	rules  *rules.Rules
}

// NewResolver creates a new declaration resolver
func NewResolver(logger *slog.Logger, rules *rules.Rules) *Resolver {
	return &Resolver{logger: logger, rules: rules}
}

// Resolve returns the declaration that should represent decl. Declarations
// that already have a body and live in a concrete scope are returned
// unchanged. Otherwise the implemented override with the highest score wins;
// when no implemented override exists the input is returned unchanged, which
// signals "no concrete override available" rather than an error.
func (r *Resolver) Resolve(decl *models.Declaration, excludeDependencies bool) *models.Declaration {
	if decl == nil || decl.CanonicalID == "" {
		return decl
	}

	declaredInInterface := decl.Scope.IsInterface()
	declaredInAbstract := decl.Scope.IsAbstract()
	if decl.Implemented && !declaredInInterface && !declaredInAbstract {
		return decl
	}

	var impls []*models.Declaration
	seen := make(map[string]bool)
	for _, override := range r.collectOverriding(decl) {
		if !override.Implemented {
			continue
		}
		impls = append(impls, override)
		seen[override.CanonicalID] = true
	}

	// Interface declarations may lack override edges entirely; scan the
	// scopes deriving from the declaring interface for a matching
	// implemented declaration instead.
	if declaredInInterface && decl.Scope != nil {
		for _, derived := range collectDerivedScopes(decl.Scope) {
			if derived.IsInterface() {
				continue
			}
			for _, candidate := range derived.Declared {
				if candidate == nil || !candidate.Implemented {
					continue
				}
				if !signatureMatches(decl, candidate) {
					continue
				}
				if candidate.CanonicalID != "" && seen[candidate.CanonicalID] {
					continue
				}
				impls = append(impls, candidate)
				if candidate.CanonicalID != "" {
					seen[candidate.CanonicalID] = true
				}
			}
		}
	}

	if len(impls) == 0 {
		return decl
	}

	if excludeDependencies {
		var nonDep []*models.Declaration
		for _, impl := range impls {
			if !r.rules.Classifier.IsDependencyDeclaration(impl) {
				nonDep = append(nonDep, impl)
			}
		}
		if len(nonDep) > 0 {
			impls = nonDep
		}
	}

	sort.SliceStable(impls, func(i, j int) bool {
		si, sj := r.score(impls[i]), r.score(impls[j])
		if si != sj {
			return si > sj
		}
		// Equal scores fall back to descending canonical identity. The
		// editor side keys on this ordering; do not flip it.
		return impls[i].CanonicalID > impls[j].CanonicalID
	})
	return impls[0]
}

// collectOverriding returns the transitive closure of override edges in
// breadth-first order. Override graphs are acyclic in well-formed input but
// the seen-set also defends against malformed cyclic edges.
func (r *Resolver) collectOverriding(decl *models.Declaration) []*models.Declaration {
	seen := map[string]bool{decl.CanonicalID: true}
	var out []*models.Declaration

	queue := make([]*models.Declaration, 0, len(decl.OverriddenBy))
	queue = append(queue, decl.OverriddenBy...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil || next.CanonicalID == "" {
			continue
		}
		if seen[next.CanonicalID] {
			continue
		}
		seen[next.CanonicalID] = true
		out = append(out, next)
		queue = append(queue, next.OverriddenBy...)
	}
	return out
}

func (r *Resolver) score(decl *models.Declaration) int {
	score := 0
	if scope := decl.Scope; scope != nil {
		if !scope.IsInterface() {
			score += 10
		}
		if !scope.IsAbstract() {
			score += 5
		}
		if scope.FullyImplemented {
			score += 2
		}
	}
	if !r.rules.Classifier.IsDependencyDeclaration(decl) {
		score += 3
	}
	return score
}

// signatureMatches prefers full-signature equality and falls back to the
// plain name when the candidate carries no signature.
func signatureMatches(decl, candidate *models.Declaration) bool {
	if candidate.Signature == decl.Signature {
		return true
	}
	return candidate.Signature == "" && candidate.Name == decl.Name
}

// collectDerivedScopes returns every scope that directly or transitively
// derives from root, guarded against malformed cyclic inheritance.
func collectDerivedScopes(root *models.Scope) []*models.Scope {
	seen := map[string]bool{root.Name: true}
	var out []*models.Scope

	queue := append([]*models.Scope{}, root.Derived...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil || seen[next.Name] {
			continue
		}
		seen[next.Name] = true
		out = append(out, next)
		queue = append(queue, next.Derived...)
	}
	return out
}
