package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowther/workflow-extractor/pkg/models"
)

func TestResolveConcreteImplementedIsIdempotent(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	scope := newScope("Vault", models.ScopeConcrete)
	fn := newFn(scope, "Vault.deposit()", "deposit", 10)

	assert.Same(t, fn, resolver.Resolve(fn, true))
}

func TestResolveWithoutCanonicalIdentityIsUnchanged(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	fn := &models.Declaration{Name: "anonymous"}
	assert.Same(t, fn, resolver.Resolve(fn, true))
}

func TestResolveFollowsOverrideChainToConcrete(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	iface := newScope("IVault", models.ScopeInterface)
	abstract := newScope("BaseVault", models.ScopeAbstract)
	concrete := newScope("Vault", models.ScopeConcrete)

	f := newFn(iface, "IVault.f()", "f", 3)
	f.Implemented = false
	g := newFn(abstract, "BaseVault.f()", "f", 7)
	g.Implemented = false
	h := newFn(concrete, "Vault.f()", "f", 12)

	f.OverriddenBy = []*models.Declaration{g}
	g.OverriddenBy = []*models.Declaration{h}

	assert.Same(t, h, resolver.Resolve(f, true))
	assert.Same(t, h, resolver.Resolve(g, true))
}

func TestResolveSurvivesCyclicOverrideEdges(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	iface := newScope("IThing", models.ScopeInterface)
	abstract := newScope("Thing", models.ScopeAbstract)

	f := newFn(iface, "IThing.f()", "f", 1)
	f.Implemented = false
	g := newFn(abstract, "Thing.f()", "f", 2)
	g.Implemented = false

	// Malformed input: the override relation cycles back.
	f.OverriddenBy = []*models.Declaration{g}
	g.OverriddenBy = []*models.Declaration{f}

	assert.Same(t, f, resolver.Resolve(f, true), "no implemented override exists")
}

func TestResolveScansDerivedScopesForInterfaceDeclarations(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	iface := newScope("IToken", models.ScopeInterface)
	middle := newScope("ERC20Base", models.ScopeAbstract)
	concrete := newScope("Token", models.ScopeConcrete)
	otherIface := newScope("IToken2", models.ScopeInterface)
	inherit(middle, iface)
	inherit(concrete, middle)
	inherit(otherIface, iface)

	f := newFn(iface, "IToken.transfer()", "transfer", 4)
	f.Implemented = false
	impl := newFn(concrete, "Token.transfer()", "transfer", 20)
	// A matching declaration on a derived interface must not be picked up.
	ifaceDup := newFn(otherIface, "IToken2.transfer()", "transfer", 5)
	_ = ifaceDup

	assert.Same(t, impl, resolver.Resolve(f, true))
}

func TestResolveInterfaceScanFallsBackToNameMatch(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	iface := newScope("IOracle", models.ScopeInterface)
	concrete := newScope("Oracle", models.ScopeConcrete)
	inherit(concrete, iface)

	f := newFn(iface, "IOracle.poke()", "poke", 2)
	f.Implemented = false
	impl := newFn(concrete, "Oracle.poke()", "poke", 9)
	impl.Signature = "" // no signature available, name decides

	assert.Same(t, impl, resolver.Resolve(f, true))
}

func TestResolveScoringPrefersConcreteScopes(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	iface := newScope("IThing", models.ScopeInterface)
	abstract := newScope("AbstractThing", models.ScopeAbstract)
	concrete := newScope("ConcreteThing", models.ScopeConcrete)
	concrete.FullyImplemented = true

	f := newFn(iface, "IThing.run()", "run", 1)
	f.Implemented = false
	abstractImpl := newFn(abstract, "AbstractThing.run()", "run", 5)
	concreteImpl := newFn(concrete, "ConcreteThing.run()", "run", 9)

	f.OverriddenBy = []*models.Declaration{abstractImpl, concreteImpl}

	assert.Same(t, concreteImpl, resolver.Resolve(f, true))
}

func TestResolveTieBreaksByDescendingCanonicalIdentity(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	iface := newScope("IThing", models.ScopeInterface)
	scopeA := newScope("Alpha", models.ScopeConcrete)
	scopeB := newScope("Beta", models.ScopeConcrete)

	f := newFn(iface, "IThing.run()", "run", 1)
	f.Implemented = false
	implA := newFn(scopeA, "Alpha.run()", "run", 5)
	implB := newFn(scopeB, "Beta.run()", "run", 5)

	f.OverriddenBy = []*models.Declaration{implA, implB}

	// Equal scores: the textually greatest canonical identity wins.
	assert.Same(t, implB, resolver.Resolve(f, true))
}

func TestResolveDependencyHandling(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	newDepImpl := func(f *models.Declaration) *models.Declaration {
		depScope := newScope("DepImpl", models.ScopeConcrete)
		depScope.Source = &models.SourceMapping{RelativePath: "lib/dep/DepImpl.sol", ByteOffset: -1}
		impl := newFn(depScope, "DepImpl.run()", "run", 3)
		impl.Source = &models.SourceMapping{RelativePath: "lib/dep/DepImpl.sol", ByteOffset: -1, Lines: []int{3}}
		f.OverriddenBy = append(f.OverriddenBy, impl)
		return impl
	}

	t.Run("dependency dropped when a project candidate exists", func(t *testing.T) {
		iface := newScope("IRunner", models.ScopeInterface)
		f := newFn(iface, "IRunner.run()", "run", 1)
		f.Implemented = false
		depImpl := newDepImpl(f)
		// Give the dependency the better scope so only the exclusion rule
		// can explain the outcome.
		depImpl.Scope.FullyImplemented = true
		projectImpl := newFn(newScope("Runner", models.ScopeConcrete), "Runner.run()", "run", 8)
		f.OverriddenBy = append(f.OverriddenBy, projectImpl)

		assert.Same(t, projectImpl, resolver.Resolve(f, true))
	})

	t.Run("dependency kept when it is the only candidate", func(t *testing.T) {
		iface := newScope("IRunner", models.ScopeInterface)
		f := newFn(iface, "IRunner.run()", "run", 1)
		f.Implemented = false
		depImpl := newDepImpl(f)

		assert.Same(t, depImpl, resolver.Resolve(f, true))
	})
}

func TestResolveNoImplementedOverrideReturnsInput(t *testing.T) {
	resolver := NewResolver(testLogger(), testRules(t))

	abstract := newScope("Base", models.ScopeAbstract)
	f := newFn(abstract, "Base.f()", "f", 2)
	f.Implemented = false

	unimplemented := newFn(newScope("Derived", models.ScopeConcrete), "Derived.f()", "f", 6)
	unimplemented.Implemented = false
	f.OverriddenBy = []*models.Declaration{unimplemented}

	assert.Same(t, f, resolver.Resolve(f, true))
}
