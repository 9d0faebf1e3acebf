package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowther/workflow-extractor/pkg/models"
)

const sampleDocument = `{
  "version": 1,
  "scopes": [
    {"name": "Base", "kind": "abstract", "source": {"relative": "contracts/Base.sol", "lines": [1]}},
    {"name": "Vault", "kind": "concrete", "parents": ["Base", "Missing"], "fullyImplemented": true,
     "source": {"relative": "contracts/Vault.sol", "start": 0, "lines": [3]}}
  ],
  "declarations": [
    {"id": "Base.guard()", "name": "guard", "signature": "guard()", "scope": "Base",
     "implemented": true, "kind": "modifier"},
    {"id": "Vault.deposit()", "name": "deposit", "signature": "deposit()", "scope": "Vault",
     "implemented": true, "mutability": "mutating", "visibility": "public",
     "modifiers": ["Base.guard()", "Nope.gone()"],
     "calls": [
       {"kind": "internal", "target": {"declaration": "Vault._credit()"}, "seq": 0,
        "source": {"relative": "contracts/Vault.sol", "start": 120, "lines": [7]}},
       {"kind": "solidity", "target": {"builtin": "keccak256(bytes)"}, "seq": 1},
       {"kind": "lowlevel", "target": {"variable": "hook"}, "seq": 2},
       {"kind": "internal", "target": {"declaration": "Gone.away()"}, "seq": 3},
       {"kind": "internal", "seq": 4}
     ],
     "source": {"relative": "contracts/Vault.sol", "start": 100, "lines": [6]}},
    {"id": "Vault._credit()", "name": "_credit", "scope": "Vault", "implemented": true,
     "visibility": "private"}
  ]
}`

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version": 2}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 2")

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeAndLink(t *testing.T) {
	doc, err := Decode([]byte(sampleDocument))
	require.NoError(t, err)
	program := doc.Link()

	require.Len(t, program.Scopes, 2)
	base, vault := program.Scopes[0], program.Scopes[1]
	assert.Equal(t, models.ScopeAbstract, base.Kind)
	assert.Equal(t, models.ScopeConcrete, vault.Kind)
	assert.True(t, vault.FullyImplemented)

	// Inheritance edges, with the derived back-reference; the dangling
	// parent name is dropped.
	require.Len(t, vault.Parents, 1)
	assert.Same(t, base, vault.Parents[0])
	require.Len(t, base.Derived, 1)
	assert.Same(t, vault, base.Derived[0])

	deposit := program.ByCanonicalID["Vault.deposit()"]
	require.NotNil(t, deposit)
	assert.Same(t, vault, deposit.Scope)
	assert.Contains(t, vault.Declared, deposit)
	assert.Equal(t, models.MutabilityMutating, deposit.Mutability)
	assert.Equal(t, models.VisibilityPublic, deposit.Visibility)

	// Modifier refs resolve by identity; the dangling one is dropped.
	require.Len(t, deposit.Modifiers, 1)
	assert.Same(t, program.ByCanonicalID["Base.guard()"], deposit.Modifiers[0])
	assert.Equal(t, models.KindModifier, deposit.Modifiers[0].Kind)

	require.Len(t, deposit.Operations, 5)
	declCall := deposit.Operations[0]
	require.IsType(t, &models.DeclarationTarget{}, declCall.Target)
	assert.Same(t, program.ByCanonicalID["Vault._credit()"], declCall.Target.(*models.DeclarationTarget).Decl)
	require.NotNil(t, declCall.Source)
	assert.Equal(t, 120, declCall.Source.ByteOffset)

	assert.Equal(t, &models.BuiltinTarget{Name: "keccak256(bytes)"}, deposit.Operations[1].Target)
	assert.Equal(t, &models.VariableTarget{Name: "hook"}, deposit.Operations[2].Target)
	assert.Nil(t, deposit.Operations[3].Target, "dangling declaration ref resolves to no target")
	assert.Nil(t, deposit.Operations[4].Target)
}

func TestLinkDefaults(t *testing.T) {
	doc, err := Decode([]byte(`{
      "version": 1,
      "scopes": [{"name": "C"}],
      "declarations": [{"id": "C.f()", "name": "f", "scope": "C", "implemented": true}]
    }`))
	require.NoError(t, err)
	program := doc.Link()

	require.Len(t, program.Scopes, 1)
	assert.Equal(t, models.ScopeConcrete, program.Scopes[0].Kind)
	assert.Nil(t, program.Scopes[0].Source)

	decl := program.ByCanonicalID["C.f()"]
	require.NotNil(t, decl)
	assert.Equal(t, models.MutabilityMutating, decl.Mutability)
	assert.Equal(t, models.KindRegular, decl.Kind)
	assert.Equal(t, models.VisibilityInternal, decl.Visibility)
	assert.Nil(t, decl.Source)
}

func TestLinkDuplicateIdentitiesKeepFirst(t *testing.T) {
	doc, err := Decode([]byte(`{
      "version": 1,
      "scopes": [
        {"name": "C", "kind": "concrete"},
        {"name": "C", "kind": "interface"}
      ],
      "declarations": [
        {"id": "C.f()", "name": "f", "scope": "C", "implemented": true},
        {"id": "C.f()", "name": "f", "scope": "C", "implemented": false}
      ]
    }`))
	require.NoError(t, err)
	program := doc.Link()

	require.Len(t, program.Scopes, 1)
	assert.Equal(t, models.ScopeConcrete, program.Scopes[0].Kind, "first scope record wins")

	// Both declaration records become graph nodes, but the identity index
	// keeps the first.
	require.Len(t, program.Declarations, 2)
	assert.True(t, program.ByCanonicalID["C.f()"].Implemented)
}

func TestLinkSourceOffsetDefaultsToUnknown(t *testing.T) {
	doc, err := Decode([]byte(`{
      "version": 1,
      "scopes": [],
      "declarations": [
        {"id": "C.f()", "name": "f", "implemented": true,
         "source": {"relative": "contracts/C.sol", "lines": [5, 6]}}
      ]
    }`))
	require.NoError(t, err)
	program := doc.Link()

	decl := program.ByCanonicalID["C.f()"]
	require.NotNil(t, decl)
	require.NotNil(t, decl.Source)
	assert.False(t, decl.Source.HasOffset())
	line, ok := decl.Source.FirstLine()
	require.True(t, ok)
	assert.Equal(t, 5, line)
	assert.Nil(t, decl.Scope, "unknown scope name leaves the declaration detached")
}
