package models

// ScopeKind classifies a contract-like container.
type ScopeKind string

const (
	ScopeConcrete  ScopeKind = "concrete"
	ScopeAbstract  ScopeKind = "abstract"
	ScopeInterface ScopeKind = "interface"
)

// Mutability classifies state access of a declaration.
type Mutability string

const (
	MutabilityMutating Mutability = "mutating"
	MutabilityView     Mutability = "view"
	MutabilityPure     Mutability = "pure"
)

// DeclarationKind is the lifecycle kind of a declaration.
type DeclarationKind string

const (
	KindRegular     DeclarationKind = "regular"
	KindConstructor DeclarationKind = "constructor"
	KindFallback    DeclarationKind = "fallback"
	KindReceive     DeclarationKind = "receive"
	KindModifier    DeclarationKind = "modifier"
)

// Visibility classifies who may call a declaration.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityExternal Visibility = "external"
	VisibilityInternal Visibility = "internal"
	VisibilityPrivate  Visibility = "private"
)

// OperationKind is the intermediate-representation kind of a body call.
type OperationKind string

const (
	OpInternal  OperationKind = "internal"
	OpLibrary   OperationKind = "library"
	OpHighLevel OperationKind = "highlevel"
	OpLowLevel  OperationKind = "lowlevel"
	OpSolidity  OperationKind = "solidity"
)

// SourceMapping carries the raw source position the front end computed for an
// entity. Empty strings / nil slices mean "not present"; consumers must treat
// absence as a first-class case rather than an error.
type SourceMapping struct {
	AbsolutePath string
	RelativePath string
	// ByteOffset is the start offset of the mapped range; negative means unknown.
	ByteOffset int
	// Lines are the 1-based source lines covered by the mapped range.
	Lines []int
	// Dependency is set when the front end already classified the origin file
	// as vendored/external code.
	Dependency bool
}

// HasOffset reports whether the mapping carries a usable byte offset.
func (s *SourceMapping) HasOffset() bool {
	return s != nil && s.ByteOffset >= 0
}

// FirstLine returns the first covered 1-based line and whether one exists.
func (s *SourceMapping) FirstLine() (int, bool) {
	if s == nil || len(s.Lines) == 0 {
		return 0, false
	}
	return s.Lines[0], true
}

// Scope is a contract-like container of declarations.
type Scope struct {
	Name string
	Kind ScopeKind
	// Parents is the ordered direct inheritance list.
	Parents []*Scope
	// Declared holds the declarations declared directly on this scope.
	Declared []*Declaration
	// Derived holds scopes that directly inherit from this one.
	Derived          []*Scope
	FullyImplemented bool
	Source           *SourceMapping
}

// IsInterface reports whether the scope is an interface.
func (s *Scope) IsInterface() bool { return s != nil && s.Kind == ScopeInterface }

// IsAbstract reports whether the scope is abstract.
func (s *Scope) IsAbstract() bool { return s != nil && s.Kind == ScopeAbstract }

// Declaration is one function-like unit of the program model.
type Declaration struct {
	// CanonicalID is the globally unique identity of the declaration; empty
	// means the front end could not assign one.
	CanonicalID string
	Name        string
	// Signature is the full signature ("name(type,...)"); may be empty.
	Signature   string
	Implemented bool
	// SyntheticInitializer marks the front end's synthetic state-variable
	// initializer pseudo-functions.
	SyntheticInitializer bool
	Mutability           Mutability
	Kind                 DeclarationKind
	Visibility           Visibility
	// Scope is the owning scope; may be nil for free-standing declarations.
	Scope *Scope
	// Modifiers are the attached modifier targets in declaration order. A
	// modifier entry whose Kind is constructor models a base-constructor
	// invocation written in modifier position.
	Modifiers []*Declaration
	// BaseInitializers are explicit base-constructor calls on the declaration.
	BaseInitializers []*Declaration
	// Operations are the body call operations in front-end order.
	Operations []*Operation
	// OverriddenBy lists declarations overriding this one. Well-formed input
	// is acyclic; traversal must still carry a seen-set.
	OverriddenBy []*Declaration
	Source       *SourceMapping
}

// Operation is a single call expression inside a declaration body.
type Operation struct {
	Kind OperationKind
	// ModifierInvocation marks calls the front end already surfaced through
	// the declaration's modifier list.
	ModifierInvocation bool
	// Target is the callee; nil means the front end could not resolve one.
	Target CallTarget
	// Seq is a per-statement stable sequence number used to break position
	// ties deterministically.
	Seq    int
	Source *SourceMapping
}

// CallTarget is the closed set of things a call operation may point at.
type CallTarget interface {
	// TargetName is the display name of the callee, empty when unknown.
	TargetName() string

	callTarget()
}

// DeclarationTarget points at a declaration in the program model.
type DeclarationTarget struct {
	Decl *Declaration
}

func (t *DeclarationTarget) TargetName() string {
	if t.Decl == nil {
		return ""
	}
	return t.Decl.Name
}
func (*DeclarationTarget) callTarget() {}

// BuiltinTarget points at a language built-in (require, keccak256, ...).
type BuiltinTarget struct {
	Name string
}

func (t *BuiltinTarget) TargetName() string { return t.Name }
func (*BuiltinTarget) callTarget()          {}

// VariableTarget points at a variable used in call position, typically a
// function-typed variable or a state variable getter.
type VariableTarget struct {
	Name string
}

func (t *VariableTarget) TargetName() string { return t.Name }
func (*VariableTarget) callTarget()          {}

// Program is the fully linked program model for one analysis run. It is
// read-only once built; all derived structures are computed from it.
type Program struct {
	Scopes       []*Scope
	Declarations []*Declaration

	// ByCanonicalID indexes declarations by canonical identity; when the
	// front end emits duplicate identities the first occurrence wins.
	ByCanonicalID map[string]*Declaration
}
