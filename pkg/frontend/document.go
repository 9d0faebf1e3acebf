package frontend

import (
	"encoding/json"
	"fmt"

	"github.com/flowther/workflow-extractor/pkg/models"
)

// DocumentVersion is the program-model document version this decoder
// understands.
const DocumentVersion = 1

// Document is the program-model export produced by the analysis front end.
// All cross-references are by canonical declaration identity or scope name;
// Link resolves them into an in-memory object graph.
type Document struct {
	Version      int                 `json:"version"`
	Scopes       []ScopeRecord       `json:"scopes"`
	Declarations []DeclarationRecord `json:"declarations"`
}

// SourceRecord is a raw source position.
type SourceRecord struct {
	Absolute   string `json:"absolute,omitempty"`
	Relative   string `json:"relative,omitempty"`
	Start      *int   `json:"start,omitempty"`
	Lines      []int  `json:"lines,omitempty"`
	Dependency bool   `json:"isDependency,omitempty"`
}

// ScopeRecord describes one contract-like container.
type ScopeRecord struct {
	Name             string        `json:"name"`
	Kind             string        `json:"kind"`
	Parents          []string      `json:"parents,omitempty"`
	FullyImplemented bool          `json:"fullyImplemented,omitempty"`
	Source           *SourceRecord `json:"source,omitempty"`
}

// DeclarationRecord describes one function-like unit.
type DeclarationRecord struct {
	ID                   string            `json:"id,omitempty"`
	Name                 string            `json:"name"`
	Signature            string            `json:"signature,omitempty"`
	Scope                string            `json:"scope,omitempty"`
	Implemented          bool              `json:"implemented"`
	SyntheticInitializer bool              `json:"syntheticInitializer,omitempty"`
	Mutability           string            `json:"mutability,omitempty"`
	Kind                 string            `json:"kind,omitempty"`
	Visibility           string            `json:"visibility,omitempty"`
	Modifiers            []string          `json:"modifiers,omitempty"`
	BaseInitializers     []string          `json:"baseInitializers,omitempty"`
	OverriddenBy         []string          `json:"overriddenBy,omitempty"`
	Calls                []OperationRecord `json:"calls,omitempty"`
	Source               *SourceRecord     `json:"source,omitempty"`
}

// OperationRecord describes one body call operation.
type OperationRecord struct {
	Kind               string        `json:"kind,omitempty"`
	ModifierInvocation bool          `json:"modifierInvocation,omitempty"`
	Target             *TargetRecord `json:"target,omitempty"`
	Seq                int           `json:"seq,omitempty"`
	Source             *SourceRecord `json:"source,omitempty"`
}

// TargetRecord is the callee of an operation; exactly one field is set, or
// none when the front end could not resolve a target.
type TargetRecord struct {
	Declaration string `json:"declaration,omitempty"`
	Builtin     string `json:"builtin,omitempty"`
	Variable    string `json:"variable,omitempty"`
}

// Decode parses a program-model document from JSON bytes.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode program-model document: %w", err)
	}
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("unsupported program-model document version %d (want %d)", doc.Version, DocumentVersion)
	}
	return &doc, nil
}

// Link resolves the document's name/identity references into a read-only
// object graph. Duplicate identities keep the first occurrence; dangling
// references resolve to "none" rather than failing, since the model is
// allowed to be incomplete.
func (d *Document) Link() *models.Program {
	program := &models.Program{
		ByCanonicalID: make(map[string]*models.Declaration),
	}

	scopesByName := make(map[string]*models.Scope, len(d.Scopes))
	for _, record := range d.Scopes {
		if record.Name == "" || scopesByName[record.Name] != nil {
			continue
		}
		scope := &models.Scope{
			Name:             record.Name,
			Kind:             parseScopeKind(record.Kind),
			FullyImplemented: record.FullyImplemented,
			Source:           record.Source.toModel(),
		}
		scopesByName[record.Name] = scope
		program.Scopes = append(program.Scopes, scope)
	}

	// Inheritance edges plus the derived back-references. Duplicate scope
	// records are linked once.
	linked := make(map[string]bool, len(d.Scopes))
	for _, record := range d.Scopes {
		scope := scopesByName[record.Name]
		if scope == nil || linked[record.Name] {
			continue
		}
		linked[record.Name] = true
		for _, parentName := range record.Parents {
			parent := scopesByName[parentName]
			if parent == nil {
				continue
			}
			scope.Parents = append(scope.Parents, parent)
			parent.Derived = append(parent.Derived, scope)
		}
	}

	declarations := make([]*models.Declaration, len(d.Declarations))
	for i, record := range d.Declarations {
		decl := &models.Declaration{
			CanonicalID:          record.ID,
			Name:                 record.Name,
			Signature:            record.Signature,
			Implemented:          record.Implemented,
			SyntheticInitializer: record.SyntheticInitializer,
			Mutability:           parseMutability(record.Mutability),
			Kind:                 parseKind(record.Kind),
			Visibility:           parseVisibility(record.Visibility),
			Source:               record.Source.toModel(),
		}
		declarations[i] = decl
		program.Declarations = append(program.Declarations, decl)
		if decl.CanonicalID != "" && program.ByCanonicalID[decl.CanonicalID] == nil {
			program.ByCanonicalID[decl.CanonicalID] = decl
		}
		if scope := scopesByName[record.Scope]; scope != nil {
			decl.Scope = scope
			scope.Declared = append(scope.Declared, decl)
		}
	}

	// Second pass: declaration-to-declaration references.
	for i, record := range d.Declarations {
		decl := declarations[i]
		decl.Modifiers = resolveRefs(program.ByCanonicalID, record.Modifiers)
		decl.BaseInitializers = resolveRefs(program.ByCanonicalID, record.BaseInitializers)
		decl.OverriddenBy = resolveRefs(program.ByCanonicalID, record.OverriddenBy)
		for _, call := range record.Calls {
			decl.Operations = append(decl.Operations, &models.Operation{
				Kind:               parseOperationKind(call.Kind),
				ModifierInvocation: call.ModifierInvocation,
				Target:             call.Target.toModel(program.ByCanonicalID),
				Seq:                call.Seq,
				Source:             call.Source.toModel(),
			})
		}
	}

	return program
}

func (s *SourceRecord) toModel() *models.SourceMapping {
	if s == nil {
		return nil
	}
	offset := -1
	if s.Start != nil {
		offset = *s.Start
	}
	return &models.SourceMapping{
		AbsolutePath: s.Absolute,
		RelativePath: s.Relative,
		ByteOffset:   offset,
		Lines:        s.Lines,
		Dependency:   s.Dependency,
	}
}

func (t *TargetRecord) toModel(byID map[string]*models.Declaration) models.CallTarget {
	switch {
	case t == nil:
		return nil
	case t.Declaration != "":
		decl := byID[t.Declaration]
		if decl == nil {
			return nil
		}
		return &models.DeclarationTarget{Decl: decl}
	case t.Builtin != "":
		return &models.BuiltinTarget{Name: t.Builtin}
	case t.Variable != "":
		return &models.VariableTarget{Name: t.Variable}
	}
	return nil
}

func resolveRefs(byID map[string]*models.Declaration, ids []string) []*models.Declaration {
	var out []*models.Declaration
	for _, id := range ids {
		if decl := byID[id]; decl != nil {
			out = append(out, decl)
		}
	}
	return out
}

func parseScopeKind(kind string) models.ScopeKind {
	switch kind {
	case "abstract":
		return models.ScopeAbstract
	case "interface":
		return models.ScopeInterface
	}
	return models.ScopeConcrete
}

func parseMutability(mutability string) models.Mutability {
	switch mutability {
	case "view":
		return models.MutabilityView
	case "pure":
		return models.MutabilityPure
	}
	return models.MutabilityMutating
}

func parseKind(kind string) models.DeclarationKind {
	switch kind {
	case "constructor":
		return models.KindConstructor
	case "fallback":
		return models.KindFallback
	case "receive":
		return models.KindReceive
	case "modifier":
		return models.KindModifier
	}
	return models.KindRegular
}

func parseVisibility(visibility string) models.Visibility {
	switch visibility {
	case "public":
		return models.VisibilityPublic
	case "external":
		return models.VisibilityExternal
	case "private":
		return models.VisibilityPrivate
	}
	return models.VisibilityInternal
}

func parseOperationKind(kind string) models.OperationKind {
	switch kind {
	case "library":
		return models.OpLibrary
	case "highlevel":
		return models.OpHighLevel
	case "lowlevel":
		return models.OpLowLevel
	case "solidity":
		return models.OpSolidity
	}
	return models.OpInternal
}
