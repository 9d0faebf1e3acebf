package workflow

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/flowther/workflow-extractor/pkg/config"
	"github.com/flowther/workflow-extractor/pkg/models"
)

// Display labels for call categories.
const (
	CallKindModifier        = "Modifier"
	CallKindBaseConstructor = "BaseConstructor"
	CallKindLibrary         = "Library"
	CallKindExternal        = "External"
	CallKindSolidity        = "Solidity"
	CallKindInternal        = "Internal"
)

// CallSite is one outgoing call of a declaration, in display order. Origin
// is the body operation the call came from; nil for calls surfaced from the
// modifier or base-initializer lists.
type CallSite struct {
	Kind   string
	Target models.CallTarget
	Origin *models.Operation
}

// Collector enumerates and orders a declaration's outgoing calls.
type Collector struct {
	logger *slog.Logger
	cfg    *config.Config
}

// NewCollector creates a new call-site collector
func NewCollector(logger *slog.Logger, cfg *config.Config) *Collector {
	return &Collector{logger: logger, cfg: cfg}
}

// Collect returns the declaration's outgoing calls in the order a reader
// should see them: attached modifiers first (base-constructor invocations
// surfaced as such and deduplicated), then explicit base-initializer calls,
// then body calls in source order.
func (c *Collector) Collect(decl *models.Declaration) []CallSite {
	if decl == nil {
		return nil
	}

	var sites []CallSite
	seenBaseCtors := make(map[string]bool)

	appendBaseCtor := func(ctor *models.Declaration) {
		key := ctor.CanonicalID
		if key == "" {
			key = fmt.Sprintf("%p", ctor)
		}
		if seenBaseCtors[key] {
			return
		}
		seenBaseCtors[key] = true
		sites = append(sites, CallSite{
			Kind:   CallKindBaseConstructor,
			Target: &models.DeclarationTarget{Decl: ctor},
		})
	}

	// Modifiers execute before the function body, so they come first. A
	// modifier entry whose target is a constructor is a base-constructor
	// invocation written in modifier position.
	for _, mod := range decl.Modifiers {
		if mod == nil {
			continue
		}
		if mod.Kind == models.KindConstructor {
			appendBaseCtor(mod)
			continue
		}
		sites = append(sites, CallSite{
			Kind:   CallKindModifier,
			Target: &models.DeclarationTarget{Decl: mod},
		})
	}

	for _, ctor := range decl.BaseInitializers {
		if ctor == nil {
			continue
		}
		appendBaseCtor(ctor)
	}

	c.collectBody(decl, &sites)
	return sites
}

// collectBody appends body calls in source order. A fault while walking the
// body keeps whatever was already collected; a partial result is preferred
// to none.
func (c *Collector) collectBody(decl *models.Declaration, sites *[]CallSite) {
	defer func() {
		if fault := recover(); fault != nil {
			c.logger.Debug("body walk faulted, keeping partial result",
				"declaration", decl.Name, "fault", fault)
		}
	}()

	ops := make([]*models.Operation, 0, len(decl.Operations))
	for _, op := range decl.Operations {
		if op != nil {
			ops = append(ops, op)
		}
	}
	sort.SliceStable(ops, func(i, j int) bool {
		pi, si := operationSortKey(ops[i])
		pj, sj := operationSortKey(ops[j])
		if pi != pj {
			return pi < pj
		}
		return si < sj
	})

	for _, op := range ops {
		if op.Target == nil {
			continue
		}
		// Modifier-invocation operations are already covered above.
		if op.ModifierInvocation {
			continue
		}
		name := op.Target.TargetName()
		if c.cfg.IsCustomError(name) {
			continue
		}
		if c.cfg.IsBuiltinStatement(name) {
			continue
		}
		*sites = append(*sites, CallSite{
			Kind:   classifyCall(op),
			Target: op.Target,
			Origin: op,
		})
	}
}

// operationSortKey orders body operations by byte offset when available,
// else by first line, else last; the per-statement sequence number breaks
// position ties deterministically.
func operationSortKey(op *models.Operation) (int, int) {
	if op.Source.HasOffset() {
		return op.Source.ByteOffset, op.Seq
	}
	if line, ok := op.Source.FirstLine(); ok {
		return line, op.Seq
	}
	return math.MaxInt, op.Seq
}

func classifyCall(op *models.Operation) string {
	switch op.Kind {
	case models.OpLibrary:
		return CallKindLibrary
	case models.OpHighLevel, models.OpLowLevel:
		return CallKindExternal
	case models.OpSolidity:
		return CallKindSolidity
	}
	if _, builtin := op.Target.(*models.BuiltinTarget); builtin {
		return CallKindSolidity
	}
	return CallKindInternal
}
