package workflow

import (
	"log/slog"

	"github.com/flowther/workflow-extractor/pkg/analysis/rules"
	"github.com/flowther/workflow-extractor/pkg/analysis/shared"
	"github.com/flowther/workflow-extractor/pkg/config"
	"github.com/flowther/workflow-extractor/pkg/models"
	"github.com/flowther/workflow-extractor/pkg/utils"
)

const unknownLabel = "<unknown>"

// TreeOptions bound and filter call-tree expansion.
type TreeOptions struct {
	// MaxDepth is the maximum expansion depth, clamped to >= 1.
	MaxDepth            int
	ExcludeDependencies bool
	ExpandDependencies  bool
}

// TreeBuilder expands a declaration's outgoing calls into a bounded,
// cycle-safe display tree.
type TreeBuilder struct {
	logger    *slog.Logger
	rules     *rules.Rules
	resolver  *Resolver
	collector *Collector
	locations *shared.LocationResolver
	opts      TreeOptions
}

// NewTreeBuilder creates a new call-tree builder
func NewTreeBuilder(logger *slog.Logger, cfg *config.Config, rules *rules.Rules, locations *shared.LocationResolver, opts TreeOptions) *TreeBuilder {
	if opts.MaxDepth < 1 {
		opts.MaxDepth = 1
	}
	return &TreeBuilder{
		logger:    logger,
		rules:     rules,
		resolver:  NewResolver(logger, rules),
		collector: NewCollector(logger, cfg),
		locations: locations,
		opts:      opts,
	}
}

// Build expands root's calls into a tree at most MaxDepth levels deep.
// ancestors seeds the cycle-detection set and is typically the root's own
// identity; it is not modified.
func (b *TreeBuilder) Build(root *models.Declaration, ancestors map[string]bool) []models.CallNode {
	if ancestors == nil {
		ancestors = map[string]bool{}
	}
	nodes := b.build(root, 0, ancestors)
	if nodes == nil {
		nodes = []models.CallNode{}
	}
	return nodes
}

func (b *TreeBuilder) build(decl *models.Declaration, depth int, ancestors map[string]bool) []models.CallNode {
	if depth >= b.opts.MaxDepth {
		return nil
	}

	var children []models.CallNode
	for _, site := range b.collector.Collect(decl) {
		if site.Target == nil {
			continue
		}

		var resolved *models.Declaration
		if declTarget, ok := site.Target.(*models.DeclarationTarget); ok {
			resolved = b.resolver.Resolve(declTarget.Decl, b.opts.ExcludeDependencies)
		}

		var callsiteLocation *models.Location
		if site.Origin != nil {
			callsiteLocation = b.locations.Resolve(site.Origin.Source)
		}

		var nodeID, label, contract string
		var location *models.Location
		canonical := ""
		if resolved != nil && resolved.CanonicalID != "" {
			canonical = resolved.CanonicalID
			nodeID = canonical
			label = DisplayLabel(resolved)
			if resolved.Scope != nil {
				contract = resolved.Scope.Name
			}
			location = b.locations.Resolve(resolved.Source)
		} else {
			// Built-in, variable or otherwise unresolvable target; the
			// synthetic identity keeps cycle detection meaningful.
			name := site.Target.TargetName()
			if resolved != nil {
				name = resolved.Name
			}
			if name == "" {
				name = unknownLabel
			}
			nodeID = site.Kind + ":" + name
			label = name
		}
		if location == nil {
			location = callsiteLocation
		}

		cycle := ancestors[nodeID]
		tooltip := canonical
		if tooltip == "" {
			tooltip = label
		}

		node := models.CallNode{
			Label:     label,
			Contract:  contract,
			KindLabel: site.Kind,
			Tooltip:   tooltip,
			Location:  location,
			Cycle:     cycle,
			Calls:     []models.CallNode{},
		}

		if !cycle && canonical != "" && b.shouldExpand(resolved) {
			// Each branch gets its own ancestor set so siblings do not
			// share cycle history.
			next := make(map[string]bool, len(ancestors)+1)
			for id := range ancestors {
				next[id] = true
			}
			next[nodeID] = true
			if calls := b.build(resolved, depth+1, next); calls != nil {
				node.Calls = calls
			}
		}

		children = append(children, node)
	}
	return children
}

func (b *TreeBuilder) shouldExpand(target *models.Declaration) bool {
	if b.opts.ExpandDependencies {
		return true
	}
	return !(b.opts.ExcludeDependencies && b.rules.Classifier.IsDependencyDeclaration(target))
}

// DisplayLabel prefers the short name over the full signature.
func DisplayLabel(decl *models.Declaration) string {
	if decl.Name != "" {
		return decl.Name
	}
	if decl.Signature != "" {
		return utils.BaseName(decl.Signature)
	}
	return unknownLabel
}
