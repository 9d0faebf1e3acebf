package output

import (
	"log/slog"
	"sort"

	"github.com/flowther/workflow-extractor/pkg/analysis/shared"
	"github.com/flowther/workflow-extractor/pkg/analysis/workflow"
	"github.com/flowther/workflow-extractor/pkg/models"
)

// Assembler groups, sorts and shapes entry points into the output payload.
type Assembler struct {
	logger    *slog.Logger
	locations *shared.LocationResolver
	trees     *workflow.TreeBuilder
}

// NewAssembler creates a new output assembler
func NewAssembler(logger *slog.Logger, locations *shared.LocationResolver, trees *workflow.TreeBuilder) *Assembler {
	return &Assembler{logger: logger, locations: locations, trees: trees}
}

// Assemble shapes entry points into per-file flow groups. Entries whose
// display location cannot be resolved are silently omitted; within a file
// flows sort by (own-before-inherited, line, label) and files sort by path.
func (a *Assembler) Assemble(entries []workflow.EntryPoint) []models.FileFlows {
	byFile := make(map[string][]models.Flow)

	for _, entry := range entries {
		decl := entry.Decl
		if decl == nil {
			continue
		}

		// Inherited entries group under the concrete scope's file so the
		// flow shows up where the inheriting contract lives.
		var file, contract string
		if entry.Inherited() {
			loc := a.locations.Resolve(entry.ConcreteScope.Source)
			if loc == nil {
				continue
			}
			file = loc.File
			contract = entry.ConcreteScope.Name
		} else {
			loc := a.locations.Resolve(decl.Source)
			if loc == nil {
				continue
			}
			file = loc.File
			if decl.Scope != nil {
				contract = decl.Scope.Name
			}
		}

		canonical := decl.CanonicalID
		label := workflow.DisplayLabel(decl)

		var flowID, tooltip string
		if entry.Inherited() {
			flowID = file + "::" + contract + "." + label + "::from::" + entry.InheritedFrom
		} else {
			flowID = file + "::" + canonical
		}
		if canonical != "" {
			tooltip = canonical + " • " + file
		} else {
			tooltip = label + " • " + file
		}

		location := models.Location{File: file, Line: 0, Character: 0}
		if declLoc := a.locations.Resolve(decl.Source); declLoc != nil {
			location = *declLoc
		}

		rootID := canonical
		if rootID == "" {
			rootID = label
		}

		byFile[file] = append(byFile[file], models.Flow{
			FlowID:        flowID,
			Label:         label,
			Contract:      contract,
			Tooltip:       tooltip,
			Inherited:     entry.Inherited(),
			InheritedFrom: entry.InheritedFrom,
			Location:      location,
			Calls:         a.trees.Build(decl, map[string]bool{rootID: true}),
		})
	}

	files := make([]models.FileFlows, 0, len(byFile))
	for path, flows := range byFile {
		sort.SliceStable(flows, func(i, j int) bool {
			if flows[i].Inherited != flows[j].Inherited {
				return !flows[i].Inherited
			}
			if flows[i].Location.Line != flows[j].Location.Line {
				return flows[i].Location.Line < flows[j].Location.Line
			}
			return flows[i].Label < flows[j].Label
		})
		files = append(files, models.FileFlows{Path: path, EntryPoints: flows})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}
