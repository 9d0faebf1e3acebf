package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/flowther/workflow-extractor/pkg/analysis/rules"
	"github.com/flowther/workflow-extractor/pkg/analysis/shared"
	"github.com/flowther/workflow-extractor/pkg/analysis/workflow"
	"github.com/flowther/workflow-extractor/pkg/config"
	"github.com/flowther/workflow-extractor/pkg/frontend"
	"github.com/flowther/workflow-extractor/pkg/models"
	"github.com/flowther/workflow-extractor/pkg/output"
	"github.com/flowther/workflow-extractor/pkg/utils"
	"github.com/flowther/workflow-extractor/pkg/version"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type cliOptions struct {
	target              string
	workspaceRoot       string
	frontendPath        string
	solc                string
	solcArgs            string
	model               string
	filterPaths         []string
	excludeDependencies string
	expandDependencies  string
	maxDepth            int
	verbose             bool
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:     "workflow-extractor",
		Short:   "Extract Solidity workflows (entry points + call trees) from an analyzed program model",
		Version: version.GetVersionWithCommit(),
		// The JSON payload on stdout is the whole interface; cobra's own
		// error chatter stays on stderr and usage noise is suppressed.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.target, "target", "", "Workspace folder or target path to analyze")
	flags.StringVar(&opts.workspaceRoot, "workspace-root", "", "Workspace root used to relativize file paths in the output (defaults to --target)")
	flags.StringVar(&opts.frontendPath, "frontend", "", "Path to the analysis front-end executable (defaults to "+frontend.DefaultExecutable+" on PATH)")
	flags.StringVar(&opts.solc, "solc", "", "Optional solc binary path, passed through to the front end")
	flags.StringVar(&opts.solcArgs, "solc-args", "", "Optional solc args string, passed through to the front end")
	flags.StringVar(&opts.model, "model", "", "Pre-exported program-model document to consume instead of invoking the front end")
	flags.StringArrayVar(&opts.filterPaths, "filter-path", nil, "Optional filter path (repeatable)")
	flags.StringVar(&opts.excludeDependencies, "exclude-dependencies", "true", "true/false: whether to hide functions in dependencies from output")
	flags.StringVar(&opts.expandDependencies, "expand-dependencies", "false", "true/false: whether to expand call graphs into dependency-defined functions")
	flags.IntVar(&opts.maxDepth, "max-depth", 10, "Max call depth")
	flags.BoolVar(&opts.verbose, "verbose", false, "Verbose diagnostics on stderr")

	return cmd
}

func run(opts *cliOptions) error {
	if opts.target == "" && opts.model == "" {
		return fail("--target is required", "")
	}

	excludeDependencies := utils.ParseBoolFlag(opts.excludeDependencies)
	expandDependencies := utils.ParseBoolFlag(opts.expandDependencies)
	workspaceRoot := opts.workspaceRoot
	if workspaceRoot == "" {
		workspaceRoot = opts.target
	}

	// All logging goes to stderr so stdout stays clean for the payload.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: func() slog.Level {
			if opts.verbose {
				return slog.LevelDebug
			}
			return slog.LevelWarn
		}(),
	}))

	logger.Debug("starting extraction", "version", version.GetVersion(), "target", opts.target)

	cfg, err := config.DefaultConfig()
	if err != nil {
		logger.Warn("failed to load configuration, using empty defaults", "error", err)
		cfg = &config.Config{}
	}

	runner := frontend.NewRunner(logger, opts.verbose)
	var program *models.Program
	if opts.model != "" {
		program, err = runner.LoadModel(opts.model)
	} else {
		program, err = runner.Extract(frontend.Options{
			Executable:  opts.frontendPath,
			Target:      opts.target,
			Solc:        opts.solc,
			SolcArgs:    opts.solcArgs,
			FilterPaths: opts.filterPaths,
		})
	}
	if err != nil {
		var analysisErr *frontend.AnalysisError
		if errors.As(err, &analysisErr) {
			return fail(analysisErr.Message, analysisErr.Trace)
		}
		return fail(err.Error(), "")
	}

	files, trace, err := extract(logger, cfg, program, workspaceRoot, workflow.TreeOptions{
		MaxDepth:            opts.maxDepth,
		ExcludeDependencies: excludeDependencies,
		ExpandDependencies:  expandDependencies,
	})
	if err != nil {
		return fail(err.Error(), trace)
	}

	return emitPayload(models.SuccessPayload(files))
}

// extract runs the extraction pipeline over the linked program model. A
// panic anywhere in the traversal is reported as an analysis failure with
// the stack as diagnostic trace rather than crashing without a payload.
func extract(logger *slog.Logger, cfg *config.Config, program *models.Program, workspaceRoot string, treeOpts workflow.TreeOptions) (files []models.FileFlows, trace string, err error) {
	defer func() {
		if fault := recover(); fault != nil {
			files = nil
			trace = string(debug.Stack())
			err = fmt.Errorf("workflow extraction failed: %v", fault)
		}
	}()

	ruleSet := rules.NewRules(cfg)
	locations := shared.NewLocationResolver(logger, workspaceRoot)
	trees := workflow.NewTreeBuilder(logger, cfg, ruleSet, locations, treeOpts)
	entryPoints := workflow.NewEntryPointAnalyzer(logger, ruleSet).Collect(program, treeOpts.ExcludeDependencies)
	logger.Debug("classified entry points", "count", len(entryPoints))

	files = output.NewAssembler(logger, locations, trees).Assemble(entryPoints)
	return files, "", nil
}

// fail writes the failure payload to stdout and returns a non-nil error so
// the process exits 1.
func fail(message, trace string) error {
	if err := emitPayload(models.FailurePayload(message, trace)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write payload: %v\n", err)
	}
	return errors.New(message)
}

func emitPayload(payload models.Payload) error {
	return json.NewEncoder(os.Stdout).Encode(payload)
}
