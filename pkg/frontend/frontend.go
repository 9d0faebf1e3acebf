package frontend

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/viant/afs"

	"github.com/flowther/workflow-extractor/pkg/models"
	"github.com/flowther/workflow-extractor/pkg/utils"
)

// DefaultExecutable is the front-end binary looked up on PATH when --frontend
// is not given.
const DefaultExecutable = "flowther-frontend"

// Options configure one front-end invocation.
type Options struct {
	// Executable is the front-end binary; DefaultExecutable when empty.
	Executable string
	Target     string
	// Solc and SolcArgs are passed through to the front end's toolchain.
	Solc     string
	SolcArgs string
	// FilterPaths restrict which source paths the front end analyzes.
	FilterPaths []string
}

// Runner locates and runs the external analysis front end, decoding its
// program-model export.
type Runner struct {
	logger   *slog.Logger
	progress *utils.VerboseLogger
	fs       afs.Service
}

// NewRunner creates a new front-end runner
func NewRunner(logger *slog.Logger, verbose bool) *Runner {
	return &Runner{
		logger:   logger,
		progress: utils.NewVerboseLogger(verbose),
		fs:       afs.New(),
	}
}

// Extract invokes the front end on the target and links its exported
// program model. A missing executable yields *UnavailableError; a failing
// run or an undecodable export yields *AnalysisError carrying the front
// end's stderr as diagnostic trace.
func (r *Runner) Extract(opts Options) (*models.Program, error) {
	executable := opts.Executable
	if executable == "" {
		executable = DefaultExecutable
	}

	path, err := exec.LookPath(executable)
	if err != nil {
		return nil, &UnavailableError{Frontend: executable, Err: err}
	}

	args := []string{"--target", opts.Target}
	if opts.Solc != "" {
		args = append(args, "--solc", opts.Solc)
	}
	if opts.SolcArgs != "" {
		args = append(args, "--solc-args")
		args = append(args, utils.SplitArgs(opts.SolcArgs)...)
	}
	for _, filter := range opts.FilterPaths {
		args = append(args, "--filter-path", filter)
	}

	r.logger.Debug("invoking analysis front end", "executable", path, "args", args)
	r.progress.Logf("Analyzing %s...\n", opts.Target)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &AnalysisError{
			Message: fmt.Sprintf("analysis front end failed: %v", err),
			Trace:   strings.TrimSpace(stderr.String()),
		}
	}
	if trace := strings.TrimSpace(stderr.String()); trace != "" {
		// Front-end noise goes to our stderr, never to stdout.
		fmt.Fprintln(os.Stderr, trace)
	}

	return r.link(stdout.Bytes())
}

// LoadModel links a pre-exported program-model document instead of invoking
// the front end. The URL may be a local path or any scheme afs understands.
func (r *Runner) LoadModel(url string) (*models.Program, error) {
	data, err := r.fs.DownloadWithURL(context.Background(), url)
	if err != nil {
		return nil, &AnalysisError{
			Message: fmt.Sprintf("failed to read program-model document %s: %v", url, err),
		}
	}
	return r.link(data)
}

func (r *Runner) link(data []byte) (*models.Program, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, &AnalysisError{Message: err.Error()}
	}
	program := doc.Link()
	r.logger.Debug("linked program model",
		"scopes", len(program.Scopes), "declarations", len(program.Declarations))
	return program, nil
}
