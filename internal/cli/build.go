package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"repobuild/internal/config"
	"repobuild/internal/ctxlog"
	"repobuild/internal/engine"
	"repobuild/internal/flags"
	"repobuild/internal/output"
	"repobuild/internal/runner"
	"repobuild/internal/workspace"
)

const buildLong = `Build repositories in dependency order.

With no argument every repo in the workspace is built. With a repo name only
that repo and its transitive dependencies are built.

By default repos are built one at a time and the build stops at the first
failure. With --parallel repos are grouped into levels; each level runs
concurrently, and after a failure the current level finishes but no further
level starts. Running commands are never interrupted.

Each repo runs an optional clean (--clean, failures are ignored), its build
command, and optionally its test command (--test, only after a successful
build). Commands come from the repo entry, then the manifest [defaults], then
the repo's language (go.mod, Cargo.toml, package.json), then make.

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON report or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --report: write a Markdown report
	- --no-console: suppress the console sink (use with --emit/--out for machine output)

	NDJSON mode emits one JSON object per line with a "type" field
	(build.started, repo.result, build.finished).

Exit codes:
	0 = every build and test passed
	1 = error before anything ran (unknown repo, dependency cycle)
	2 = usage or configuration error
	4 = workspace not found or manifest unreadable
	6 = a build or test failed
	10 = dry run

Examples:
	repobuild build
	repobuild build api --test
	repobuild build --parallel --jobs 4 --report build.md
	repobuild build --dry-run
	repobuild build --no-console --emit ndjson
`

func newBuildCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [repo]",
		Short: "Build repos in dependency order",
		Long:  buildLong,
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Build.Target = strings.TrimSpace(args[0])
			}
			return runBuild(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&cfg.Build.Parallel, flags.FlagParallel, false, "Build independent repos concurrently, level by level")
	f.BoolVar(&cfg.Build.Test, flags.FlagTest, false, "Run tests after each successful build")
	f.BoolVar(&cfg.Build.Clean, flags.FlagClean, false, "Run each repo's clean command before building")
	f.IntVar(&cfg.Build.Jobs, flags.FlagJobs, 0, "Max concurrent repos per level with --parallel (0 = no limit)")
	f.BoolVar(&cfg.Build.DryRun, flags.FlagDryRun, false, "Print the build order without running anything")

	f.StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	f.StringSliceVar(&cfg.Output.ConsoleFilterStatus, flags.FlagConsoleFilterStatus, nil, "Only print results with this status (PASS, FAIL). Comma-separated.")
	f.StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	f.StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	f.StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	f.StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	f.BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")
	return cmd
}

func runBuild(ctx context.Context, stdout io.Writer, cfg *config.Config) error {
	logger := ctxlog.FromContext(ctx)

	root, m, err := loadWorkspace(cfg)
	if err != nil {
		return err
	}
	logger.Debug("workspace loaded", "root", root, "repos", len(m.Repos))

	if cfg.Build.DryRun {
		if err := printDryRun(stdout, m, cfg); err != nil {
			return err
		}
		return withExitCode(ExitDryRun, nil)
	}

	// Resolve before any sink creates files so graph errors leave no artifacts.
	planned, err := engine.Order(m, cfg.Build.Target)
	if err != nil {
		return err
	}

	outMgr, err := setupOutputManager(stdout, cfg)
	if err != nil {
		return usageError(err)
	}

	mode := "sequential"
	if cfg.Build.Parallel {
		mode = "parallel"
	}
	writeOutput(ctx, outMgr, output.StartedEvent(mode, cfg.Build.Target, repoNames(planned)))

	opts := engine.Options{
		Target:   cfg.Build.Target,
		RunTests: cfg.Build.Test,
		Clean:    cfg.Build.Clean,
		Jobs:     cfg.Build.Jobs,
		OnResult: func(r engine.RepoResult) { writeOutput(ctx, outMgr, r) },
	}

	eng := engine.NewEngine(runner.NewExec())
	var report *engine.BuildReport
	if cfg.Build.Parallel {
		report, err = eng.BuildParallel(ctx, root, m, opts)
	} else {
		report, err = eng.Build(ctx, root, m, opts)
	}
	if err != nil {
		_ = outMgr.Close()
		return err
	}

	code := ExitOK
	if !report.AllPassed {
		code = ExitBuildFailed
	}
	writeOutput(ctx, outMgr, output.FinishedEvent(report, code))

	if err := outMgr.Close(); err != nil {
		return err
	}
	if code != ExitOK {
		return withExitCode(code, nil)
	}
	return nil
}

// writeOutput logs sink failures; output problems never change the build.
func writeOutput(ctx context.Context, outMgr *output.Manager, v any) {
	if err := outMgr.Write(v); err != nil {
		ctxlog.FromContext(ctx).Warn("output write failed", "error", err)
	}
}

func setupOutputManager(stdout io.Writer, cfg *config.Config) (*output.Manager, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	outMgr := output.NewManager()
	abort := func(err error) (*output.Manager, error) {
		return nil, errors.Join(err, outMgr.Close())
	}

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(stdout, cfg.Output.ConsoleFormat, cfg.Output.ConsoleFilterStatus)); err != nil {
			return abort(err)
		}
	}

	// Emit Sinks (additional structured streams)
	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(stdout, emit)
		if err != nil {
			return abort(err)
		}
		if err := outMgr.AddSink(es); err != nil {
			return abort(err)
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			return abort(err)
		}
		if err := outMgr.AddSink(fs); err != nil {
			return abort(err)
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			return abort(err)
		}
		if err := outMgr.AddSink(rs); err != nil {
			return abort(err)
		}
	}

	return outMgr, nil
}

func printDryRun(w io.Writer, m *workspace.Manifest, cfg *config.Config) error {
	order, err := engine.Order(m, cfg.Build.Target)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "would build in order: %s\n", strings.Join(repoNames(order), " → "))

	if !cfg.Build.Parallel {
		return nil
	}
	levels, err := engine.Levels(m, cfg.Build.Target)
	if err != nil {
		return err
	}
	for i, level := range levels {
		fmt.Fprintf(w, "  level %d: %s\n", i, strings.Join(repoNames(level), ", "))
	}
	return nil
}

func repoNames(repos []*workspace.Repo) []string {
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.Name)
	}
	return names
}
