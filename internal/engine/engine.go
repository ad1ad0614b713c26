// Package engine runs builds over a workspace in dependency order.
//
// Two strategies share one per-repo pipeline (optional clean, build, optional
// test). Build walks the flat order and stops at the first failure.
// BuildParallel walks levels, runs each level's repos concurrently, and stops
// starting new work once anything has failed. Neither strategy cancels a
// command that is already running.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"repobuild/internal/ctxlog"
	"repobuild/internal/runner"
	"repobuild/internal/workspace"
)

// Options control one build call.
type Options struct {
	// Target limits the build to one repo plus its transitive dependencies.
	Target string
	// RunTests runs each repo's test command after a successful build.
	RunTests bool
	// Clean runs the repo's clean command (if any) before building.
	Clean bool
	// Jobs caps concurrent workers within a level. 0 runs every repo of a
	// level at once. Ignored by the sequential strategy.
	Jobs int
	// OnResult, if set, sees every result as it is recorded. Calls are
	// serialized.
	OnResult func(RepoResult)
}

type Engine struct {
	Runner runner.Runner

	now func() time.Time
}

func NewEngine(r runner.Runner) *Engine {
	if r == nil {
		r = runner.NewExec()
	}
	return &Engine{Runner: r, now: time.Now}
}

// Build runs the sequential strategy.
//
// Pre-execution errors (*graph.NotFoundError, *graph.CycleError) are returned
// with a nil report. Command failures never surface as errors; they are
// recorded in the report.
func (e *Engine) Build(ctx context.Context, root string, m *workspace.Manifest, opts Options) (*BuildReport, error) {
	start := e.clock()()

	order, err := Order(m, opts.Target)
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("build planned", "strategy", "sequential", "target", opts.Target, "repos", len(order))
	c := newCollector(opts.OnResult)
	e.runSequential(ctx, root, m, order, opts, c)
	return c.report(e.clock()().Sub(start)), nil
}

// BuildParallel runs the level strategy. Errors are as for Build.
func (e *Engine) BuildParallel(ctx context.Context, root string, m *workspace.Manifest, opts Options) (*BuildReport, error) {
	start := e.clock()()

	levels, err := Levels(m, opts.Target)
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("build planned", "strategy", "parallel", "target", opts.Target, "levels", len(levels), "jobs", opts.Jobs)
	c := newCollector(opts.OnResult)
	e.runLevels(ctx, root, m, levels, opts, c)
	return c.report(e.clock()().Sub(start)), nil
}

func (e *Engine) clock() func() time.Time {
	if e.now == nil {
		return time.Now
	}
	return e.now
}

// runRepo is the per-repo pipeline. It reports whether every recorded phase
// succeeded. Clean failures are logged and otherwise ignored.
func (e *Engine) runRepo(ctx context.Context, root string, m *workspace.Manifest, repo *workspace.Repo, opts Options, c *collector) bool {
	logger := ctxlog.FromContext(ctx).With("repo", repo.Name)
	dir := filepath.Join(root, m.Workspace.Root, repo.LocalPath())
	cmds := runner.Resolve(dir,
		runner.Commands{Build: repo.BuildCmd, Test: repo.TestCmd, Clean: repo.CleanCmd},
		runner.Commands{Build: m.Defaults.BuildCmd, Test: m.Defaults.TestCmd},
	)

	if opts.Clean && cmds.Clean != "" {
		if _, err := e.Runner.Run(dir, cmds.Clean); err != nil {
			logger.Warn("clean failed; continuing with build", "command", cmds.Clean, "error", err)
		}
	}

	logger.Debug("building", "command", cmds.Build, "dir", dir)
	build := e.runPhase(repo.Name, repo.Name, dir, cmds.Build)
	c.record(build)
	if !build.Success {
		logger.Info("build failed", "duration", build.Duration)
		return false
	}

	if !opts.RunTests {
		logger.Debug("repo done", "duration", build.Duration)
		return true
	}

	logger.Debug("testing", "command", cmds.Test)
	test := e.runPhase(repo.Name+TestSuffix, repo.Name, dir, cmds.Test)
	c.record(test)
	if !test.Success {
		logger.Info("tests failed", "duration", test.Duration)
		return false
	}
	logger.Debug("repo done", "duration", build.Duration+test.Duration)
	return true
}

func (e *Engine) runPhase(label, repoName, dir, command string) RepoResult {
	now := e.clock()
	started := now()
	out, err := e.Runner.Run(dir, command)
	res := RepoResult{Repo: label, Duration: now().Sub(started)}
	if err != nil {
		res.Output = failureText(repoName, command, err)
		return res
	}
	res.Success = true
	res.Output = out
	return res
}

// failureText prefixes a runner error with the repo it came from.
func failureText(repo, command string, err error) string {
	if errors.Is(err, runner.ErrEmptyCommand) {
		return fmt.Sprintf("%s: %v %q", repo, err, command)
	}
	return fmt.Sprintf("%s: %v", repo, err)
}
