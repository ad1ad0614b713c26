package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"repobuild/internal/ctxlog"
	"repobuild/internal/workspace"
)

// runSequential walks order and stops at the first failed repo.
func (e *Engine) runSequential(ctx context.Context, root string, m *workspace.Manifest, order []*workspace.Repo, opts Options, c *collector) {
	logger := ctxlog.FromContext(ctx)
	for i, repo := range order {
		if !e.runRepo(ctx, root, m, repo, opts, c) {
			if skipped := len(order) - i - 1; skipped > 0 {
				logger.Info("stopping after failure", "repo", repo.Name, "skipped", skipped)
			}
			return
		}
	}
}

// runLevels runs each level as one errgroup. Wait is the barrier between
// levels. Workers never return an error: a failure only sets the collector's
// flag, so siblings already running finish and no later work starts.
func (e *Engine) runLevels(ctx context.Context, root string, m *workspace.Manifest, levels [][]*workspace.Repo, opts Options, c *collector) {
	logger := ctxlog.FromContext(ctx)
	for i, level := range levels {
		if c.hasFailed() {
			logger.Info("skipping remaining levels after failure", "level", i, "remaining", len(levels)-i)
			return
		}
		logger.Debug("starting level", "level", i, "repos", len(level))

		var g errgroup.Group
		if opts.Jobs > 0 {
			g.SetLimit(opts.Jobs)
		}
		for _, repo := range level {
			repo := repo // per-iteration copy; go.mod targets go1.21 loop semantics
			g.Go(func() error {
				if c.hasFailed() {
					logger.Debug("skipping repo after failure", "repo", repo.Name)
					return nil
				}
				e.runRepo(ctx, root, m, repo, opts, c)
				return nil
			})
		}
		_ = g.Wait()
	}
}
