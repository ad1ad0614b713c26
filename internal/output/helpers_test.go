package output

import (
	"testing"
	"time"

	"github.com/fatih/color"

	"repobuild/internal/engine"
)

func plainColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func pass(name string) engine.RepoResult {
	return engine.RepoResult{Repo: name, Success: true, Output: name + " ok\n", Duration: 12 * time.Millisecond}
}

func fail(name, output string) engine.RepoResult {
	return engine.RepoResult{Repo: name, Output: output, Duration: 3 * time.Millisecond}
}

func reportOf(d time.Duration, results ...engine.RepoResult) *engine.BuildReport {
	all := true
	for _, r := range results {
		all = all && r.Success
	}
	return &engine.BuildReport{Results: results, TotalDuration: d, AllPassed: all}
}
