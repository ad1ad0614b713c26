package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"repobuild/internal/engine"
)

// ReportSink writes a Markdown build report on Close.
type ReportSink struct {
	path     string
	file     *os.File
	mu       sync.Mutex
	agg      aggregate
	mode     string
	target   string
	planned  []string
	exitCode int
	finished bool
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{path: path, file: f}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.agg.add(v)
	if t, ok := v.(Event); ok {
		switch t.Type {
		case EventBuildStarted:
			s.mode = t.Mode
			s.target = t.Target
			s.planned = append([]string(nil), t.Planned...)
		case EventBuildFinished:
			s.exitCode = t.ExitCode
			s.finished = true
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.file.WriteString(s.render())
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (s *ReportSink) render() string {
	report := s.agg.final()
	var b strings.Builder

	b.WriteString("# Build Report\n\n")

	status := "passed"
	if !report.AllPassed {
		status = "FAILED"
	}
	if !s.finished {
		status += " (incomplete)"
	}

	passed, failed := 0, 0
	for _, r := range report.Results {
		if r.Success {
			passed++
		} else {
			failed++
		}
	}

	fmt.Fprintf(&b, "- **Status:** %s\n", status)
	if s.mode != "" {
		fmt.Fprintf(&b, "- **Mode:** %s\n", s.mode)
	}
	if s.target != "" {
		fmt.Fprintf(&b, "- **Target:** `%s`\n", s.target)
	}
	fmt.Fprintf(&b, "- **Duration:** %s\n", formatDuration(report.TotalDuration))
	fmt.Fprintf(&b, "- **Results:** %d (%d passed, %d failed)\n", len(report.Results), passed, failed)
	if s.finished {
		fmt.Fprintf(&b, "- **Exit code:** %d\n", s.exitCode)
	}
	b.WriteString("\n")

	if len(report.Results) > 0 {
		b.WriteString("## Results\n\n")
		b.WriteString("| Repo | Phase | Status | Duration |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, r := range report.Results {
			name, phase := strings.TrimSuffix(r.Repo, engine.TestSuffix), "build"
			if r.IsTest() {
				phase = "test"
			}
			mark := "✅ pass"
			if !r.Success {
				mark = "❌ fail"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", escapeCell(name), phase, mark, formatDuration(r.Duration))
		}
		b.WriteString("\n")
	}

	if skipped := notRun(s.planned, report.Results); len(skipped) > 0 {
		b.WriteString("## Not Run\n\n")
		fmt.Fprintf(&b, "Skipped after failure: %s\n\n", formatRepoList(skipped, 10))
	}

	if failed > 0 {
		b.WriteString("## Failures\n\n")
		for _, r := range report.Results {
			if r.Success {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", r.Repo)
			b.WriteString("```text\n")
			b.WriteString(strings.TrimRight(r.Output, "\n"))
			b.WriteString("\n```\n\n")
		}
	}

	return b.String()
}

// notRun lists planned repos with no build result, sorted.
func notRun(planned []string, results []engine.RepoResult) []string {
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		seen[strings.TrimSuffix(r.Repo, engine.TestSuffix)] = struct{}{}
	}
	var out []string
	for _, name := range planned {
		if _, ok := seen[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func formatRepoList(repos []string, max int) string {
	if len(repos) == 0 {
		return ""
	}
	if len(repos) <= max {
		return fmt.Sprintf("%d repos (%s)", len(repos), strings.Join(repos, ", "))
	}
	return fmt.Sprintf("%d repos (%s, +%d more)", len(repos), strings.Join(repos[:max], ", "), len(repos)-max)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
