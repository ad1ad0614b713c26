package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"repobuild/internal/engine"
)

// Result statuses accepted by the console filter.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

func passMark() string { return color.New(color.FgGreen).Sprint("✓") }

func failMark() string { return color.New(color.FgRed).Sprint("✗") }

// maxFailureLines caps how much of a failed command's output text mode shows.
const maxFailureLines = 20

type ConsoleSink struct {
	writer          io.Writer
	format          string // "text", "json", "ndjson"
	mu              sync.Mutex
	agg             aggregate
	allowedStatuses map[string]bool
}

func NewConsoleSink(w io.Writer, format string, filterStatuses []string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer: w,
		format: format,
	}

	if len(filterStatuses) > 0 {
		s.allowedStatuses = make(map[string]bool)
		for _, st := range filterStatuses {
			s.allowedStatuses[strings.ToUpper(strings.TrimSpace(st))] = true
		}
	}

	return s
}

func statusOf(r engine.RepoResult) string {
	if r.Success {
		return StatusPass
	}
	return StatusFail
}

func (s *ConsoleSink) accepts(r engine.RepoResult) bool {
	return len(s.allowedStatuses) == 0 || s.allowedStatuses[statusOf(r)]
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	if r, ok := v.(engine.RepoResult); ok && !s.accepts(r) {
		return nil
	}

	switch s.format {
	case "json":
		s.agg.add(v)
		return nil
	case "ndjson":
		wrote, err := encodeEvent(json.NewEncoder(s.writer), v)
		if err != nil || !wrote {
			return err
		}
		return flushIfPossible(s.writer)
	case "text":
		if err := s.writeText(v); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeText(v any) error {
	switch t := v.(type) {
	case engine.RepoResult:
		if t.Success {
			_, err := fmt.Fprintf(s.writer, "  %s %s\n", passMark(), t.Repo)
			return err
		}
		if _, err := fmt.Fprintf(s.writer, "  %s %s\n", failMark(), t.Repo); err != nil {
			return err
		}
		for _, line := range failureLines(t.Output, maxFailureLines) {
			if _, err := fmt.Fprintf(s.writer, "      %s\n", line); err != nil {
				return err
			}
		}
		return nil
	case Event:
		switch t.Type {
		case EventBuildStarted:
			_, err := fmt.Fprintf(s.writer, "building %d repos (%s)\n", len(t.Planned), t.Mode)
			return err
		case EventBuildFinished:
			if t.Report == nil {
				return nil
			}
			_, err := fmt.Fprintf(s.writer, "\n%s\n", Summary(t.Report))
			return err
		}
	}
	return nil
}

// Summary is the closing line of a text build log.
func Summary(report *engine.BuildReport) string {
	ms := report.TotalDuration.Milliseconds()
	if report.AllPassed {
		return color.New(color.FgGreen, color.Bold).Sprintf("build passed (%dms)", ms)
	}
	return color.New(color.FgRed, color.Bold).Sprintf("build FAILED (%dms)", ms)
}

// failureLines trims trailing blank lines and keeps at most max lines.
func failureLines(text string, max int) []string {
	text = strings.TrimRight(text, "\n\r\t ")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > max {
		omitted := len(lines) - max
		lines = append(lines[:max:max], fmt.Sprintf("... (%d more lines)", omitted))
	}
	return lines
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.document()); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}

// document is the JSON-mode report. The finished report supplies the totals;
// its results still pass through the status filter.
func (s *ConsoleSink) document() engine.BuildReport {
	report := s.agg.final()
	if len(s.allowedStatuses) == 0 {
		return report
	}
	kept := make([]engine.RepoResult, 0, len(report.Results))
	for _, r := range report.Results {
		if s.accepts(r) {
			kept = append(kept, r)
		}
	}
	report.Results = kept
	return report
}
