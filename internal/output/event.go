package output

import "repobuild/internal/engine"

// Event types streamed by ndjson sinks.
const (
	EventBuildStarted  = "build.started"
	EventRepoResult    = "repo.result"
	EventBuildFinished = "build.finished"
)

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit one Event per line: build.started, then one
// repo.result per recorded result, then build.finished. JSON mode ignores
// events except build.finished, whose Report becomes the aggregate document.
type Event struct {
	Type   string             `json:"type"`
	Repo   string             `json:"repo,omitempty"`
	Result *engine.RepoResult `json:"result,omitempty"`

	// build.started
	Mode    string   `json:"mode,omitempty"`
	Target  string   `json:"target,omitempty"`
	Planned []string `json:"planned,omitempty"`

	// build.finished
	AllPassed  *bool `json:"all_passed,omitempty"`
	DurationMs int64 `json:"duration_ms,omitempty"`
	ExitCode   int   `json:"exit_code,omitempty"`

	Report *engine.BuildReport `json:"-"`
}

// StartedEvent announces a build over the planned repos.
func StartedEvent(mode, target string, planned []string) Event {
	return Event{Type: EventBuildStarted, Mode: mode, Target: target, Planned: planned}
}

// FinishedEvent closes a build. It carries the full report for aggregating
// sinks.
func FinishedEvent(report *engine.BuildReport, exitCode int) Event {
	e := Event{Type: EventBuildFinished, ExitCode: exitCode, Report: report}
	if report != nil {
		passed := report.AllPassed
		e.AllPassed = &passed
		e.DurationMs = report.TotalDuration.Milliseconds()
	}
	return e
}

func eventFromResult(r engine.RepoResult) Event {
	return Event{Type: EventRepoResult, Repo: r.Repo, Result: &r}
}

// aggregate collects what a JSON-mode sink needs to write one report on Close.
type aggregate struct {
	results []engine.RepoResult
	report  *engine.BuildReport
}

func (a *aggregate) add(v any) {
	switch t := v.(type) {
	case engine.RepoResult:
		a.results = append(a.results, t)
	case Event:
		if t.Type == EventBuildFinished && t.Report != nil {
			a.report = t.Report
		}
	}
}

// final prefers the engine's report. Without one (the build never finished),
// it reports what was seen so far.
func (a *aggregate) final() engine.BuildReport {
	if a.report != nil {
		return *a.report
	}
	allPassed := true
	for _, r := range a.results {
		allPassed = allPassed && r.Success
	}
	return engine.BuildReport{Results: a.results, AllPassed: allPassed}
}

// encodeEvent writes v as one ndjson line. Values other than results and
// events are ignored.
func encodeEvent(enc interface{ Encode(any) error }, v any) (bool, error) {
	switch t := v.(type) {
	case Event:
		return true, enc.Encode(t)
	case engine.RepoResult:
		return true, enc.Encode(eventFromResult(t))
	default:
		return false, nil
	}
}
