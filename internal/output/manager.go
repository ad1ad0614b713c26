package output

import (
	"errors"
	"fmt"
)

// Sink is a destination for build output. Write receives engine.RepoResult
// values and Event values; sinks ignore anything else.
type Sink interface {
	Write(v any) error
	Close() error
}

// Manager fans one build's event stream (build.started, each recorded
// engine.RepoResult, build.finished) out to the console, emit, file and report
// sinks chosen on the command line. A failing sink does not stop the others;
// all errors are joined.
type Manager struct {
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if s == nil {
		return fmt.Errorf("sink must not be nil")
	}
	m.sinks = append(m.sinks, s)
	return nil
}

// Len reports how many sinks are attached.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.sinks)
}

// Write forwards one result or lifecycle event. The engine calls it from its
// serialized OnResult hook, so sinks see results in recording order.
func (m *Manager) Write(v any) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(v); err != nil {
			errs = append(errs, fmt.Errorf("write %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors writing to sinks: %w", errors.Join(errs...))
	}
	return nil
}

// Close lets aggregating sinks write their final document (the JSON report,
// the Markdown summary) and releases files. Every sink is closed even if an
// earlier one fails.
func (m *Manager) Close() error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sinks: %w", errors.Join(errs...))
	}
	return nil
}
