package graph

import (
	"fmt"
	"strings"
)

// CycleError reports that the dependency graph is not a DAG.
type CycleError struct {
	// Repo is one repository on the cycle.
	Repo string
	// Path is the cycle as discovered, starting and ending at Repo.
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("circular dependency detected involving '%s'", e.Repo)
	}
	return fmt.Sprintf("circular dependency detected involving '%s' (%s)", e.Repo, strings.Join(e.Path, " -> "))
}

// NotFoundError reports a scoped-build target missing from the manifest.
type NotFoundError struct {
	Repo string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repo '%s' not found", e.Repo)
}
