package engine

import (
	"fmt"

	"repobuild/internal/graph"
	"repobuild/internal/workspace"
)

// scopeFor resolves the optional build target. It runs before any graph walk
// so an unknown target fails fast. A nil scope means the whole workspace.
func scopeFor(m *workspace.Manifest, target string) (map[string]struct{}, error) {
	if target == "" {
		return nil, nil
	}
	return graph.Scope(m.Repos, target)
}

// Order is the dry-run query: the flat build order for m, optionally scoped
// to target and its transitive dependencies. Nothing is executed.
func Order(m *workspace.Manifest, target string) ([]*workspace.Repo, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest is nil")
	}
	scope, err := scopeFor(m, target)
	if err != nil {
		return nil, err
	}
	order, err := graph.ResolveOrder(m.Repos)
	if err != nil {
		return nil, err
	}
	return filterOrder(order, scope), nil
}

// Levels is the parallel counterpart of Order.
func Levels(m *workspace.Manifest, target string) ([][]*workspace.Repo, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest is nil")
	}
	scope, err := scopeFor(m, target)
	if err != nil {
		return nil, err
	}
	levels, err := graph.ResolveLevels(m.Repos)
	if err != nil {
		return nil, err
	}
	return filterLevels(levels, scope), nil
}
