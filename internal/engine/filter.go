package engine

import "repobuild/internal/workspace"

// filterOrder keeps repos in scope, preserving order. A nil scope keeps all.
func filterOrder(order []*workspace.Repo, scope map[string]struct{}) []*workspace.Repo {
	if scope == nil {
		return order
	}
	filtered := make([]*workspace.Repo, 0, len(scope))
	for _, r := range order {
		if _, ok := scope[r.Name]; ok {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// filterLevels removes out-of-scope repos from levels computed on the full
// graph. Levels are not recomputed; levels left empty are dropped.
func filterLevels(levels [][]*workspace.Repo, scope map[string]struct{}) [][]*workspace.Repo {
	if scope == nil {
		return levels
	}
	var filtered [][]*workspace.Repo
	for _, level := range levels {
		if kept := filterOrder(level, scope); len(kept) > 0 {
			filtered = append(filtered, kept)
		}
	}
	return filtered
}
