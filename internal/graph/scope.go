package graph

import (
	"sort"

	"repobuild/internal/workspace"
)

// TransitiveDeps returns the names of every repo reachable from target by
// following DependsOn edges, excluding target itself. The walk is iterative
// and skips visited names, so it terminates even on cyclic input.
func TransitiveDeps(repos []workspace.Repo, target string) map[string]struct{} {
	ix := newIndex(repos)
	deps := make(map[string]struct{})

	stack := []string{target}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		pos, ok := ix.resolve(current)
		if !ok {
			continue
		}
		for _, name := range repos[pos].DependsOn {
			if name == target {
				continue
			}
			if _, ok := ix.resolve(name); !ok {
				continue
			}
			if _, seen := deps[name]; seen {
				continue
			}
			deps[name] = struct{}{}
			stack = append(stack, name)
		}
	}
	return deps
}

// Scope returns target plus its transitive dependencies. It fails with a
// *NotFoundError before walking anything when target is not in repos.
func Scope(repos []workspace.Repo, target string) (map[string]struct{}, error) {
	if _, ok := newIndex(repos).resolve(target); !ok {
		return nil, &NotFoundError{Repo: target}
	}
	set := TransitiveDeps(repos, target)
	set[target] = struct{}{}
	return set, nil
}

// SortedNames is a convenience for printing name sets deterministically.
func SortedNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
