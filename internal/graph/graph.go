// Package graph resolves build order over a workspace's repository set.
//
// The graph is implicit: nodes are positions in the repo slice and edges are
// DependsOn names. Names that do not resolve to a repo are skipped, so a
// partial workspace may omit optional dependencies.
package graph

import "repobuild/internal/workspace"

type mark uint8

const (
	unvisited mark = iota
	onStack
	finished
)

// index maps repo names to their position in the input slice.
type index map[string]int

func newIndex(repos []workspace.Repo) index {
	ix := make(index, len(repos))
	for i, r := range repos {
		if _, dup := ix[r.Name]; !dup {
			ix[r.Name] = i
		}
	}
	return ix
}

// resolve is the resolve-or-skip lookup for dependency names. ok is false for
// names that are not part of the repo set; callers skip those edges.
func (ix index) resolve(name string) (pos int, ok bool) {
	pos, ok = ix[name]
	return pos, ok
}

type frame struct {
	node int
	next int // next DependsOn entry to visit
}

// ResolveOrder returns repos in dependency order: every repo appears after all
// of its resolvable dependencies. Ties are broken by input position, so the
// result is stable for a given input.
func ResolveOrder(repos []workspace.Repo) ([]*workspace.Repo, error) {
	ix := newIndex(repos)
	marks := make([]mark, len(repos))
	order := make([]*workspace.Repo, 0, len(repos))

	var stack []frame
	for start := range repos {
		if marks[start] != unvisited {
			continue
		}
		marks[start] = onStack
		stack = append(stack[:0], frame{node: start})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := repos[top.node].DependsOn
			if top.next < len(deps) {
				name := deps[top.next]
				top.next++
				dep, ok := ix.resolve(name)
				if !ok {
					continue
				}
				switch marks[dep] {
				case onStack:
					return nil, cycleFrom(repos, stack, dep)
				case finished:
					continue
				}
				marks[dep] = onStack
				stack = append(stack, frame{node: dep})
				continue
			}

			marks[top.node] = finished
			order = append(order, &repos[top.node])
			stack = stack[:len(stack)-1]
		}
	}
	return order, nil
}

// cycleFrom builds the cycle path from the DFS stack once dep was found on it.
func cycleFrom(repos []workspace.Repo, stack []frame, dep int) *CycleError {
	var path []string
	for i := range stack {
		if stack[i].node == dep {
			for _, f := range stack[i:] {
				path = append(path, repos[f.node].Name)
			}
			break
		}
	}
	path = append(path, repos[dep].Name)
	return &CycleError{Repo: repos[dep].Name, Path: path}
}

// ResolveLevels groups repos into levels that can be built concurrently. A
// repo's level is one more than the highest level among its resolvable
// dependencies, or 0 when it has none. Within a level repos keep their
// ResolveOrder position.
func ResolveLevels(repos []workspace.Repo) ([][]*workspace.Repo, error) {
	order, err := ResolveOrder(repos)
	if err != nil {
		return nil, err
	}

	ix := newIndex(repos)
	levelOf := make(map[int]int, len(order))
	var levels [][]*workspace.Repo

	for _, r := range order {
		level := 0
		for _, name := range r.DependsOn {
			dep, ok := ix.resolve(name)
			if !ok {
				continue
			}
			if l, assigned := levelOf[dep]; assigned && l+1 > level {
				level = l + 1
			}
		}
		levelOf[ix[r.Name]] = level

		for len(levels) <= level {
			levels = append(levels, nil)
		}
		levels[level] = append(levels[level], r)
	}
	return levels, nil
}
