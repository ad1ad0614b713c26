package graph

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"repobuild/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repo(name string, deps ...string) workspace.Repo {
	return workspace.Repo{Name: name, DependsOn: deps}
}

func names(repos []*workspace.Repo) []string {
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		out = append(out, r.Name)
	}
	return out
}

func levelNames(levels [][]*workspace.Repo) [][]string {
	out := make([][]string, 0, len(levels))
	for _, l := range levels {
		out = append(out, names(l))
	}
	return out
}

func chain() []workspace.Repo {
	return []workspace.Repo{
		repo("A"),
		repo("B", "A"),
		repo("C", "A", "B"),
	}
}

func TestResolveOrder_Chain(t *testing.T) {
	order, err := ResolveOrder(chain())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(order))
}

func TestResolveOrder_DependencyDeclaredAfterDependent(t *testing.T) {
	repos := []workspace.Repo{
		repo("app", "lib"),
		repo("lib", "core"),
		repo("core"),
	}
	order, err := ResolveOrder(repos)
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "lib", "app"}, names(order))
}

func TestResolveOrder_IndependentReposKeepInputOrder(t *testing.T) {
	order, err := ResolveOrder([]workspace.Repo{repo("X"), repo("Y"), repo("Z")})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, names(order))
}

func TestResolveOrder_SkipsUnknownDependencies(t *testing.T) {
	repos := []workspace.Repo{
		repo("A", "does-not-exist"),
		repo("B", "A", "also-missing"),
	}
	order, err := ResolveOrder(repos)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(order))
}

func TestResolveOrder_MutualDependencyIsCycle(t *testing.T) {
	_, err := ResolveOrder([]workspace.Repo{repo("A", "B"), repo("B", "A")})
	require.Error(t, err)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Contains(t, []string{"A", "B"}, cycleErr.Repo)
	assert.Contains(t, err.Error(), "circular dependency detected")
}

func TestResolveOrder_LongCycleReportsPath(t *testing.T) {
	repos := []workspace.Repo{
		repo("root"),
		repo("A", "root", "B"),
		repo("B", "C"),
		repo("C", "A"),
	}
	_, err := ResolveOrder(repos)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, "A", cycleErr.Repo)
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycleErr.Path)
}

func TestResolveOrder_SelfDependencyIsCycle(t *testing.T) {
	_, err := ResolveOrder([]workspace.Repo{repo("A", "A")})

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, "A", cycleErr.Repo)
}

func TestResolveOrder_IsDeterministic(t *testing.T) {
	repos := []workspace.Repo{
		repo("F", "D", "E"),
		repo("E", "A"),
		repo("D", "A"),
		repo("A"),
	}
	first, err := ResolveOrder(repos)
	require.NoError(t, err)
	second, err := ResolveOrder(repos)
	require.NoError(t, err)
	assert.Equal(t, names(first), names(second))
	assert.Equal(t, []string{"A", "D", "E", "F"}, names(first))
}

func TestResolveLevels_Chain(t *testing.T) {
	levels, err := ResolveLevels(chain())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}, {"B"}, {"C"}}, levelNames(levels))
}

func TestResolveLevels_Diamond(t *testing.T) {
	repos := []workspace.Repo{
		repo("A"),
		repo("D", "A"),
		repo("E", "A"),
		repo("F", "D", "E"),
	}
	levels, err := ResolveLevels(repos)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"A"}, names(levels[0]))
	assert.ElementsMatch(t, []string{"D", "E"}, names(levels[1]))
	assert.Equal(t, []string{"F"}, names(levels[2]))
}

func TestResolveLevels_NoDependenciesIsSingleLevel(t *testing.T) {
	levels, err := ResolveLevels([]workspace.Repo{repo("X"), repo("Y"), repo("Z")})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"X", "Y", "Z"}}, levelNames(levels))
}

func TestResolveLevels_Empty(t *testing.T) {
	levels, err := ResolveLevels(nil)
	require.NoError(t, err)
	assert.Empty(t, levels)
}

func TestResolveLevels_Cycle(t *testing.T) {
	_, err := ResolveLevels([]workspace.Repo{repo("A", "B"), repo("B", "A")})
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
}

func TestResolveLevels_UnknownDependencyDoesNotRaiseLevel(t *testing.T) {
	levels, err := ResolveLevels([]workspace.Repo{repo("A", "ghost"), repo("B")})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B"}}, levelNames(levels))
}

// randomDAG only lets repo i depend on repos with a smaller index, then
// shuffles the slice so declaration order does not match dependency order.
func randomDAG(r *rand.Rand, n int) []workspace.Repo {
	repos := make([]workspace.Repo, n)
	for i := range repos {
		repos[i].Name = fmt.Sprintf("r%02d", i)
		for j := 0; j < i; j++ {
			if r.Intn(4) == 0 {
				repos[i].DependsOn = append(repos[i].DependsOn, repos[j].Name)
			}
		}
		if r.Intn(5) == 0 {
			repos[i].DependsOn = append(repos[i].DependsOn, "external-"+repos[i].Name)
		}
	}
	r.Shuffle(len(repos), func(i, j int) { repos[i], repos[j] = repos[j], repos[i] })
	return repos
}

func TestResolveOrder_DependenciesPrecedeDependents(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		repos := randomDAG(rng, 2+rng.Intn(20))
		order, err := ResolveOrder(repos)
		require.NoError(t, err)
		require.Len(t, order, len(repos))

		pos := make(map[string]int, len(order))
		for i, r := range order {
			pos[r.Name] = i
		}
		for _, r := range order {
			for _, d := range r.DependsOn {
				if dp, ok := pos[d]; ok {
					assert.Less(t, dp, pos[r.Name], "%s must come before %s", d, r.Name)
				}
			}
		}
	}
}

func TestResolveLevels_MinimalAndIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iter := 0; iter < 50; iter++ {
		repos := randomDAG(rng, 2+rng.Intn(20))
		levels, err := ResolveLevels(repos)
		require.NoError(t, err)

		levelOf := make(map[string]int)
		total := 0
		for l, bucket := range levels {
			require.NotEmpty(t, bucket)
			for _, r := range bucket {
				levelOf[r.Name] = l
				total++
			}
		}
		require.Equal(t, len(repos), total)

		for _, r := range repos {
			want := 0
			for _, d := range r.DependsOn {
				if dl, ok := levelOf[d]; ok && dl+1 > want {
					want = dl + 1
				}
			}
			assert.Equal(t, want, levelOf[r.Name], "level of %s", r.Name)
		}

		for _, bucket := range levels {
			for _, a := range bucket {
				closure := TransitiveDeps(repos, a.Name)
				for _, b := range bucket {
					_, dependsOnB := closure[b.Name]
					assert.False(t, dependsOnB, "%s and %s share a level but %s depends on %s", a.Name, b.Name, a.Name, b.Name)
				}
			}
		}
	}
}
