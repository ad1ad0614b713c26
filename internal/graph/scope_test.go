package graph

import (
	"errors"
	"testing"

	"repobuild/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitiveDeps_Chain(t *testing.T) {
	deps := TransitiveDeps(chain(), "C")
	assert.Equal(t, []string{"A", "B"}, SortedNames(deps))
}

func TestTransitiveDeps_DiamondCountsSharedDependencyOnce(t *testing.T) {
	repos := []workspace.Repo{
		repo("A"),
		repo("D", "A"),
		repo("E", "A"),
		repo("F", "D", "E"),
		repo("unrelated"),
	}
	deps := TransitiveDeps(repos, "F")
	assert.Len(t, deps, 3)
	assert.Equal(t, []string{"A", "D", "E"}, SortedNames(deps))
}

func TestTransitiveDeps_LeafHasNone(t *testing.T) {
	assert.Empty(t, TransitiveDeps(chain(), "A"))
}

func TestTransitiveDeps_SkipsUnknownNames(t *testing.T) {
	repos := []workspace.Repo{repo("A", "ghost"), repo("B", "A")}
	assert.Equal(t, []string{"A"}, SortedNames(TransitiveDeps(repos, "B")))
}

func TestTransitiveDeps_TerminatesOnCycle(t *testing.T) {
	repos := []workspace.Repo{repo("A", "B"), repo("B", "C"), repo("C", "A")}
	assert.Equal(t, []string{"B", "C"}, SortedNames(TransitiveDeps(repos, "A")))
}

func TestScope_IncludesTarget(t *testing.T) {
	set, err := Scope(chain(), "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, SortedNames(set))
}

func TestScope_UnknownTarget(t *testing.T) {
	_, err := Scope(chain(), "nope")
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nope", nf.Repo)
	assert.Equal(t, "repo 'nope' not found", err.Error())
}
