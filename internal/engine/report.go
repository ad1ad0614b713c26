package engine

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// TestSuffix marks the result of a repo's test phase.
const TestSuffix = " (test)"

// RepoResult is the outcome of one build or test command on one repository.
type RepoResult struct {
	// Repo is the repository name; test results carry TestSuffix.
	Repo    string
	Success bool
	// Output is captured stdout on success, or the error text on failure.
	Output   string
	Duration time.Duration
}

// IsTest reports whether r came from a test phase.
func (r RepoResult) IsTest() bool {
	return strings.HasSuffix(r.Repo, TestSuffix)
}

func (r RepoResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Repo       string `json:"repo_name"`
		Success    bool   `json:"success"`
		Output     string `json:"output"`
		DurationMs int64  `json:"duration_ms"`
	}{r.Repo, r.Success, r.Output, r.Duration.Milliseconds()})
}

// BuildReport is the terminal output of a build call.
//
// Results are in recording order. For parallel builds that is completion
// order within a level; every result of level L precedes level L+1.
type BuildReport struct {
	Results       []RepoResult
	TotalDuration time.Duration
	AllPassed     bool
}

func (b BuildReport) MarshalJSON() ([]byte, error) {
	results := b.Results
	if results == nil {
		results = []RepoResult{}
	}
	return json.Marshal(struct {
		Results         []RepoResult `json:"results"`
		TotalDurationMs int64        `json:"total_duration_ms"`
		AllPassed       bool         `json:"all_passed"`
	}{results, b.TotalDuration.Milliseconds(), b.AllPassed})
}

// Failed returns the results that did not succeed.
func (b BuildReport) Failed() []RepoResult {
	var out []RepoResult
	for _, r := range b.Results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// collector holds the state shared by concurrent workers: the append-only
// result list and the failure flag. Each method is its own critical section;
// nothing holds mu while a command runs.
type collector struct {
	mu       sync.Mutex
	results  []RepoResult
	failed   bool
	onResult func(RepoResult)
}

func newCollector(onResult func(RepoResult)) *collector {
	return &collector{onResult: onResult}
}

func (c *collector) record(r RepoResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
	if !r.Success {
		c.failed = true
	}
	if c.onResult != nil {
		c.onResult(r)
	}
}

func (c *collector) hasFailed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

func (c *collector) report(elapsed time.Duration) *BuildReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]RepoResult, len(c.results))
	copy(results, c.results)

	allPassed := true
	for _, r := range results {
		if !r.Success {
			allPassed = false
			break
		}
	}
	return &BuildReport{
		Results:       results,
		TotalDuration: elapsed,
		AllPassed:     allPassed,
	}
}
