package runner

import (
	"os"
	"path/filepath"
)

const (
	FallbackBuildCmd = "make"
	FallbackTestCmd  = "make test"
)

// Commands is the resolved command set for one repository.
type Commands struct {
	Build string
	Test  string
	Clean string
}

type marker struct {
	file  string
	build string
	test  string
}

// Checked in order; the first marker file present in the repo wins.
var markers = []marker{
	{file: "go.mod", build: "go build ./...", test: "go test ./..."},
	{file: "Cargo.toml", build: "cargo build", test: "cargo test"},
	{file: "package.json", build: "npm run build", test: "npm test"},
	{file: "Makefile", build: "make", test: "make test"},
}

// Resolve picks the commands for a repo: explicit values first, then the
// workspace defaults, then a language marker found in dir, then make.
// A value counts as set when it is non-empty, so a whitespace-only command
// is kept and later fails with ErrEmptyCommand instead of being replaced.
// Clean has no default; an empty Clean means the clean phase is skipped.
func Resolve(dir string, explicit, defaults Commands) Commands {
	out := Commands{
		Build: firstSet(explicit.Build, defaults.Build),
		Test:  firstSet(explicit.Test, defaults.Test),
		Clean: explicit.Clean,
	}
	if out.Build != "" && out.Test != "" {
		return out
	}

	build, test := detect(dir)
	if out.Build == "" {
		out.Build = build
	}
	if out.Test == "" {
		out.Test = test
	}
	return out
}

func detect(dir string) (build, test string) {
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(dir, m.file)); err == nil {
			return m.build, m.test
		}
	}
	return FallbackBuildCmd, FallbackTestCmd
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
