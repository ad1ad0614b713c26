package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the marker directory that identifies a workspace root.
	Dir = ".repobuild"

	ManifestTOML = "workspace.toml"
	ManifestYAML = "workspace.yaml"

	defaultBranch = "main"
)

// ErrNoWorkspace is returned by FindRoot when no ancestor directory contains Dir.
var ErrNoWorkspace = errors.New("no repobuild workspace found")

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Manifest is the decoded workspace manifest (.repobuild/workspace.toml).
type Manifest struct {
	Workspace Info     `toml:"workspace" yaml:"workspace"`
	Defaults  Defaults `toml:"defaults" yaml:"defaults"`
	Repos     []Repo   `toml:"repos" yaml:"repos"`
}

type Info struct {
	Name string `toml:"name" yaml:"name"`
	Root string `toml:"root" yaml:"root"`
}

// Defaults are workspace-wide fallbacks for repos without their own commands.
type Defaults struct {
	BuildCmd string `toml:"build_cmd" yaml:"build_cmd"`
	TestCmd  string `toml:"test_cmd" yaml:"test_cmd"`
}

// Repo describes one workspace member.
type Repo struct {
	Name          string `toml:"name" yaml:"name" json:"name"`
	URL           string `toml:"url" yaml:"url" json:"url,omitempty"`
	Path          string `toml:"path" yaml:"path" json:"path,omitempty"`
	DefaultBranch string `toml:"default_branch" yaml:"default_branch" json:"default_branch,omitempty"`

	BuildCmd string `toml:"build_cmd" yaml:"build_cmd" json:"build_cmd,omitempty"`
	TestCmd  string `toml:"test_cmd" yaml:"test_cmd" json:"test_cmd,omitempty"`
	CleanCmd string `toml:"clean_cmd" yaml:"clean_cmd" json:"clean_cmd,omitempty"`

	// DependsOn names repos that must be built first. Names that do not match
	// a repo in the manifest are ignored by the graph walk.
	DependsOn []string `toml:"depends_on" yaml:"depends_on" json:"depends_on,omitempty"`
}

// LocalPath is the repo's location relative to the workspace root.
func (r Repo) LocalPath() string {
	if strings.TrimSpace(r.Path) != "" {
		return r.Path
	}
	return r.Name
}

// Parse decodes a manifest and applies defaults. The result is validated.
func Parse(b []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatTOML, "":
		if _, err := toml.Decode(string(b), &m); err != nil {
			return nil, fmt.Errorf("failed to parse workspace manifest: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("failed to parse workspace manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", format)
	}

	if m.Workspace.Root == "" {
		m.Workspace.Root = "."
	}
	for i := range m.Repos {
		if m.Repos[i].DefaultBranch == "" {
			m.Repos[i].DefaultBranch = defaultBranch
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads a manifest file; the format is inferred from its extension.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace manifest: %w", err)
	}
	format, err := formatFromPath(path)
	if err != nil {
		return nil, err
	}
	return Parse(b, format)
}

// LoadFromRoot loads the manifest under root/.repobuild, preferring TOML.
func LoadFromRoot(root string) (*Manifest, error) {
	path, err := ManifestPath(root)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// ManifestPath returns the first manifest file present under root/.repobuild.
func ManifestPath(root string) (string, error) {
	dir := filepath.Join(root, Dir)
	for _, name := range []string{ManifestTOML, ManifestYAML, "workspace.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no workspace manifest in %s: %w", dir, ErrNoWorkspace)
}

// FindRoot walks up from start until it finds a directory containing Dir.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		info, err := os.Stat(filepath.Join(dir, Dir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w (searched upward from %s)", ErrNoWorkspace, start)
		}
		dir = parent
	}
}

// Validate enforces the uniqueness invariant the graph resolver relies on.
func (m *Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m.Repos))
	for i, r := range m.Repos {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return fmt.Errorf("repo #%d has no name", i+1)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("repo %q is declared more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// FindRepo returns the repo with the given name, or nil.
func (m *Manifest) FindRepo(name string) *Repo {
	for i := range m.Repos {
		if m.Repos[i].Name == name {
			return &m.Repos[i]
		}
	}
	return nil
}

func (m *Manifest) RepoNames() []string {
	names := make([]string, 0, len(m.Repos))
	for _, r := range m.Repos {
		names = append(names, r.Name)
	}
	return names
}

func formatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("cannot infer manifest format from file extension %q", filepath.Ext(path))
	}
}
