package cli

import (
	"os"
	"path/filepath"

	"repobuild/internal/config"
	"repobuild/internal/workspace"
)

// loadWorkspace resolves the workspace root and manifest from cfg. Every
// failure carries ExitWorkspace.
func loadWorkspace(cfg *config.Config) (string, *workspace.Manifest, error) {
	if cfg.Workspace.Manifest != "" {
		m, err := workspace.Load(cfg.Workspace.Manifest)
		if err != nil {
			return "", nil, withExitCode(ExitWorkspace, err)
		}
		root := cfg.Workspace.Root
		if root == "" {
			root = rootForManifest(cfg.Workspace.Manifest)
		}
		return absRoot(root, m)
	}

	root := cfg.Workspace.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, withExitCode(ExitWorkspace, err)
		}
		root, err = workspace.FindRoot(wd)
		if err != nil {
			return "", nil, withExitCode(ExitWorkspace, err)
		}
	}

	m, err := workspace.LoadFromRoot(root)
	if err != nil {
		return "", nil, withExitCode(ExitWorkspace, err)
	}
	return absRoot(root, m)
}

// rootForManifest treats <root>/.repobuild/<file> as belonging to <root> and
// any other manifest as belonging to its own directory.
func rootForManifest(path string) string {
	dir := filepath.Dir(path)
	if filepath.Base(dir) == workspace.Dir {
		return filepath.Dir(dir)
	}
	return dir
}

func absRoot(root string, m *workspace.Manifest) (string, *workspace.Manifest, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", nil, withExitCode(ExitWorkspace, err)
	}
	return abs, m, nil
}
