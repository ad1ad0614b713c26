package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"repobuild/internal/config"
	"repobuild/internal/flags"
	"repobuild/internal/runner"
	"repobuild/internal/workspace"
)

func newReposCmd(cfg *config.Config) *cobra.Command {
	var namesOnly bool
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List workspace repos",
		Long: `List the repos declared in the workspace manifest, in manifest order.

Each entry shows the repo's path, its declared dependencies, and the build
and test commands that would run (after defaults and language detection).

Examples:
  repobuild repos
  repobuild repos --names
`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, m, err := loadWorkspace(cfg)
			if err != nil {
				return err
			}
			for i := range m.Repos {
				if namesOnly {
					fmt.Fprintln(cmd.OutOrStdout(), m.Repos[i].Name)
					continue
				}
				printRepo(cmd.OutOrStdout(), root, m, &m.Repos[i])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&namesOnly, flags.FlagNames, false, "Only print repo names")
	return cmd
}

func printRepo(w io.Writer, root string, m *workspace.Manifest, r *workspace.Repo) {
	bold := color.New(color.Bold)
	dir := filepath.Join(root, m.Workspace.Root, r.LocalPath())
	cmds := runner.Resolve(dir,
		runner.Commands{Build: r.BuildCmd, Test: r.TestCmd, Clean: r.CleanCmd},
		runner.Commands{Build: m.Defaults.BuildCmd, Test: m.Defaults.TestCmd},
	)

	bold.Fprintf(w, "%s\n", r.Name)
	fmt.Fprintf(w, "  path:       %s\n", r.LocalPath())
	if r.URL != "" {
		fmt.Fprintf(w, "  url:        %s\n", r.URL)
	}
	fmt.Fprintf(w, "  branch:     %s\n", r.DefaultBranch)
	deps := "(none)"
	if len(r.DependsOn) > 0 {
		deps = strings.Join(r.DependsOn, ", ")
	}
	fmt.Fprintf(w, "  depends on: %s\n", deps)
	fmt.Fprintf(w, "  build:      %s\n", cmds.Build)
	fmt.Fprintf(w, "  test:       %s\n", cmds.Test)
	if cmds.Clean != "" {
		fmt.Fprintf(w, "  clean:      %s\n", cmds.Clean)
	}
	fmt.Fprintln(w)
}
