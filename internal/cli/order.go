package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"repobuild/internal/config"
	"repobuild/internal/engine"
	"repobuild/internal/flags"
)

type orderOptions struct {
	levels bool
	json   bool
}

func newOrderCmd(cfg *config.Config) *cobra.Command {
	var opts orderOptions
	cmd := &cobra.Command{
		Use:   "order [repo]",
		Short: "Print the dependency order without building",
		Long: `Print the order repos would be built in.

With --levels, print the groups --parallel would run concurrently. With a
repo name, only that repo and its transitive dependencies are shown.

Examples:
  repobuild order
  repobuild order api --levels
  repobuild order --json
`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runOrder(cmd.OutOrStdout(), cfg, target, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.levels, flags.FlagLevels, false, "Group repos into parallel build levels")
	cmd.Flags().BoolVar(&opts.json, flags.FlagJSON, false, "Print JSON instead of text")
	return cmd
}

func runOrder(w io.Writer, cfg *config.Config, target string, opts orderOptions) error {
	_, m, err := loadWorkspace(cfg)
	if err != nil {
		return err
	}

	if opts.levels {
		levels, err := engine.Levels(m, target)
		if err != nil {
			return err
		}
		named := make([][]string, 0, len(levels))
		for _, level := range levels {
			named = append(named, repoNames(level))
		}
		if opts.json {
			return writeJSON(w, map[string]any{"levels": named})
		}
		for i, names := range named {
			fmt.Fprintf(w, "level %d:\n", i)
			for _, name := range names {
				fmt.Fprintf(w, "  %s\n", name)
			}
		}
		return nil
	}

	order, err := engine.Order(m, target)
	if err != nil {
		return err
	}
	names := repoNames(order)
	if opts.json {
		return writeJSON(w, map[string]any{"order": names})
	}
	for i, name := range names {
		fmt.Fprintf(w, "%d. %s\n", i+1, name)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
