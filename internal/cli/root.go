package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"repobuild/internal/config"
	"repobuild/internal/ctxlog"
	"repobuild/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// dotEnvPath is loaded into the environment before flags are resolved.
var dotEnvPath = ".env"

const rootLong = `repobuild builds a workspace of repositories in dependency order.

Repositories and their dependencies are declared in .repobuild/workspace.toml
(or workspace.yaml) at the workspace root. repobuild finds the root by walking
up from the current directory unless --workspace or --manifest is given.

Examples:
	# Build every repo, one at a time, in dependency order
	repobuild build

	# Build api and everything it depends on, independent repos concurrently
	repobuild build api --parallel --test

	# Preview the order without running anything
	repobuild order --levels

Environment:
	REPOBUILD_WORKSPACE, REPOBUILD_MANIFEST and REPOBUILD_NO_COLOR stand in for
	--workspace, --manifest and --no-color when those flags are not given.
	A .env file in the current directory is loaded first.`

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "repobuild",
		Short:         "Build multi-repo workspaces in dependency order",
		Long:          rootLong,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return prepare(cmd, cfg)
		},
	}
	root.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.Workspace.Root, flags.FlagWorkspace, "w", "", "Workspace root (default: search upward for .repobuild/)")
	pf.StringVarP(&cfg.Workspace.Manifest, flags.FlagManifest, "m", "", "Path to the workspace manifest (overrides the lookup under the root)")
	pf.BoolVarP(&cfg.Runtime.Verbose, flags.FlagVerbose, "v", false, "Enable debug logging")
	pf.BoolVarP(&cfg.Runtime.Quiet, flags.FlagQuiet, "q", false, "Only log errors")
	pf.BoolVar(&cfg.Output.NoColor, flags.FlagNoColor, false, "Disable coloured output")
	pf.StringVar(&cfg.Runtime.LogFormat, flags.FlagLogFormat, "text", "Log format on stderr: text|json")

	root.AddCommand(newBuildCmd(cfg))
	root.AddCommand(newOrderCmd(cfg))
	root.AddCommand(newReposCmd(cfg))
	root.AddCommand(newVersionCmd())
	return root
}

// prepare resolves configuration once flags are parsed: .env, environment
// overrides, validation, colour and the logger carried by the command context.
func prepare(cmd *cobra.Command, cfg *config.Config) error {
	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		return usageError(err)
	}
	if err := cfg.ApplyEnv(cmd.Flags().Changed); err != nil {
		return usageError(err)
	}
	if err := cfg.Validate(); err != nil {
		return usageError(err)
	}
	if cfg.Output.NoColor {
		color.NoColor = true
	}

	logger := ctxlog.New(cmd.ErrOrStderr(), cfg.LogLevel(), cfg.Runtime.LogFormat)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(ctxlog.WithLogger(ctx, logger))
	return nil
}

// usageArgs marks positional-argument errors as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	cfg := config.New()
	root := newRootCmd(cfg)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	if err != nil {
		if msg := reportable(err); msg != "" {
			fmt.Fprintf(stderr, "error: %s\n", msg)
		}
	}
	return exitCodeFor(err)
}

func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
