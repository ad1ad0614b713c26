package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// config packages. Keeping these as constants helps avoid drift between Cobra
// flag wiring and code that asks whether a flag was set (e.g. environment
// overrides in config.ApplyEnv).
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().BoolVar(&cfg.Build.Parallel, flags.FlagParallel, false, "...")
//	arg := "--" + flags.FlagParallel
const (
	// Global
	FlagWorkspace = "workspace"
	FlagManifest  = "manifest"
	FlagVerbose   = "verbose"
	FlagQuiet     = "quiet"
	FlagNoColor   = "no-color"
	FlagLogFormat = "log-format"

	// Build
	FlagParallel = "parallel"
	FlagTest     = "test"
	FlagClean    = "clean"
	FlagJobs     = "jobs"
	FlagDryRun   = "dry-run"

	// Order
	FlagLevels = "levels"
	FlagJSON   = "json"

	// Repos
	FlagNames = "names"

	// Output
	FlagConsoleFormat       = "console-format"
	FlagConsoleFilterStatus = "console-filter-status"
	FlagReport              = "report"
	FlagOut                 = "out"
	FlagOutFormat           = "out-format"
	FlagEmit                = "emit"
	FlagNoConsole           = "no-console"
)
