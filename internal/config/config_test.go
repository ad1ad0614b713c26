package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repobuild/internal/flags"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "text", cfg.Output.ConsoleFormat)
	assert.Equal(t, "text", cfg.Runtime.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel())
	assert.Zero(t, cfg.Build.Jobs)
}

func TestValidate_NormalizesLists(t *testing.T) {
	cfg := New()
	cfg.Output.Emit = []string{"JSON, ndjson", ",,"}
	cfg.Output.ConsoleFilterStatus = []string{"fail"}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"json", "ndjson"}, cfg.Output.Emit)
	assert.Equal(t, []string{"FAIL"}, cfg.Output.ConsoleFilterStatus)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"verbose and quiet", func(c *Config) { c.Runtime.Verbose, c.Runtime.Quiet = true, true }, "mutually exclusive"},
		{"negative jobs", func(c *Config) { c.Build.Jobs = -1 }, "--jobs"},
		{"console format", func(c *Config) { c.Output.ConsoleFormat = "yaml" }, "--console-format"},
		{"empty console format", func(c *Config) { c.Output.ConsoleFormat = " " }, "--console-format"},
		{"log format", func(c *Config) { c.Runtime.LogFormat = "logfmt" }, "--log-format"},
		{"emit", func(c *Config) { c.Output.Emit = []string{"xml"} }, "--emit"},
		{"filter status", func(c *Config) { c.Output.ConsoleFilterStatus = []string{"ERROR"} }, "--console-filter-status"},
		{"out without extension", func(c *Config) { c.Output.Out = "build" }, "missing extension"},
		{"out unknown extension", func(c *Config) { c.Output.Out = "build.txt" }, `".txt"`},
		{"out format", func(c *Config) { c.Output.Out = "build.json"; c.Output.OutFormat = "csv" }, "unsupported output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_InfersOutFormat(t *testing.T) {
	for out, want := range map[string]string{
		"build.json":   "json",
		"build.ndjson": "ndjson",
		"build.jsonl":  "ndjson",
	} {
		cfg := New()
		cfg.Output.Out = out
		require.NoError(t, cfg.Validate(), out)
		assert.Equal(t, want, cfg.Output.OutFormat, out)
	}
}

func TestLogLevel(t *testing.T) {
	cfg := New()
	cfg.Runtime.Verbose = true
	assert.Equal(t, "debug", cfg.LogLevel())

	cfg = New()
	cfg.Runtime.Quiet = true
	assert.Equal(t, "error", cfg.LogLevel())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvWorkspace, "/env/ws")
	t.Setenv(EnvManifest, "/env/ws/.repobuild/workspace.yaml")
	t.Setenv(EnvNoColor, "true")

	cfg := New()
	require.NoError(t, cfg.ApplyEnv(func(string) bool { return false }))
	assert.Equal(t, "/env/ws", cfg.Workspace.Root)
	assert.Equal(t, "/env/ws/.repobuild/workspace.yaml", cfg.Workspace.Manifest)
	assert.True(t, cfg.Output.NoColor)
}

func TestApplyEnv_FlagsWin(t *testing.T) {
	t.Setenv(EnvWorkspace, "/env/ws")
	t.Setenv(EnvNoColor, "1")

	cfg := New()
	cfg.Workspace.Root = "/flag/ws"
	changed := func(name string) bool { return name == flags.FlagWorkspace || name == flags.FlagNoColor }
	require.NoError(t, cfg.ApplyEnv(changed))
	assert.Equal(t, "/flag/ws", cfg.Workspace.Root)
	assert.False(t, cfg.Output.NoColor)
}

func TestApplyEnv_InvalidBool(t *testing.T) {
	t.Setenv(EnvNoColor, "maybe")
	err := New().ApplyEnv(func(string) bool { return false })
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvNoColor)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("REPOBUILD_DOTENV_TEST=from-file\n"), 0o644))
	t.Setenv("REPOBUILD_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("REPOBUILD_DOTENV_TEST"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("REPOBUILD_DOTENV_TEST"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
