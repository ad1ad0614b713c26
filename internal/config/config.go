package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep the CLI
	// flags in internal/cli and the flag names in internal/flags in sync.
	Workspace Workspace
	Build     Build
	Output    Output
	Runtime   Runtime
}

type Workspace struct {
	// Root is the workspace root directory (see --workspace). When empty the
	// root is found by walking up from the working directory.
	Root string

	// Manifest is an explicit manifest path (see --manifest). It overrides
	// the manifest lookup under Root.
	Manifest string
}

type Build struct {
	// Target limits the build to one repo and its dependencies (positional arg).
	Target string

	// Parallel builds independent repos of each level concurrently (see --parallel).
	Parallel bool

	// Test runs each repo's test command after a successful build (see --test).
	Test bool

	// Clean runs each repo's clean command before building (see --clean).
	Clean bool

	// Jobs caps concurrent workers per level in parallel mode (see --jobs).
	// 0 means one worker per repo.
	Jobs int

	// DryRun prints the build order without running anything (see --dry-run).
	DryRun bool
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleFilterStatus filters console results by status (see --console-filter-status).
	// Allowed values: PASS, FAIL.
	ConsoleFilterStatus []string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Emit writes an additional structured stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool

	// NoColor disables ANSI colour in console output (see --no-color).
	NoColor bool
}

type Runtime struct {
	// Verbose enables debug logging (see --verbose).
	Verbose bool

	// Quiet limits logging to errors (see --quiet).
	Quiet bool

	// LogFormat selects the stderr log handler (see --log-format).
	// Allowed values: text, json.
	LogFormat string
}

func New() *Config {
	return &Config{
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			LogFormat: "text",
		},
	}
}

// LogLevel maps the verbosity flags to a ctxlog level name.
func (c *Config) LogLevel() string {
	switch {
	case c.Runtime.Verbose:
		return "debug"
	case c.Runtime.Quiet:
		return "error"
	default:
		return "warn"
	}
}

func (c *Config) Validate() error {
	c.Output.Emit = splitCommaList(c.Output.Emit)
	c.Output.ConsoleFilterStatus = splitCommaList(c.Output.ConsoleFilterStatus)
	c.Build.Target = strings.TrimSpace(c.Build.Target)
	c.Workspace.Root = strings.TrimSpace(c.Workspace.Root)
	c.Workspace.Manifest = strings.TrimSpace(c.Workspace.Manifest)

	// Runtime validation
	if c.Runtime.Verbose && c.Runtime.Quiet {
		return errors.New("--verbose and --quiet are mutually exclusive")
	}
	c.Runtime.LogFormat = normalizeEnumValue(c.Runtime.LogFormat)
	if c.Runtime.LogFormat == "" {
		c.Runtime.LogFormat = "text"
	}
	if c.Runtime.LogFormat != "text" && c.Runtime.LogFormat != "json" {
		return fmt.Errorf("unsupported --log-format: %s (must be one of: text, json)", c.Runtime.LogFormat)
	}

	// Build validation
	if c.Build.Jobs < 0 {
		return errors.New("--jobs must be >= 0")
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for i, st := range c.Output.ConsoleFilterStatus {
		v := strings.ToUpper(strings.TrimSpace(st))
		if v != "PASS" && v != "FAIL" {
			return fmt.Errorf("unsupported --console-filter-status value: %s (must be one of: PASS, FAIL)", st)
		}
		c.Output.ConsoleFilterStatus[i] = v
	}

	for i, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", v)
		}
		c.Output.Emit[i] = v
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
