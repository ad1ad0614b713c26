package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"repobuild/internal/flags"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvWorkspace = "REPOBUILD_WORKSPACE"
	EnvManifest  = "REPOBUILD_MANIFEST"
	EnvNoColor   = "REPOBUILD_NO_COLOR"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv fills fields from the environment. changed reports whether a flag
// was given on the command line; those values are left alone.
func (c *Config) ApplyEnv(changed func(flag string) bool) error {
	if v, ok := lookupNonEmpty(EnvWorkspace); ok && !changed(flags.FlagWorkspace) {
		c.Workspace.Root = v
	}
	if v, ok := lookupNonEmpty(EnvManifest); ok && !changed(flags.FlagManifest) {
		c.Workspace.Manifest = v
	}
	if v, ok := lookupNonEmpty(EnvNoColor); ok && !changed(flags.FlagNoColor) {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvNoColor, v, err)
		}
		c.Output.NoColor = b
	}
	return nil
}

func lookupNonEmpty(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
