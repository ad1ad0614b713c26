// Package runner runs a repository's build, test, and clean commands.
package runner

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrEmptyCommand is returned when a command line has no tokens.
var ErrEmptyCommand = errors.New("empty command")

// Runner synchronously runs a whitespace-tokenized command line in dir and
// returns its standard output. Commands run to completion; there is no
// timeout or cancellation at this layer.
type Runner interface {
	Run(dir, command string) (string, error)
}

// LaunchError means the process could not be started (missing binary,
// missing working directory, permissions).
type LaunchError struct {
	Command string
	Dir     string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to run '%s' in %s: %v", e.Command, e.Dir, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError means the process ran and exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command '%s' failed (exit %d):\n%s", e.Command, e.ExitCode, e.Stderr)
}

// Exec runs commands as local processes.
type Exec struct {
	// Env is appended to the current process environment.
	Env []string
}

func NewExec(env ...string) *Exec {
	return &Exec{Env: env}
}

func (x *Exec) Run(dir, command string) (string, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", ErrEmptyCommand
	}

	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Dir = dir
	if x != nil && len(x.Env) > 0 {
		cmd.Env = append(os.Environ(), x.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &ExitError{
				Command:  command,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return "", &LaunchError{Command: command, Dir: dir, Err: err}
	}
	return stdout.String(), nil
}
