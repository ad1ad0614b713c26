package cli

import (
	"errors"
	"fmt"
)

// Exit code contract:
// 0 = success
// 1 = general error (including dependency cycles and unknown targets)
// 2 = usage or configuration error
// 4 = workspace not found or manifest unreadable
// 6 = build failed
// 10 = dry run, nothing executed
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitWorkspace   = 4
	ExitBuildFailed = 6
	ExitDryRun      = 10
)

// exitError carries a process exit code out of a command. A nil err means the
// command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func usageError(err error) error {
	return withExitCode(ExitUsage, err)
}

func exitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitGeneral
}

// reportable returns the message to print for err, or "" when the command
// already reported its outcome.
func reportable(err error) string {
	var ee *exitError
	if errors.As(err, &ee) && ee.err == nil {
		return ""
	}
	return err.Error()
}
