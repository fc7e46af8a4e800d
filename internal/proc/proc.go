// Package proc runs external commands and classifies their exit codes.
//
// Every sync operation in pullbox ultimately becomes a git or ssh
// invocation; this package is the single place where those processes are
// spawned and where their exit statuses are turned into typed outcomes.
package proc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Exit status of a process terminated by SIGINT (128 + 2).
const interruptExitCode = 130

// ErrInterrupted is returned when a command exits with the conventional
// SIGINT status. It overrides any ignorable-code configuration and must
// propagate to the caller untouched.
var ErrInterrupted = errors.New("command interrupted")

// IsInterruption reports whether err means the daemon is shutting down
// rather than that an operation failed: a canceled or expired context, or
// a child process killed by SIGINT.
func IsInterruption(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrInterrupted)
}

// CommandError is a non-ignorable nonzero exit from an external command.
type CommandError struct {
	Cmd      string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Cmd, e.ExitCode)
}

// Outcome classifies how a command invocation ended.
type Outcome string

const (
	// OutcomeOK is a zero exit.
	OutcomeOK Outcome = "ok"

	// OutcomeIgnored is a nonzero exit listed in the command's OKCodes.
	OutcomeIgnored Outcome = "ignored"

	// OutcomeFailed is any other nonzero exit.
	OutcomeFailed Outcome = "failed"

	// OutcomeInterrupted is exit status 130.
	OutcomeInterrupted Outcome = "interrupted"
)

// Command describes one external command invocation. Dir is the working
// directory for the child process; it is always passed explicitly and the
// daemon's own working directory is never changed. OKCodes lists nonzero
// exit codes to treat as ignorable for this specific command.
type Command struct {
	Bin     string
	Args    []string
	Dir     string
	OKCodes []int
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Bin
	}
	return c.Bin + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of one invocation. It is created per call and
// consumed immediately, never stored.
type Result struct {
	Cmd      string
	ExitCode int
	Outcome  Outcome
}

// Runner executes commands. The process-backed implementation is
// ExecRunner; tests substitute scripted fakes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Classify maps an exit code to a Result and error per the invocation
// rules: 130 is always an interruption, zero is success, codes in OKCodes
// are ignorable, everything else is a CommandError.
func Classify(cmd Command, exitCode int) (Result, error) {
	res := Result{Cmd: cmd.String(), ExitCode: exitCode}

	switch {
	case exitCode == interruptExitCode:
		res.Outcome = OutcomeInterrupted
		return res, ErrInterrupted
	case exitCode == 0:
		res.Outcome = OutcomeOK
		return res, nil
	case slices.Contains(cmd.OKCodes, exitCode):
		res.Outcome = OutcomeIgnored
		return res, nil
	default:
		res.Outcome = OutcomeFailed
		return res, &CommandError{Cmd: res.Cmd, ExitCode: exitCode}
	}
}
