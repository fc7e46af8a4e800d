package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ExecRunner runs commands as real subprocesses. Child output is discarded;
// callers learn everything they need from the exit code.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Bin, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Run(); err != nil {
		// a kill from context cancellation surfaces as the context's
		// error, not as an exit-code classification
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{Cmd: c.String(), Outcome: OutcomeInterrupted}, ctxErr
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{Cmd: c.String(), Outcome: OutcomeFailed},
				fmt.Errorf("start %s: %w", c.Bin, err)
		}
		return Classify(c, exitErr.ExitCode())
	}

	return Classify(c, 0)
}
