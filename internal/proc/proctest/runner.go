// Package proctest provides a scripted proc.Runner for tests.
package proctest

import (
	"context"
	"sync"

	"github.com/prashanthellina/pullbox/internal/proc"
)

// Handler scripts one invocation. It returns the exit code the fake
// process ends with, or an error to simulate a spawn failure. Handlers
// may block on ctx to imitate long-running commands.
type Handler func(ctx context.Context, cmd proc.Command) (int, error)

// Runner records every command it is asked to run and answers with the
// scripted handler. A nil handler makes every command exit 0.
type Runner struct {
	mu      sync.Mutex
	calls   []proc.Command
	handler Handler
}

var _ proc.Runner = (*Runner)(nil)

func New(handler Handler) *Runner {
	return &Runner{handler: handler}
}

func (r *Runner) Run(ctx context.Context, cmd proc.Command) (proc.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()

	code := 0
	if r.handler != nil {
		var err error
		code, err = r.handler(ctx, cmd)
		if err != nil {
			return proc.Result{Cmd: cmd.String(), Outcome: proc.OutcomeFailed}, err
		}
	}
	return proc.Classify(cmd, code)
}

// Calls returns a copy of every command run so far.
func (r *Runner) Calls() []proc.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]proc.Command(nil), r.calls...)
}

// Lines returns the rendered command line of every call, in order.
func (r *Runner) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Reset forgets recorded calls.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
