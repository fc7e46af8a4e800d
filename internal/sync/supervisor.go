package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/prashanthellina/pullbox/internal/proc"
)

// RetryPolicy fixes the pacing of a supervised loop.
type RetryPolicy struct {
	// SuccessDelay is the pause after a clean iteration.
	SuccessDelay time.Duration

	// FailureDelay is the pause after a failed iteration, before retrying.
	FailureDelay time.Duration
}

// KeepRunning invokes op forever. Interruption, whether context
// cancellation or an interrupted child process, ends the loop and
// propagates. Every other error is logged and retried after the failure
// delay, so one bad cycle never takes the loop down.
func KeepRunning(ctx context.Context, log *slog.Logger, name string, op func(context.Context) error, policy RetryPolicy) error {
	for {
		err := op(ctx)

		switch {
		case err == nil:
			if !pause(ctx, policy.SuccessDelay) {
				return ctx.Err()
			}

		case proc.IsInterruption(err):
			return err

		default:
			log.Error("loop iteration failed", "loop", name, "error", err)
			if !pause(ctx, policy.FailureDelay) {
				return ctx.Err()
			}
		}
	}
}

// pause waits d unless the context ends first, reporting whether the full
// wait elapsed. A non-positive d still yields a cancellation check.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
