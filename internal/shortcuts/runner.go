package shortcuts

import (
	"context"
	"os/exec"
	"time"
)

// Runner is the interface for shortcut execution.
type Runner interface {
	Run(ctx context.Context, opts RunOptions) Outcome
}

// RunOptions configures a single shortcut run.
type RunOptions struct {
	// Name is the display name of the shortcut. The caller validates it is
	// non-empty before calling Run.
	Name string
	// Input, when non-empty, is written to the shortcut's stdin and the
	// stream is closed. The run is never interactive.
	Input string
	// Timeout bounds the run's wall-clock time. Zero means unbounded; the
	// shared cancellation context still applies.
	Timeout time.Duration
}

// CheckBinary returns true if the runner binary exists in PATH.
func CheckBinary(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}
