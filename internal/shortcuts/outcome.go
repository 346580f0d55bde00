package shortcuts

import "time"

// Status is the closed set of terminal states an invocation can reach.
type Status string

const (
	StatusSucceeded    Status = "Succeeded"
	StatusFailed       Status = "Failed"
	StatusTimedOut     Status = "TimedOut"
	StatusCancelled    Status = "Cancelled"
	StatusLaunchFailed Status = "LaunchFailed"
)

// Outcome describes the result of one shortcut run. It is constructed once
// by the runner and never mutated afterwards. Expected failures (non-zero
// exit, timeout, cancellation, launch failure) are all represented here
// rather than as Go errors.
type Outcome struct {
	Status Status
	// Command is the argv that was executed. Empty when the runner binary
	// could not be resolved at all.
	Command []string
	// ExitCode is set for Succeeded and Failed only.
	ExitCode *int
	Stdout   string
	Stderr   string
	// Duration is the observed wall-clock run time.
	Duration time.Duration
	// Diagnostic carries a human-readable explanation for LaunchFailed.
	Diagnostic string
}
