package shortcuts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/freema/shortcutd/internal/metrics"
)

const (
	// DefaultMaxOutputBytes caps each captured stream.
	DefaultMaxOutputBytes = 256 * 1024
	// DefaultKillGrace is the window between SIGTERM and SIGKILL when a run
	// has to be stopped.
	DefaultKillGrace = 2 * time.Second
)

// Config bounds the runs of a CLIRunner.
type Config struct {
	MaxOutputBytes int
	KillGrace      time.Duration
}

// CLIRunner executes shortcuts via the `shortcuts run` command line tool.
type CLIRunner struct {
	binaryPath string
	maxOutput  int
	killGrace  time.Duration
}

// NewCLIRunner creates a runner for the given shortcuts binary.
func NewCLIRunner(binaryPath string, cfg Config) *CLIRunner {
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = DefaultKillGrace
	}
	return &CLIRunner{
		binaryPath: binaryPath,
		maxOutput:  cfg.MaxOutputBytes,
		killGrace:  cfg.KillGrace,
	}
}

// Run executes `<runner> run <name>` and races process exit against the
// timeout and the context. Whichever fires first decides the outcome; on
// timeout or cancellation the child process group is terminated before Run
// returns, so no child ever outlives the call.
func (r *CLIRunner) Run(ctx context.Context, opts RunOptions) Outcome {
	binary, err := exec.LookPath(r.binaryPath)
	if err != nil {
		return Outcome{
			Status: StatusLaunchFailed,
			Diagnostic: fmt.Sprintf(
				"the %q command line tool is not available: install the Shortcuts CLI and ensure it is on PATH", r.binaryPath),
		}
	}

	command := []string{binary, "run", opts.Name}
	cmd := exec.Command(command[0], command[1:]...)
	// Own process group so termination reaches anything the shortcut spawns.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout := newCappedBuffer(r.maxOutput)
	stderr := newCappedBuffer(r.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if opts.Input != "" {
		cmd.Stdin = strings.NewReader(opts.Input)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{
			Status:     StatusLaunchFailed,
			Command:    command,
			Diagnostic: fmt.Sprintf("unable to start %q: %v", binary, err),
		}
	}

	log := slog.With("shortcut", opts.Name, "pid", cmd.Process.Pid)
	log.Debug("shortcut started", "timeout", opts.Timeout)

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var timeoutCh <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	out := Outcome{Command: command}

	select {
	case waitErr := <-waitCh:
		out.Duration = time.Since(start)
		code := -1
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
		out.ExitCode = &code
		if waitErr == nil {
			out.Status = StatusSucceeded
		} else {
			var exitErr *exec.ExitError
			if !errors.As(waitErr, &exitErr) {
				log.Warn("wait failed for a reason other than a non-zero exit", "error", waitErr)
			}
			out.Status = StatusFailed
		}

	case <-timeoutCh:
		r.terminate(cmd, waitCh, log)
		out.Duration = time.Since(start)
		out.Status = StatusTimedOut

	case <-ctx.Done():
		r.terminate(cmd, waitCh, log)
		out.Duration = time.Since(start)
		out.Status = StatusCancelled
	}

	out.Stdout = stdout.String()
	out.Stderr = stderr.String()
	if stdout.Truncated() || stderr.Truncated() {
		metrics.OutputTruncations.Inc()
		log.Warn("shortcut output truncated", "cap_bytes", r.maxOutput)
	}

	log.Debug("shortcut finished", "status", out.Status, "duration", out.Duration)
	return out
}

// terminate stops the child process group: first SIGTERM, then SIGKILL once
// the grace window elapses. It returns only after the process is reaped.
func (r *CLIRunner) terminate(cmd *exec.Cmd, waitCh <-chan error, log *slog.Logger) {
	signalGroup(cmd, syscall.SIGTERM)

	select {
	case <-waitCh:
		return
	case <-time.After(r.killGrace):
	}

	log.Warn("shortcut ignored SIGTERM, killing process group")
	signalGroup(cmd, syscall.SIGKILL)
	<-waitCh
}

// signalGroup sends sig to the entire process group, falling back to the
// process itself when the group cannot be resolved.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd.Process == nil {
		return
	}
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		_ = syscall.Kill(-pgid, sig)
		return
	}
	_ = cmd.Process.Signal(sig)
}
