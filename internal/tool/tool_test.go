package tool

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/freema/shortcutd/internal/apperror"
	"github.com/freema/shortcutd/internal/shortcuts"
	"github.com/freema/shortcutd/internal/shutdown"
)

// fakeRunner records the options it was called with and returns a canned
// outcome, optionally derived from the run context.
type fakeRunner struct {
	calls   int
	lastOpt shortcuts.RunOptions
	outcome shortcuts.Outcome
	runFn   func(ctx context.Context, opts shortcuts.RunOptions) shortcuts.Outcome
}

func (f *fakeRunner) Run(ctx context.Context, opts shortcuts.RunOptions) shortcuts.Outcome {
	f.calls++
	f.lastOpt = opts
	if f.runFn != nil {
		return f.runFn(ctx, opts)
	}
	return f.outcome
}

func newHandler(r shortcuts.Runner, cfg HandlerConfig) (*Handler, *shutdown.Coordinator) {
	coord := shutdown.NewCoordinator(time.Second)
	return NewHandler(r, coord, cfg), coord
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestInvokeSucceeded(t *testing.T) {
	runner := &fakeRunner{outcome: shortcuts.Outcome{
		Status:   shortcuts.StatusSucceeded,
		Command:  []string{"shortcuts", "run", "Echo Test"},
		ExitCode: intPtr(0),
		Stdout:   "hello\n",
		Duration: 40 * time.Millisecond,
	}}
	h, _ := newHandler(runner, HandlerConfig{})

	out, err := h.Invoke(context.Background(), Input{ShortcutName: "Echo Test", TextInput: "hi"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out.Status != string(shortcuts.StatusSucceeded) {
		t.Fatalf("status %q", out.Status)
	}
	if out.ExitCode == nil || *out.ExitCode != 0 {
		t.Fatalf("exit code %v, want 0", out.ExitCode)
	}
	if out.StandardOutput != "hello\n" {
		t.Fatalf("stdout %q", out.StandardOutput)
	}
	if !strings.Contains(out.Summary, `Shortcut "Echo Test" completed successfully.`) {
		t.Fatalf("summary %q", out.Summary)
	}
	if !strings.Contains(out.Summary, "--- stdout ---\nhello") {
		t.Fatalf("summary missing stdout block: %q", out.Summary)
	}
	if runner.lastOpt.Input != "hi" {
		t.Fatalf("runner input %q, want %q", runner.lastOpt.Input, "hi")
	}
	if out.DurationMillis != 40 {
		t.Fatalf("duration %d ms, want 40", out.DurationMillis)
	}
}

func TestInvokeFailedIsNotAnError(t *testing.T) {
	runner := &fakeRunner{outcome: shortcuts.Outcome{
		Status:   shortcuts.StatusFailed,
		ExitCode: intPtr(3),
		Stderr:   "boom\n",
	}}
	h, _ := newHandler(runner, HandlerConfig{})

	out, err := h.Invoke(context.Background(), Input{ShortcutName: "Fail Test"})
	if err != nil {
		t.Fatalf("non-zero exit must not surface as an error: %v", err)
	}
	if out.Status != string(shortcuts.StatusFailed) {
		t.Fatalf("status %q", out.Status)
	}
	if !strings.Contains(out.Summary, "exited with return code 3") {
		t.Fatalf("summary %q", out.Summary)
	}
	if !strings.Contains(out.Summary, "--- stderr ---\nboom") {
		t.Fatalf("summary missing stderr block: %q", out.Summary)
	}
}

func TestInvokeValidation(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{"empty name", Input{ShortcutName: ""}, "`shortcutName`"},
		{"whitespace name", Input{ShortcutName: "   "}, "`shortcutName`"},
		{"zero timeout", Input{ShortcutName: "ok", TimeoutSeconds: floatPtr(0)}, "`timeoutSeconds`"},
		{"negative timeout", Input{ShortcutName: "ok", TimeoutSeconds: floatPtr(-1)}, "`timeoutSeconds`"},
		{"nan timeout", Input{ShortcutName: "ok", TimeoutSeconds: floatPtr(math.NaN())}, "`timeoutSeconds`"},
		{"inf timeout", Input{ShortcutName: "ok", TimeoutSeconds: floatPtr(math.Inf(1))}, "`timeoutSeconds`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			h, _ := newHandler(runner, HandlerConfig{})

			_, err := h.Invoke(context.Background(), tt.in)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("error %v is not a validation error", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not name %s", err.Error(), tt.want)
			}
			if runner.calls != 0 {
				t.Fatal("runner called despite invalid arguments")
			}
		})
	}
}

func TestInvokeTimeoutResolution(t *testing.T) {
	tests := []struct {
		name string
		cfg  HandlerConfig
		in   Input
		want time.Duration
	}{
		{"unbounded by default", HandlerConfig{}, Input{ShortcutName: "s"}, 0},
		{"request timeout", HandlerConfig{}, Input{ShortcutName: "s", TimeoutSeconds: floatPtr(2.5)}, 2500 * time.Millisecond},
		{"default applies", HandlerConfig{DefaultTimeout: 30 * time.Second}, Input{ShortcutName: "s"}, 30 * time.Second},
		{"request overrides default", HandlerConfig{DefaultTimeout: 30 * time.Second}, Input{ShortcutName: "s", TimeoutSeconds: floatPtr(5)}, 5 * time.Second},
		{"max caps request", HandlerConfig{MaxTimeout: 10 * time.Second}, Input{ShortcutName: "s", TimeoutSeconds: floatPtr(60)}, 10 * time.Second},
		{"max caps unbounded", HandlerConfig{MaxTimeout: 10 * time.Second}, Input{ShortcutName: "s"}, 10 * time.Second},
		{"request below max kept", HandlerConfig{MaxTimeout: 10 * time.Second}, Input{ShortcutName: "s", TimeoutSeconds: floatPtr(3)}, 3 * time.Second},
		{"overflowing request still capped", HandlerConfig{MaxTimeout: 10 * time.Second}, Input{ShortcutName: "s", TimeoutSeconds: floatPtr(1e10)}, 10 * time.Second},
		{"overflowing request saturates without max", HandlerConfig{}, Input{ShortcutName: "s", TimeoutSeconds: floatPtr(1e10)}, time.Duration(math.MaxInt64)},
		{"sub-nanosecond request not unbounded", HandlerConfig{}, Input{ShortcutName: "s", TimeoutSeconds: floatPtr(1e-10)}, time.Duration(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{outcome: shortcuts.Outcome{Status: shortcuts.StatusSucceeded, ExitCode: intPtr(0)}}
			h, _ := newHandler(runner, tt.cfg)

			if _, err := h.Invoke(context.Background(), tt.in); err != nil {
				t.Fatalf("Invoke: %v", err)
			}
			if runner.lastOpt.Timeout != tt.want {
				t.Fatalf("timeout %v, want %v", runner.lastOpt.Timeout, tt.want)
			}
		})
	}
}

func TestInvokeLaunchFailed(t *testing.T) {
	runner := &fakeRunner{outcome: shortcuts.Outcome{
		Status:     shortcuts.StatusLaunchFailed,
		Diagnostic: `the "shortcuts" command line tool is not available`,
	}}
	h, _ := newHandler(runner, HandlerConfig{})

	_, err := h.Invoke(context.Background(), Input{ShortcutName: "Any"})
	if err == nil {
		t.Fatal("expected launch error")
	}
	if !errors.Is(err, apperror.ErrLaunch) {
		t.Fatalf("error %v is not a launch error", err)
	}
	if !strings.Contains(err.Error(), "not available") {
		t.Fatalf("error %q lost the diagnostic", err.Error())
	}
}

func TestInvokeTimedOutSummary(t *testing.T) {
	runner := &fakeRunner{outcome: shortcuts.Outcome{
		Status:   shortcuts.StatusTimedOut,
		Stdout:   "partial",
		Duration: 2 * time.Second,
	}}
	h, _ := newHandler(runner, HandlerConfig{})

	out, err := h.Invoke(context.Background(), Input{ShortcutName: "Sleep Test", TimeoutSeconds: floatPtr(2)})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out.Status != string(shortcuts.StatusTimedOut) {
		t.Fatalf("status %q", out.Status)
	}
	if out.ExitCode != nil {
		t.Fatalf("timed out run must carry no exit code, got %d", *out.ExitCode)
	}
	if !strings.Contains(out.Summary, `Shortcut "Sleep Test" timed out after 2 seconds.`) {
		t.Fatalf("summary %q", out.Summary)
	}
	if !strings.Contains(out.Summary, "--- stdout ---\npartial") {
		t.Fatalf("summary missing partial output: %q", out.Summary)
	}
}

func TestInvokeShutdownCancelsRun(t *testing.T) {
	started := make(chan struct{})
	runner := &fakeRunner{runFn: func(ctx context.Context, _ shortcuts.RunOptions) shortcuts.Outcome {
		close(started)
		select {
		case <-ctx.Done():
			return shortcuts.Outcome{Status: shortcuts.StatusCancelled}
		case <-time.After(2 * time.Second):
			return shortcuts.Outcome{Status: shortcuts.StatusSucceeded, ExitCode: intPtr(0)}
		}
	}}
	h, coord := newHandler(runner, HandlerConfig{})

	type result struct {
		out Output
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		out, err := h.Invoke(context.Background(), Input{ShortcutName: "Sleep Test"})
		resCh <- result{out, err}
	}()

	<-started
	coord.RequestShutdown()

	select {
	case res := <-resCh:
		if res.err != nil {
			t.Fatalf("Invoke: %v", res.err)
		}
		if res.out.Status != string(shortcuts.StatusCancelled) {
			t.Fatalf("status %q, want Cancelled", res.out.Status)
		}
		if !strings.Contains(res.out.Summary, "was cancelled before it finished") {
			t.Fatalf("summary %q", res.out.Summary)
		}
	case <-time.After(time.Second):
		t.Fatal("invocation did not observe shutdown cancellation")
	}

	if !coord.Drain() {
		t.Fatal("drain failed after invocation returned")
	}
}

func TestInvokeTracksInFlight(t *testing.T) {
	var during int64
	var coord *shutdown.Coordinator
	runner := &fakeRunner{runFn: func(context.Context, shortcuts.RunOptions) shortcuts.Outcome {
		during = coord.InFlight()
		return shortcuts.Outcome{Status: shortcuts.StatusSucceeded, ExitCode: intPtr(0)}
	}}
	var h *Handler
	h, coord = newHandler(runner, HandlerConfig{})

	if _, err := h.Invoke(context.Background(), Input{ShortcutName: "s"}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if during != 1 {
		t.Fatalf("in-flight during run %d, want 1", during)
	}
	if got := coord.InFlight(); got != 0 {
		t.Fatalf("in-flight after run %d, want 0", got)
	}
}

func TestBuildSummaryNoOutput(t *testing.T) {
	got := buildSummary(Input{ShortcutName: "Quiet"}, shortcuts.Outcome{
		Status:   shortcuts.StatusSucceeded,
		ExitCode: intPtr(0),
	})
	want := `Shortcut "Quiet" completed successfully.`
	if got != want {
		t.Fatalf("summary %q, want %q", got, want)
	}
}
