// Package tool implements the run_shortcut tool: argument validation,
// delegation to the shortcut runner under the shared shutdown scope, and
// shaping of the outcome into the caller-visible result.
package tool

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/freema/shortcutd/internal/apperror"
	"github.com/freema/shortcutd/internal/logger"
	"github.com/freema/shortcutd/internal/metrics"
	"github.com/freema/shortcutd/internal/shortcuts"
	"github.com/freema/shortcutd/internal/shutdown"
	"github.com/freema/shortcutd/internal/tracing"
)

// Name is the tool name exposed over MCP.
const Name = "run_shortcut"

// Input is the run_shortcut argument payload.
type Input struct {
	ShortcutName   string   `json:"shortcutName" validate:"required,notblank"`
	TextInput      string   `json:"textInput,omitempty"`
	TimeoutSeconds *float64 `json:"timeoutSeconds,omitempty" validate:"omitempty,gt=0"`
}

// Output is the structured run_shortcut result.
type Output struct {
	Summary        string   `json:"summary"`
	Status         string   `json:"status"`
	Command        []string `json:"command,omitempty"`
	ExitCode       *int     `json:"exitCode"`
	StandardOutput string   `json:"standardOutput"`
	StandardError  string   `json:"standardError"`
	DurationMillis int64    `json:"durationMillis"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// required passes for strings of only whitespace; notblank does not.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// HandlerConfig bounds invocation timeouts.
type HandlerConfig struct {
	// DefaultTimeout applies when the request carries no timeoutSeconds.
	// Zero keeps the run unbounded, matching the shortcuts CLI itself.
	DefaultTimeout time.Duration
	// MaxTimeout, when positive, caps every run including unbounded ones.
	MaxTimeout time.Duration
}

// Handler is the tool façade: one exposed operation over one runner.
type Handler struct {
	runner shortcuts.Runner
	coord  *shutdown.Coordinator
	cfg    HandlerConfig
}

// NewHandler creates the run_shortcut handler.
func NewHandler(runner shortcuts.Runner, coord *shutdown.Coordinator, cfg HandlerConfig) *Handler {
	return &Handler{runner: runner, coord: coord, cfg: cfg}
}

// Invoke validates the request, runs the shortcut and maps the outcome.
// Validation and launch failures come back as errors; every other outcome —
// including non-zero exit, timeout and cancellation — is a normal result.
func (h *Handler) Invoke(ctx context.Context, in Input) (Output, error) {
	if err := validate.Struct(in); err != nil {
		return Output{}, validationError(err)
	}
	if in.TimeoutSeconds != nil && (math.IsNaN(*in.TimeoutSeconds) || math.IsInf(*in.TimeoutSeconds, 0)) {
		return Output{}, apperror.Validation("`timeoutSeconds` must be a finite number.")
	}

	timeout := h.cfg.DefaultTimeout
	if in.TimeoutSeconds != nil {
		timeout = durationFromSeconds(*in.TimeoutSeconds)
	}
	if h.cfg.MaxTimeout > 0 && (timeout == 0 || timeout > h.cfg.MaxTimeout) {
		timeout = h.cfg.MaxTimeout
	}

	invocationID := uuid.NewString()
	log := logger.FromContext(ctx).With("invocation_id", invocationID, "shortcut", in.ShortcutName)

	ctx, span := tracing.Tracer().Start(ctx, "shortcut.run",
		tracing.WithInvocationAttributes(invocationID, in.ShortcutName),
	)
	defer span.End()
	if traceID := tracing.TraceIDFromContext(ctx); traceID != "" {
		log = log.With("trace_id", traceID)
	}

	// Run under both the caller's context and the shared shutdown scope.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(h.coord.Context(), cancel)
	defer stop()

	done := h.coord.Track()
	defer done()

	metrics.InvocationsInFlight.Inc()
	defer metrics.InvocationsInFlight.Dec()

	outcome := h.runner.Run(runCtx, shortcuts.RunOptions{
		Name:    in.ShortcutName,
		Input:   in.TextInput,
		Timeout: timeout,
	})

	metrics.InvocationsTotal.WithLabelValues(string(outcome.Status)).Inc()
	metrics.InvocationDuration.WithLabelValues(string(outcome.Status)).Observe(outcome.Duration.Seconds())

	if outcome.Status == shortcuts.StatusLaunchFailed {
		log.Error("shortcut launch failed", "diagnostic", outcome.Diagnostic)
		return Output{}, apperror.Launch("%s", outcome.Diagnostic)
	}

	log.Info("shortcut finished",
		"status", outcome.Status,
		"exit_code", exitCodeValue(outcome.ExitCode),
		"duration", outcome.Duration,
	)

	return Output{
		Summary:        buildSummary(in, outcome),
		Status:         string(outcome.Status),
		Command:        outcome.Command,
		ExitCode:       outcome.ExitCode,
		StandardOutput: outcome.Stdout,
		StandardError:  outcome.Stderr,
		DurationMillis: outcome.Duration.Milliseconds(),
	}, nil
}

// durationFromSeconds converts a positive seconds value to a Duration,
// saturating instead of overflowing: an enormous request must stay positive
// so the MaxTimeout cap still applies, and a sub-nanosecond request must not
// round down to the unbounded zero value.
func durationFromSeconds(secs float64) time.Duration {
	ns := secs * float64(time.Second)
	if ns >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	if ns < 1 {
		return time.Duration(1)
	}
	return time.Duration(ns)
}

func exitCodeValue(code *int) any {
	if code == nil {
		return nil
	}
	return *code
}

// validationError converts validator output into a tool-level error naming
// the offending field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "ShortcutName":
			return apperror.Validation("`shortcutName` must be a non-empty string.")
		case "TimeoutSeconds":
			return apperror.Validation("`timeoutSeconds` must be greater than 0.")
		}
	}
	return apperror.Validation("invalid run_shortcut arguments: %v", err)
}
