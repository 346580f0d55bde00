package tool

import (
	"fmt"
	"strings"

	"github.com/freema/shortcutd/internal/shortcuts"
)

// buildSummary renders the human-readable tool result text: a status line
// followed by the captured streams, when any.
func buildSummary(in Input, o shortcuts.Outcome) string {
	var lines []string

	switch o.Status {
	case shortcuts.StatusTimedOut:
		if in.TimeoutSeconds != nil {
			lines = append(lines, fmt.Sprintf("Shortcut %q timed out after %g seconds.", in.ShortcutName, *in.TimeoutSeconds))
		} else {
			lines = append(lines, fmt.Sprintf("Shortcut %q timed out.", in.ShortcutName))
		}
	case shortcuts.StatusCancelled:
		lines = append(lines, fmt.Sprintf("Shortcut %q was cancelled before it finished.", in.ShortcutName))
	case shortcuts.StatusSucceeded:
		lines = append(lines, fmt.Sprintf("Shortcut %q completed successfully.", in.ShortcutName))
	case shortcuts.StatusFailed:
		code := -1
		if o.ExitCode != nil {
			code = *o.ExitCode
		}
		lines = append(lines, fmt.Sprintf("Shortcut %q exited with return code %d.", in.ShortcutName, code))
	}

	if stdout := strings.TrimSpace(o.Stdout); stdout != "" {
		lines = append(lines, "--- stdout ---\n"+stdout)
	}
	if stderr := strings.TrimSpace(o.Stderr); stderr != "" {
		lines = append(lines, "--- stderr ---\n"+stderr)
	}

	if len(lines) == 0 {
		return "No output produced."
	}
	return strings.Join(lines, "\n\n")
}
