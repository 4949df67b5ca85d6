// Package style provides small ANSI helpers for CLI output. The teacher's
// own internal/style renders through lipgloss; dispatchd has no TUI surface
// (spec.md §1 Non-goals), so the same Bold/Dim call sites are kept but
// rendered with plain ANSI escapes instead of pulling in lipgloss for two
// functions' worth of styling.
package style

import (
	"fmt"
	"regexp"
)

type attr string

const (
	// Bold renders text in bold.
	Bold attr = "\x1b[1m"
	// Dim renders text at reduced intensity.
	Dim attr = "\x1b[2m"
	reset = "\x1b[0m"
)

// Render wraps s in the attribute's escape codes.
func (a attr) Render(s string) string {
	return fmt.Sprintf("%s%s%s", a, s, reset)
}

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// stripAnsi removes escape sequences, used to measure the visible width of
// already-styled text.
func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
