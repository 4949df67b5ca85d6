// Package detector classifies a captured pane buffer into one of three
// states without any side effects (spec.md §4.3). It is a pure function:
// same input, same output, every time.
package detector

import (
	"strings"

	"github.com/xcawolfe-amzn/dispatchd/internal/agent"
	"golang.org/x/text/width"
)

// workingIndicators is the closed, non-configurable set of substrings that
// mark in-flight computation: spinner glyphs, the interrupt hint, a
// token-count hint, and a generic progress marker. This set is part of the
// detector's contract, not a tuning knob (spec.md §4.3).
var workingIndicators = []string{
	"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏", // braille spinner frames
	"esc to interrupt",
	"tokens",
	"…",
}

// promptGlyphs is the closed set of leading box-drawing glyphs that mark a
// canonical ready prompt on the final non-empty line.
var promptGlyphs = []string{"│", "┃", "╭", "╰", ">"}

// Detect classifies buf per spec.md §4.3. Ambiguity bias: working beats
// ready — if any working indicator appears anywhere in buf, the result is
// working regardless of a trailing prompt glyph.
func Detect(buf string) agent.PaneState {
	if hasWorkingIndicator(buf) {
		return agent.StateWorking
	}
	if hasReadyPrompt(buf) {
		return agent.StateReady
	}
	return agent.StateUnknown
}

func hasWorkingIndicator(buf string) bool {
	for _, ind := range workingIndicators {
		if strings.Contains(buf, ind) {
			return true
		}
	}
	return false
}

func hasReadyPrompt(buf string) bool {
	line := lastNonEmptyLine(buf)
	if line == "" {
		return false
	}
	// Narrow fullwidth/ambiguous-width runes on both sides before comparing,
	// so wide and narrow variants of a prompt glyph match each other.
	line = width.Narrow.String(line)
	for _, g := range promptGlyphs {
		if strings.HasPrefix(strings.TrimLeft(line, " "), width.Narrow.String(g)) {
			return true
		}
	}
	return false
}

func lastNonEmptyLine(buf string) string {
	lines := strings.Split(buf, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimRight(lines[i], " \t\r")
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
