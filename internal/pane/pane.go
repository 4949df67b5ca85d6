// Package pane wraps all interaction with the external terminal multiplexer
// behind a single Driver (spec.md §4.1). Every other package talks to panes
// only through this interface; nothing else shells out to the multiplexer
// CLI. Adapted from the teacher's internal/tmux package: two subprocess
// invocations per logical send (literal paste, then a separate Enter), and
// terse stderr-substring error classification.
package pane

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
)

// Error kinds from spec.md §4.1 and §7.
var (
	// ErrPaneGone means the multiplexer reports the handle no longer exists.
	ErrPaneGone = errors.New("pane gone")
	// ErrTransient means a subprocess error that is expected to recover.
	ErrTransient = errors.New("transient pane error")
	// ErrCopyMode means the pane is currently in copy/scroll mode and
	// cannot accept keystroke injection.
	ErrCopyMode = errors.New("pane in copy mode")
)

// CaptureLines is how much of the pane's scrollback Capture returns: "the
// last visible screenful" per spec.md §4.1.
const CaptureLines = 200

// Driver wraps multiplexer operations behind a small, injectable surface.
type Driver struct {
	bin string
}

// New returns a Driver invoking the given multiplexer binary (e.g. "tmux").
func New(bin string) *Driver {
	if bin == "" {
		bin = "tmux"
	}
	return &Driver{bin: bin}
}

func (d *Driver) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.IOTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", classify(err, stderr.String())
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// classify maps multiplexer stderr text to the taxonomy in spec.md §7.
func classify(err error, stderr string) error {
	s := strings.TrimSpace(stderr)
	switch {
	case strings.Contains(s, "can't find pane"),
		strings.Contains(s, "no such pane"),
		strings.Contains(s, "session not found"),
		strings.Contains(s, "can't find session"):
		return fmt.Errorf("%w: %s", ErrPaneGone, s)
	default:
		if s == "" {
			s = err.Error()
		}
		return fmt.Errorf("%w: %s", ErrTransient, s)
	}
}

// Capture returns the last visible screenful of the pane's buffer as a
// newline-separated string.
func (d *Driver) Capture(ctx context.Context, paneHandle string) (string, error) {
	return d.run(ctx, "capture-pane", "-p", "-t", paneHandle, "-S", fmt.Sprintf("-%d", CaptureLines))
}

// InCopyMode reports whether the pane is currently in copy/scroll mode.
func (d *Driver) InCopyMode(ctx context.Context, paneHandle string) (bool, error) {
	out, err := d.run(ctx, "display-message", "-p", "-t", paneHandle, "-F", "#{pane_in_mode}")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "1", nil
}

// Send injects text literally (no shell interpolation, no escape
// interpretation) followed by a separate Enter event. This is always two
// subprocess invocations: a single call carrying embedded newlines is
// unreliable across terminal front-ends.
func (d *Driver) Send(ctx context.Context, paneHandle, text string) error {
	inCopy, err := d.InCopyMode(ctx, paneHandle)
	if err != nil {
		return err
	}
	if inCopy {
		return fmt.Errorf("%w: %s", ErrCopyMode, paneHandle)
	}

	if _, err := d.run(ctx, "send-keys", "-t", paneHandle, "-l", text); err != nil {
		return err
	}
	// A short settle delay between paste and Enter avoids racing the
	// target program's input handling — mirrors the teacher's debounced
	// send-keys contract.
	time.Sleep(100 * time.Millisecond)
	_, err = d.run(ctx, "send-keys", "-t", paneHandle, "Enter")
	return err
}
