// Package notify emits de-duplicated notifications when an agent's pane
// state transitions, or when its circuit breaker opens (spec.md §4.7). The
// cooldown and elevated-priority-on-circuit-open rules are adapted from the
// teacher's internal/daemon NotificationManager slot dedup; since the
// coordinator here is a single in-process owner of agent state, the dedup
// clock lives on the Agent value itself rather than in a second on-disk
// slot file.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/xcawolfe-amzn/dispatchd/internal/agent"
	"github.com/xcawolfe-amzn/dispatchd/internal/config"
	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
)

// Priority controls whether a push notification is sent at elevated
// priority (circuit-open events).
type Priority int

const (
	Normal Priority = iota
	Elevated
)

// Notifier sends desktop and optional push notifications, honoring the
// per-agent cooldown.
type Notifier struct {
	pushover *config.PushoverConfig
	client   *http.Client
}

// New returns a Notifier. pushover may be nil, in which case only the
// best-effort desktop notification is attempted.
func New(pushover *config.PushoverConfig) *Notifier {
	return &Notifier{
		pushover: pushover,
		client:   &http.Client{Timeout: constants.IOTimeout},
	}
}

// Ready reports whether a, last notified at a.LastNotifiedAt, is out of its
// cooldown window as of now.
func Ready(a *agent.Agent, now time.Time) bool {
	if a.LastNotifiedAt.IsZero() {
		return true
	}
	return now.Sub(a.LastNotifiedAt) >= constants.NotificationCooldown
}

// Notify sends title/body at the given priority if a is out of its
// cooldown, and stamps a.LastNotifiedAt on send. Failures are logged and
// swallowed: a notification is always best-effort (spec.md §4.7/§7).
func (n *Notifier) Notify(ctx context.Context, a *agent.Agent, prio Priority, title, body string) {
	now := time.Now()
	if !Ready(a, now) {
		return
	}
	a.LastNotifiedAt = now

	if err := desktopNotify(ctx, title, body); err != nil {
		log.Printf("notify: desktop notification for agent %d failed: %v", a.ID, err)
	}
	if n.pushover != nil {
		if err := n.pushoverNotify(ctx, prio, title, body); err != nil {
			log.Printf("notify: pushover notification for agent %d failed: %v", a.ID, err)
		}
	}
}

// ResetCooldown clears the cooldown clock, called on a working→anything
// transition so the next genuine idle/circuit event is never suppressed by
// an unrelated earlier notification (spec.md §4.7).
func ResetCooldown(a *agent.Agent) {
	a.LastNotifiedAt = time.Time{}
}

func desktopNotify(ctx context.Context, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.IOTimeout)
	defer cancel()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.CommandContext(ctx, "osascript", "-e", script)
	case "linux":
		cmd = exec.CommandContext(ctx, "notify-send", title, body)
	default:
		return nil // no known desktop notifier for this platform
	}
	return cmd.Run()
}

func (n *Notifier) pushoverNotify(ctx context.Context, prio Priority, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.IOTimeout)
	defer cancel()

	payload := map[string]string{
		"token":   n.pushover.APIToken,
		"user":    n.pushover.UserKey,
		"title":   title,
		"message": body,
	}
	if prio == Elevated {
		payload["priority"] = "1"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.pushover.net/1/messages.json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pushover API error (HTTP %d)", resp.StatusCode)
	}
	return nil
}
