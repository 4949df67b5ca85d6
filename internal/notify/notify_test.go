package notify

import (
	"testing"
	"time"

	"github.com/xcawolfe-amzn/dispatchd/internal/agent"
	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
)

func TestReady_NeverNotifiedIsReady(t *testing.T) {
	t.Parallel()
	a := agent.New(1, "a0", "one", "/tmp")
	if !Ready(a, time.Now()) {
		t.Error("expected Ready=true for an agent never notified")
	}
}

func TestReady_CooldownWindow(t *testing.T) {
	t.Parallel()
	a := agent.New(1, "a0", "one", "/tmp")
	now := time.Now()
	a.LastNotifiedAt = now

	if Ready(a, now.Add(constants.NotificationCooldown-time.Second)) {
		t.Error("expected Ready=false inside the cooldown window")
	}
	if !Ready(a, now.Add(constants.NotificationCooldown+time.Second)) {
		t.Error("expected Ready=true once the cooldown window has elapsed")
	}
}

func TestResetCooldown(t *testing.T) {
	t.Parallel()
	a := agent.New(1, "a0", "one", "/tmp")
	a.LastNotifiedAt = time.Now()
	ResetCooldown(a)
	if !a.LastNotifiedAt.IsZero() {
		t.Error("expected ResetCooldown to zero LastNotifiedAt")
	}
	if !Ready(a, time.Now()) {
		t.Error("expected Ready=true immediately after ResetCooldown")
	}
}
