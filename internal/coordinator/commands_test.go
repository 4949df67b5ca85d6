package coordinator

import (
	"context"
	"testing"

	"github.com/xcawolfe-amzn/dispatchd/internal/agent"
	"github.com/xcawolfe-amzn/dispatchd/internal/command"
	"github.com/xcawolfe-amzn/dispatchd/internal/store"
)

func TestHandleCommand_Quit(t *testing.T) {
	t.Parallel()
	c := newForTest(agent.Map{}, newFakePane(), fixedFingerprint("", false), store.New(t.TempDir()))
	if !c.handleCommand(context.Background(), command.Parse("quit")) {
		t.Error("expected handleCommand(quit) to signal termination")
	}
}

func TestHandleCommand_AutoAndStop(t *testing.T) {
	t.Parallel()
	a := agent.New(1, "a0", "one", "/tmp")
	c := newForTest(agent.Map{1: a}, newFakePane(), fixedFingerprint("", false), store.New(t.TempDir()))

	c.handleCommand(context.Background(), command.Parse("auto 1"))
	if !a.AutoContinue {
		t.Error("expected auto 1 to enable AutoContinue")
	}
	c.handleCommand(context.Background(), command.Parse("stop 1"))
	if a.AutoContinue {
		t.Error("expected stop 1 to disable AutoContinue")
	}
}

func TestHandleCommand_ResetClearsCircuitAndStreak(t *testing.T) {
	t.Parallel()
	a := agent.New(1, "a0", "one", "/tmp")
	a.Circuit = agent.CircuitOpen
	a.NoProgressStreak = 5
	c := newForTest(agent.Map{1: a}, newFakePane(), fixedFingerprint("", false), store.New(t.TempDir()))

	c.handleCommand(context.Background(), command.Parse("reset 1"))
	if a.Circuit != agent.CircuitClosed || a.NoProgressStreak != 0 {
		t.Errorf("expected reset to close circuit and zero streak, got circuit=%v streak=%d", a.Circuit, a.NoProgressStreak)
	}
}

func TestHandleCommand_ProgressMarkResetsStreakOnly(t *testing.T) {
	t.Parallel()
	a := agent.New(1, "a0", "one", "/tmp")
	a.Circuit = agent.CircuitOpen
	a.NoProgressStreak = 5
	c := newForTest(agent.Map{1: a}, newFakePane(), fixedFingerprint("", false), store.New(t.TempDir()))

	c.handleCommand(context.Background(), command.Parse("progress 1 mark"))
	if a.NoProgressStreak != 0 {
		t.Errorf("expected streak reset to 0, got %d", a.NoProgressStreak)
	}
	if a.Circuit != agent.CircuitOpen {
		t.Errorf("expected circuit to remain open after a bare progress mark, got %v", a.Circuit)
	}
}

func TestHandleCommand_QueueAppendAndClear(t *testing.T) {
	t.Parallel()
	a := agent.New(1, "a0", "one", "/tmp")
	c := newForTest(agent.Map{1: a}, newFakePane(), fixedFingerprint("", false), store.New(t.TempDir()))

	c.handleCommand(context.Background(), command.Parse(`queue 1 "task A"`))
	c.handleCommand(context.Background(), command.Parse(`queue 1 "task B"`))
	if len(a.Queue) != 2 || a.Queue[0] != "task A" || a.Queue[1] != "task B" {
		t.Fatalf("unexpected queue after appends: %v", a.Queue)
	}

	c.handleCommand(context.Background(), command.Parse("clear 1"))
	if len(a.Queue) != 0 {
		t.Errorf("expected clear 1 to empty the queue, got %v", a.Queue)
	}
}

func TestHandleCommand_DirectDispatchesHeadAndQueuesTail(t *testing.T) {
	t.Parallel()
	a := agent.New(1, "a0", "one", "/tmp")
	p := newFakePane()
	c := newForTest(agent.Map{1: a}, p, fixedFingerprint("", false), store.New(t.TempDir()))

	c.handleCommand(context.Background(), command.Parse("1: task A | task B | task C"))

	sent := p.sentTexts("a0")
	if len(sent) != 1 || sent[0] != "task A" {
		t.Fatalf("sent = %v, want immediate dispatch of task A", sent)
	}
	if len(a.Queue) != 2 || a.Queue[0] != "task B" || a.Queue[1] != "task C" {
		t.Errorf("expected tail queued in order, got %v", a.Queue)
	}
}

func TestHandleCommand_DirectWorksWithCircuitOpen(t *testing.T) {
	t.Parallel()
	a := agent.New(1, "a0", "one", "/tmp")
	a.Circuit = agent.CircuitOpen
	p := newFakePane()
	c := newForTest(agent.Map{1: a}, p, fixedFingerprint("", false), store.New(t.TempDir()))

	c.handleCommand(context.Background(), command.Parse("1: manual override"))

	sent := p.sentTexts("a0")
	if len(sent) != 1 || sent[0] != "manual override" {
		t.Fatalf("expected explicit direct send to bypass the open circuit, got sent=%v", sent)
	}
}

func TestHandleCommand_UnknownAgentIsIgnoredNotFatal(t *testing.T) {
	t.Parallel()
	c := newForTest(agent.Map{}, newFakePane(), fixedFingerprint("", false), store.New(t.TempDir()))
	quit := c.handleCommand(context.Background(), command.Parse("auto 99"))
	if quit {
		t.Error("unknown agent id must not terminate the coordinator")
	}
}

func TestHandleCommand_InvalidIsIgnoredNotFatal(t *testing.T) {
	t.Parallel()
	c := newForTest(agent.Map{}, newFakePane(), fixedFingerprint("", false), store.New(t.TempDir()))
	quit := c.handleCommand(context.Background(), command.Parse("garbage !!"))
	if quit {
		t.Error("an invalid command must not terminate the coordinator")
	}
}
