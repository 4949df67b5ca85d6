package coordinator

import (
	"context"
	"log"

	"github.com/xcawolfe-amzn/dispatchd/internal/agent"
	"github.com/xcawolfe-amzn/dispatchd/internal/command"
)

// handleCommand applies one parsed Command atomically and reports whether
// the coordinator should terminate (spec.md §4.8 "Command handling").
// Mutations to a persisted field set c.dirty so the next tick coalesces a
// save; unknown agent ids, missing payloads, and malformed adds are logged
// as diagnostics and otherwise ignored, never fatal (spec.md §4.5).
func (c *Coordinator) handleCommand(ctx context.Context, cmd command.Command) bool {
	switch cmd.Kind {
	case command.Quit:
		return true

	case command.Help:
		log.Print(helpText)
		return false

	case command.Status:
		log.Print(c.statusText())
		return false

	case command.Invalid:
		log.Printf("command %s: rejected: %s", cmd.ID, cmd.Err)
		return false
	}

	a, ok := c.agents[cmd.AgentID]
	if !ok {
		log.Printf("command %s: unknown agent %d", cmd.ID, cmd.AgentID)
		return false
	}

	switch cmd.Kind {
	case command.Auto:
		a.AutoContinue = true
		c.dirty = true

	case command.Stop:
		a.AutoContinue = false
		c.dirty = true

	case command.Reset:
		a.ResetCircuit()
		c.dirty = true

	case command.ProgressMark:
		a.RecordProgress()
		c.dirty = true

	case command.QueueShow:
		log.Printf("agent %d queue: %v", a.ID, a.Queue)

	case command.QueueAppend:
		a.PushTask(cmd.Text)
		c.dirty = true

	case command.Clear:
		a.ClearQueue()
		c.dirty = true

	case command.Direct:
		// The head dispatches immediately regardless of circuit state —
		// an explicit user send always works, even with the circuit open
		// (spec.md §3's "explicit user sends still work"). Tail items
		// only ever join the queue, never the immediate send.
		for _, t := range cmd.Tail {
			a.PushTask(t)
		}
		c.dirty = true
		c.dispatch(ctx, a, cmd.Text, false)
	}

	return false
}

const helpText = `commands: quit, help, status, auto N, stop N, reset N,
progress N mark, queue N, queue N "text", clear N, N: payload`

func (c *Coordinator) statusText() string {
	out := "agent status:\n"
	for _, id := range c.agents.IDsSorted() {
		a := c.agents[id]
		out += statusLine(a)
	}
	return out
}

func statusLine(a *agent.Agent) string {
	return "  " + a.Name + ": state=" + string(a.LastPaneState) +
		" circuit=" + string(a.Circuit) + "\n"
}
