// Package agent defines the per-agent data model owned exclusively by the
// coordinator. No other package may mutate an Agent's fields; producers only
// ever see agent ids, never Agent values.
package agent

import "time"

// PaneState classifies what a captured pane buffer looks like.
type PaneState string

const (
	StateWorking PaneState = "working"
	StateReady   PaneState = "ready"
	StateUnknown PaneState = "unknown"
)

// CircuitState is the auto-continue circuit breaker latch.
type CircuitState string

const (
	CircuitClosed CircuitState = "closed"
	CircuitOpen   CircuitState = "open"
)

// Agent is one managed coding-assistant session living in a single
// multiplexer pane. PaneHandle is write-once: it is set from configuration
// at construction time and the runtime never rewrites it (spec.md §3).
type Agent struct {
	ID         int
	PaneHandle string
	Name       string
	WorkDir    string

	// Persisted fields (survive a restart via the Store's snapshot).
	AutoContinue     bool
	Circuit          CircuitState
	NoProgressStreak int
	Queue            []string

	// Transient fields (rebuilt from observation each run).
	LastFingerprint string
	LastPaneState   PaneState
	LastNotifiedAt  time.Time
	LastDispatched  string
}

// New constructs an agent in its default state: circuit closed, auto
// continue off, empty queue, unknown pane state.
func New(id int, paneHandle, name, workDir string) *Agent {
	return &Agent{
		ID:         id,
		PaneHandle: paneHandle,
		Name:       name,
		WorkDir:    workDir,
		Circuit:    CircuitClosed,
	}
}

// CircuitShouldOpen reports whether the no-progress streak has reached the
// threshold that opens the circuit. Opening is monotone during a run: once
// open it stays open until an explicit reset.
func (a *Agent) CircuitShouldOpen(limit int) bool {
	return a.Circuit == CircuitClosed && a.NoProgressStreak >= limit
}

// RecordProgress resets the no-progress streak, e.g. on a new fingerprint
// observation or an explicit manual mark.
func (a *Agent) RecordProgress() {
	a.NoProgressStreak = 0
}

// ResetCircuit closes the circuit and clears the streak (the explicit
// `reset N` command). progress N mark is orthogonal: it resets the streak
// only, per spec.md §9's Open Question decision (see DESIGN.md).
func (a *Agent) ResetCircuit() {
	a.Circuit = CircuitClosed
	a.NoProgressStreak = 0
}

// Eligible reports whether the agent may receive an automatic dispatch
// (queued task or auto-continue `continue`). Explicit user sends are never
// gated by this — only the scan-driven automatic path is.
func (a *Agent) Eligible() bool {
	return a.Circuit == CircuitClosed
}

// PushTask appends a task to the tail of the queue.
func (a *Agent) PushTask(text string) {
	a.Queue = append(a.Queue, text)
}

// PeekTask returns the head of the queue without removing it.
func (a *Agent) PeekTask() (string, bool) {
	if len(a.Queue) == 0 {
		return "", false
	}
	return a.Queue[0], true
}

// PopTask removes the head of the queue. It is the caller's responsibility
// to call this only after a successful dispatch — a failed dispatch leaves
// the head (and therefore the whole queue) unchanged.
func (a *Agent) PopTask() {
	if len(a.Queue) == 0 {
		return
	}
	a.Queue = a.Queue[1:]
}

// ClearQueue empties the task queue (the `clear N` command).
func (a *Agent) ClearQueue() {
	a.Queue = nil
}

// Map is the coordinator's exclusive registry of managed agents, keyed by
// id. It is never shared with producers.
type Map map[int]*Agent

// IDsSorted returns agent ids in ascending order, the iteration order the
// scan procedure requires (spec.md §4.8: "per agent, in id order").
func (m Map) IDsSorted() []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
