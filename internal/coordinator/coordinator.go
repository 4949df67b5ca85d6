// Package coordinator implements the single-threaded cooperative dispatcher
// loop (spec.md §4.8, §5). It owns the agent map exclusively: producers and
// the pane/progress/detector packages never mutate agent state directly,
// they only observe panes and return values for the coordinator to act on.
// The loop shape — context, ticker, select — is adapted from the teacher's
// internal/feed Curator.run.
package coordinator

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xcawolfe-amzn/dispatchd/internal/agent"
	"github.com/xcawolfe-amzn/dispatchd/internal/command"
	"github.com/xcawolfe-amzn/dispatchd/internal/config"
	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
	"github.com/xcawolfe-amzn/dispatchd/internal/detector"
	"github.com/xcawolfe-amzn/dispatchd/internal/notify"
	"github.com/xcawolfe-amzn/dispatchd/internal/pane"
	"github.com/xcawolfe-amzn/dispatchd/internal/producer"
	"github.com/xcawolfe-amzn/dispatchd/internal/progress"
	"github.com/xcawolfe-amzn/dispatchd/internal/store"
)

// paneDriver is the slice of pane.Driver the coordinator needs, narrowed to
// an interface so tests can substitute a fake pane (mirrors the teacher's
// ConvoyFetcher interface in internal/web, scoped to its handler's needs).
type paneDriver interface {
	Capture(ctx context.Context, paneHandle string) (string, error)
	InCopyMode(ctx context.Context, paneHandle string) (bool, error)
	Send(ctx context.Context, paneHandle, text string) error
}

// fingerprintFunc matches progress.Fingerprint's signature, injectable so
// tests can substitute a fake progress source instead of shelling to git.
type fingerprintFunc func(ctx context.Context, dir string) (string, bool)

// Coordinator owns agent state and drives the scan/dispatch/command loop.
type Coordinator struct {
	agents      agent.Map
	pane        paneDriver
	notifier    *notify.Notifier
	store       *store.Store
	fingerprint fingerprintFunc

	pollInterval time.Duration
	commands     chan producer.Line

	dirty bool // at least one persisted field changed since the last save
}

// New constructs a Coordinator for cfg, restoring any prior snapshot.
func New(cfg *config.Config, paneDriver *pane.Driver, notifier *notify.Notifier, st *store.Store) (*Coordinator, error) {
	agents := make(agent.Map, len(cfg.Agents))
	for id, a := range cfg.Agents {
		agents[id] = agent.New(id, a.PaneID, a.Name, a.Worktree)
	}

	snap, err := st.Load()
	if err != nil {
		return nil, err
	}
	store.ApplyTo(snap, agents)

	interval := time.Duration(cfg.PollInterval * float64(time.Second))
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}

	return &Coordinator{
		agents:       agents,
		pane:         paneDriver,
		notifier:     notifier,
		store:        st,
		fingerprint:  progress.Fingerprint,
		pollInterval: interval,
		commands:     make(chan producer.Line, constants.CommandChannelBuffer),
	}, nil
}

// Commands exposes the shared input channel producers push raw lines onto.
func (c *Coordinator) Commands() chan<- producer.Line {
	return c.commands
}

// Run blocks, driving the scan tick and command loop until ctx is canceled
// or a `quit`/`exit` command is received. On return it performs a final
// snapshot save (spec.md §4.8 "Termination").
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.shutdown()

		case line := <-c.commands:
			cmd := command.Parse(line.Text)
			if c.handleCommand(ctx, cmd) {
				return c.shutdown()
			}

		case <-ticker.C:
			c.scan(ctx)
			c.maybeSave()
		}
	}
}

func (c *Coordinator) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownDeadline)
	defer cancel()

	// Drain any commands still queued, best-effort, up to the deadline.
drain:
	for {
		select {
		case line := <-c.commands:
			cmd := command.Parse(line.Text)
			c.handleCommand(ctx, cmd)
		default:
			break drain
		}
	}

	return c.store.Save(store.FromAgents(c.agents))
}

// scan runs the per-tick procedure over every agent in id order (spec.md
// §4.8 "scan procedure").
func (c *Coordinator) scan(ctx context.Context) {
	for _, id := range c.agents.IDsSorted() {
		c.scanOne(ctx, c.agents[id])
	}
}

func (c *Coordinator) scanOne(ctx context.Context, a *agent.Agent) {
	buf, err := c.pane.Capture(ctx, a.PaneHandle)
	if err != nil {
		if isPaneGone(err) {
			a.LastPaneState = agent.StateUnknown
			c.dirty = true
			log.Printf("coordinator: agent %d (%s): pane gone: pane=%s last_task=%q: %v", a.ID, a.Name, a.PaneHandle, a.LastDispatched, err)
		} else {
			log.Printf("coordinator: agent %s: transient capture error, skipping tick: %v", a.Name, err)
		}
		return // Transient: skip this tick entirely, including the state update.
	}

	newState := detector.Detect(buf)
	prevState := a.LastPaneState

	if prevState == agent.StateWorking && newState != agent.StateWorking {
		notify.ResetCooldown(a)
	}
	if prevState == agent.StateWorking && newState == agent.StateReady {
		c.onTransitionToReady(ctx, a)
	}

	a.LastPaneState = newState
}

func (c *Coordinator) onTransitionToReady(ctx context.Context, a *agent.Agent) {
	fp, ok := c.fingerprint(ctx, a.WorkDir)
	if ok {
		if a.LastFingerprint != "" && fp == a.LastFingerprint {
			a.NoProgressStreak++
			c.dirty = true
			if a.CircuitShouldOpen(constants.NoProgressLimit) {
				a.Circuit = agent.CircuitOpen
				c.dirty = true
				c.notifier.Notify(ctx, a, notify.Elevated, "circuit open",
					"agent "+a.Name+" made no progress across repeated attempts")
			}
		} else {
			a.NoProgressStreak = 0
			a.LastFingerprint = fp
			c.dirty = true
		}
	}

	c.notifier.Notify(ctx, a, notify.Normal, "agent ready", a.Name+" is idle")

	if task, ok := a.PeekTask(); ok && a.Circuit == agent.CircuitClosed {
		c.dispatch(ctx, a, task, true)
	} else if a.AutoContinue && a.Circuit == agent.CircuitClosed {
		c.dispatch(ctx, a, "continue", false)
	}
}

// dispatch sends text to a's pane (spec.md §4.8 "Dispatch"). popOnSuccess
// controls whether a successful send pops the queue head (queued tasks do;
// the synthetic auto-continue "continue" text does not, since it was never
// queued).
func (c *Coordinator) dispatch(ctx context.Context, a *agent.Agent, text string, popOnSuccess bool) {
	inCopy, err := c.pane.InCopyMode(ctx, a.PaneHandle)
	if err != nil {
		log.Printf("coordinator: agent %s: transient error checking copy mode, deferring dispatch: %v", a.Name, err)
		return // leave at head; try again next tick
	}
	if inCopy {
		log.Printf("coordinator: agent %s: pane in copy mode, deferring dispatch", a.Name)
		return // leave at head; try again next tick
	}

	if err := c.pane.Send(ctx, a.PaneHandle, text); err != nil {
		switch {
		case isPaneGone(err):
			a.LastPaneState = agent.StateUnknown
			if popOnSuccess {
				a.PopTask()
			}
			c.dirty = true
			log.Printf("coordinator: agent %d (%s): pane gone during dispatch: pane=%s task=%q: %v", a.ID, a.Name, a.PaneHandle, text, err)
		case isCopyMode(err):
			log.Printf("coordinator: agent %s: pane in copy mode, deferring dispatch", a.Name)
			// leave at head
		default: // transient
			if err2 := c.pane.Send(ctx, a.PaneHandle, text); err2 == nil {
				if popOnSuccess {
					a.PopTask()
				}
				a.LastPaneState = agent.StateWorking
				a.LastDispatched = text
				c.dirty = true
			} else {
				log.Printf("coordinator: agent %s: transient send error, giving up for this tick: %v", a.Name, err2)
			}
		}
		return
	}

	if popOnSuccess {
		a.PopTask()
	}
	a.LastPaneState = agent.StateWorking
	a.LastDispatched = text
	c.dirty = true
}

func (c *Coordinator) maybeSave() {
	if !c.dirty {
		return
	}
	if err := c.store.Save(store.FromAgents(c.agents)); err != nil {
		log.Printf("coordinator: saving snapshot: %v", err)
		return
	}
	c.dirty = false
}

func isPaneGone(err error) bool {
	return err != nil && errors.Is(err, pane.ErrPaneGone)
}

func isCopyMode(err error) bool {
	return err != nil && errors.Is(err, pane.ErrCopyMode)
}
