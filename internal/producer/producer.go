// Package producer implements the independent input channels that feed raw
// command lines into the coordinator's shared command channel (spec.md
// §4.6). Every producer is its own failure domain: a panic or stall in one
// must never stall or crash the coordinator, so each runs its own
// goroutine and recovers from panics at its boundary.
package producer

import (
	"context"
	"log"
)

// Line is one raw input line plus where it came from, used only for log
// attribution — the coordinator parses and routes on Text alone.
type Line struct {
	Source string
	Text   string
}

// push sends line to out, or drops it and logs a warning if out is full.
// Producers must never block the coordinator (spec.md §4.6).
func push(out chan<- Line, line Line) {
	select {
	case out <- line:
	default:
		log.Printf("producer: command channel full, dropping line from %s", line.Source)
	}
}

// guard recovers a panic inside fn, logging it instead of propagating, so
// one misbehaving producer cannot take down the process.
func guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("producer %s: recovered from panic: %v", name, r)
		}
	}()
	fn()
}

// Run is implemented by each concrete producer (socket, chatbot, fifo). It
// blocks until ctx is canceled.
type Runner interface {
	Run(ctx context.Context, out chan<- Line)
}
