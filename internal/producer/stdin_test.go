package producer

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestStdin_NonTTYIsNoop(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan Line, 1)
	done := make(chan struct{})
	s := &Stdin{File: r}
	go func() {
		s.Run(ctx, out)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run on a non-tty pipe did not return promptly")
	}
}

func TestStdin_EmptyFileDefaultsToOSStdin(t *testing.T) {
	// os.Stdin under `go test` is not a terminal, so Run must still return
	// promptly rather than blocking on a read.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan Line, 1)
	done := make(chan struct{})
	s := &Stdin{}
	go func() {
		s.Run(ctx, out)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run with nil File did not return promptly")
	}
}
