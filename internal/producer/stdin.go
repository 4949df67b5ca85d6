package producer

import (
	"bufio"
	"context"
	"os"

	"golang.org/x/term"
)

// Stdin mirrors the socket grammar on the controlling terminal, so an
// operator running `dispatchd run` in the foreground can type commands
// directly instead of opening a second shell to dial the socket. It is a
// no-op when stdin is not a TTY (e.g. under a supervisor or in tests).
type Stdin struct {
	File *os.File
}

// Run reads lines from Stdin.File until ctx is canceled or stdin closes.
func (s *Stdin) Run(ctx context.Context, out chan<- Line) {
	guard("stdin", func() { s.run(ctx, out) })
}

func (s *Stdin) run(ctx context.Context, out chan<- Line) {
	f := s.File
	if f == nil {
		f = os.Stdin
	}
	if !term.IsTerminal(int(f.Fd())) {
		return
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			push(out, Line{Source: "stdin", Text: line})
		}
	}
}
