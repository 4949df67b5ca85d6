package producer

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FIFO reads lines from an optional named pipe, reopening it whenever the
// writer side closes (EOF) or the pipe file is recreated (spec.md §4.6).
// Recreation detection is adapted from the teacher pack's fsnotify-based
// debounced watcher (zjrosen-perles/internal/watcher): watching the
// directory rather than the pipe itself survives unlink+mkfifo cycles that
// a direct watch on the path would miss.
type FIFO struct {
	Path string
}

// Run blocks, reopening Path whenever the current reader hits EOF, until
// ctx is canceled. If Path is empty the producer is a no-op, matching
// spec.md's "disabled if the path is absent".
func (f *FIFO) Run(ctx context.Context, out chan<- Line) {
	guard("fifo", func() { f.run(ctx, out) })
}

func (f *FIFO) run(ctx context.Context, out chan<- Line) {
	if f.Path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("fifo producer: creating watcher: %v", err)
		watcher = nil
	}
	if watcher != nil {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(f.Path)); err != nil {
			log.Printf("fifo producer: watching %s: %v", filepath.Dir(f.Path), err)
		}
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if err := f.readOnce(ctx, out); err != nil {
			log.Printf("fifo producer: %v", err)
		}
		if !f.waitForReopen(ctx, watcher) {
			return
		}
	}
}

// readOnce opens the pipe non-blocking (so a writer-less pipe doesn't wedge
// the producer forever) and streams lines until EOF or ctx cancellation.
func (f *FIFO) readOnce(ctx context.Context, out chan<- Line) error {
	file, err := os.OpenFile(f.Path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			file.Close()
		case <-done:
		}
	}()

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			push(out, Line{Source: "fifo", Text: trimLineEnding(line)})
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// waitForReopen pauses until the pipe is worth reopening: either the
// directory watcher reports a write/create event, or (watcher unavailable,
// or nothing arrives) a short poll interval elapses. Returns false if ctx
// is canceled while waiting.
func (f *FIFO) waitForReopen(ctx context.Context, watcher *fsnotify.Watcher) bool {
	if watcher == nil {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(500 * time.Millisecond):
			return true
		}
	}
	select {
	case <-ctx.Done():
		return false
	case <-watcher.Events:
		return true
	case err, ok := <-watcher.Errors:
		if ok {
			log.Printf("fifo producer: watcher error: %v", err)
		}
		return true
	case <-time.After(2 * time.Second):
		return true
	}
}
