// Package progress answers "has the agent made progress since we last
// asked?" without inspecting agent text output (spec.md §4.2). The
// fingerprint is computed from external, un-gameable version-control state:
// working-tree status plus the tip commit.
package progress

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os/exec"

	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
)

// Fingerprint returns a stable hash over (working-tree status, HEAD commit
// id) for dir, or ok=false if the underlying git invocation fails for any
// reason. The coordinator treats ok=false as "unknown, don't change the
// streak" (spec.md §4.2).
func Fingerprint(ctx context.Context, dir string) (fp string, ok bool) {
	status, err := run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return "", false
	}
	head, err := run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", false
	}

	h := sha256.New()
	h.Write(status)
	h.Write([]byte{0})
	h.Write(head)
	return hex.EncodeToString(h.Sum(nil)), true
}

func run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.IOTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}
