package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "dispatchd.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	worktree := filepath.Join(dir, "work")
	if err := os.Mkdir(worktree, 0755); err != nil {
		t.Fatal(err)
	}

	body := `
poll_interval = 2.0

[agents.1]
pane_id = "a0"
name = "backend"
worktree = "` + worktree + `"
`
	path := writeConfig(t, dir, body)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(cfg.Agents))
	}
	got, ok := cfg.Agents[1]
	if !ok {
		t.Fatalf("expected agent id 1 present")
	}
	if got.PaneID != "a0" || got.Name != "backend" {
		t.Errorf("unexpected agent config: %+v", got)
	}
}

func TestLoad_DefaultsPollInterval(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	worktree := filepath.Join(dir, "work")
	if err := os.Mkdir(worktree, 0755); err != nil {
		t.Fatal(err)
	}
	body := `
[agents.1]
pane_id = "a0"
name = "x"
worktree = "` + worktree + `"
`
	cfg, err := Load(writeConfig(t, dir, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 2.0 {
		t.Errorf("PollInterval = %v, want default 2.0", cfg.PollInterval)
	}
}

func TestLoad_RejectsCases(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	worktree := filepath.Join(dir, "work")
	if err := os.Mkdir(worktree, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		body string
	}{
		{
			name: "index-like pane handle rejected",
			body: `[agents.1]
pane_id = "0"
name = "x"
worktree = "` + worktree + `"`,
		},
		{
			name: "missing worktree",
			body: `[agents.1]
pane_id = "a0"
name = "x"
worktree = "` + filepath.Join(dir, "does-not-exist") + `"`,
		},
		{
			name: "zero agent id",
			body: `[agents.0]
pane_id = "a0"
name = "x"
worktree = "` + worktree + `"`,
		},
		{
			name: "poll interval too small",
			body: `poll_interval = 0.05
[agents.1]
pane_id = "a0"
name = "x"
worktree = "` + worktree + `"`,
		},
		{
			name: "no agents",
			body: `poll_interval = 2.0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, t.TempDir(), tt.body)
			if _, err := Load(path); err == nil {
				t.Errorf("expected Load to reject config, got nil error")
			}
		})
	}
}
