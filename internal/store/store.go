// Package store persists the coordinator's per-agent runtime state across
// restarts (spec.md §3 "State snapshot", §4.4). Writes are atomic
// (write-temp-then-rename) and guarded by a cross-process file lock, the
// same pattern the teacher's internal/quota package uses for its own
// state.json.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/xcawolfe-amzn/dispatchd/internal/agent"
	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
)

// AgentSnapshot is the persisted subset of an Agent's fields.
type AgentSnapshot struct {
	Auto    bool     `json:"auto_enabled"`
	Circuit string   `json:"circuit_state"`
	Streak  int      `json:"no_progress_streak"`
	Queue   []string `json:"task_queue"`
}

// Snapshot is the full versioned on-disk document.
type Snapshot struct {
	Version int                   `json:"version"`
	Agents  map[int]AgentSnapshot `json:"agents"`
}

// Store reads and writes the snapshot file for a single dispatchd instance.
type Store struct {
	path     string
	lockPath string
}

// New returns a Store rooted at dir (typically os.UserConfigDir()/dispatchd).
func New(dir string) *Store {
	return &Store{
		path:     filepath.Join(dir, constants.SnapshotFileName),
		lockPath: filepath.Join(dir, constants.SnapshotFileName+".lock"),
	}
}

func (s *Store) lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	fl := flock.New(s.lockPath)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring state lock: %w", err)
	}
	return func() { _ = fl.Unlock() }, nil
}

// Load reads the snapshot file. A missing file is not an error: it returns
// an empty snapshot at the current version (first run). An unknown higher
// version aborts with a diagnostic; an unknown lower version is accepted
// as-is, since every recognized field already has a zero-value-safe
// default (best-effort migration, spec.md §3).
func (s *Store) Load() (*Snapshot, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &Snapshot{Version: constants.SnapshotVersion, Agents: make(map[int]AgentSnapshot)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}
	if snap.Version > constants.SnapshotVersion {
		return nil, fmt.Errorf("state file version %d is newer than this build supports (%d)", snap.Version, constants.SnapshotVersion)
	}
	if snap.Agents == nil {
		snap.Agents = make(map[int]AgentSnapshot)
	}
	snap.Version = constants.SnapshotVersion
	return &snap, nil
}

// Save writes the snapshot atomically: the document is written to a
// temporary file in the same directory, then renamed over the target path,
// so a concurrent reader never observes a partial write.
func (s *Store) Save(snap *Snapshot) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	snap.Version = constants.SnapshotVersion
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state file: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming temp state file into place: %w", err)
	}
	return nil
}

// saveRaw writes snap verbatim, without stamping the current version. Used
// by tests to simulate a snapshot written by a newer build.
func (s *Store) saveRaw(snap *Snapshot) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state file: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// FromAgents converts the coordinator's live agent map into a Snapshot.
func FromAgents(agents agent.Map) *Snapshot {
	snap := &Snapshot{Version: constants.SnapshotVersion, Agents: make(map[int]AgentSnapshot, len(agents))}
	for id, a := range agents {
		snap.Agents[id] = AgentSnapshot{
			Auto:    a.AutoContinue,
			Circuit: string(a.Circuit),
			Streak:  a.NoProgressStreak,
			Queue:   append([]string(nil), a.Queue...),
		}
	}
	return snap
}

// ApplyTo copies a snapshot's persisted fields onto the matching live
// agents. Agents present in the snapshot but absent from agents are
// silently dropped: configuration is the source of truth for which agents
// exist.
func ApplyTo(snap *Snapshot, agents agent.Map) {
	for id, a := range agents {
		saved, ok := snap.Agents[id]
		if !ok {
			continue
		}
		a.AutoContinue = saved.Auto
		a.Circuit = agent.CircuitState(saved.Circuit)
		if a.Circuit != agent.CircuitOpen && a.Circuit != agent.CircuitClosed {
			a.Circuit = agent.CircuitClosed
		}
		a.NoProgressStreak = saved.Streak
		a.Queue = append([]string(nil), saved.Queue...)
	}
}
