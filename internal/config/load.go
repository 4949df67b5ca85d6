package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
	"github.com/xcawolfe-amzn/dispatchd/internal/util"
)

// paneHandlePattern matches the opaque multiplexer handle form (a letter
// followed by digits, e.g. "%0" is NOT this form — tmux's own pane ids use
// a leading "%"; dispatchd's config accepts whatever the configured
// multiplexer emits, validated only against the "not an index" shape
// documented in spec.md §4.1/§6: a letter followed by digits).
var paneHandlePattern = regexp.MustCompile(`^[A-Za-z]\d+$`)

// Load reads and validates a dispatchd.toml document at path. On any
// validation failure it returns a descriptive error and performs no
// side-effecting I/O beyond the read itself (spec.md §4.4: "the process
// exits with a diagnostic before any side-effecting I/O").
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return validate(&raw)
}

func validate(raw *rawConfig) (*Config, error) {
	cfg := &Config{
		Agents:       make(map[int]AgentConfig, len(raw.Agents)),
		SocketPath:   raw.SocketPath,
		FifoPath:     raw.FifoPath,
		PollInterval: raw.PollInterval,
		Pushover:     raw.Pushover,
		Telegram:     raw.Telegram,
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = constants.DefaultPollInterval.Seconds()
	}
	if cfg.PollInterval <= 0.1 {
		return nil, fmt.Errorf("poll_interval must be > 0.1s, got %v", cfg.PollInterval)
	}

	if len(raw.Agents) == 0 {
		return nil, fmt.Errorf("config must define at least one agent")
	}

	seen := make(map[int]bool, len(raw.Agents))
	var ids []string
	for k := range raw.Agents {
		ids = append(ids, k)
	}
	sort.Strings(ids)

	for _, key := range ids {
		agentCfg := raw.Agents[key]
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("agent id %q must be a positive integer", key)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate agent id %d", id)
		}
		seen[id] = true

		if !paneHandlePattern.MatchString(agentCfg.PaneID) {
			return nil, fmt.Errorf("agent %d: pane_id %q is not an opaque handle (expected letter+digits, not an index)", id, agentCfg.PaneID)
		}

		worktree := util.ExpandHome(agentCfg.Worktree)
		if worktree == "" {
			return nil, fmt.Errorf("agent %d: worktree is required", id)
		}
		info, err := os.Stat(worktree)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("agent %d: worktree %q does not exist", id, agentCfg.Worktree)
		}

		cfg.Agents[id] = AgentConfig{
			PaneID:   agentCfg.PaneID,
			Name:     agentCfg.Name,
			Worktree: worktree,
		}
	}

	return cfg, nil
}
