// Package config loads and validates the dispatchd configuration document
// (spec.md §6). The on-disk format is TOML, following the teacher's own
// choice of format for structured documents (see internal/config's
// hooks registry in the teacher repo).
package config

// AgentConfig is one entry under [agents.<id>] in dispatchd.toml.
type AgentConfig struct {
	PaneID   string `toml:"pane_id"`
	Name     string `toml:"name"`
	Worktree string `toml:"worktree"`
}

// PushoverConfig carries Pushover push-notification credentials.
type PushoverConfig struct {
	UserKey  string `toml:"user_key"`
	APIToken string `toml:"api_token"`
}

// TelegramConfig carries the chat-bot long-poller's credentials and
// sender allow-list.
type TelegramConfig struct {
	BotToken        string  `toml:"bot_token"`
	AllowedUserIDs  []int64 `toml:"allowed_user_ids"`
}

// Config is the fully parsed and validated configuration document.
type Config struct {
	Agents       map[int]AgentConfig
	SocketPath   string
	FifoPath     string
	PollInterval float64 // seconds
	Pushover     *PushoverConfig
	Telegram     *TelegramConfig
}

// rawConfig mirrors the TOML document exactly; agent ids are TOML table
// keys and therefore strings until Load converts and validates them.
type rawConfig struct {
	Agents       map[string]AgentConfig `toml:"agents"`
	SocketPath   string                 `toml:"socket_path"`
	FifoPath     string                 `toml:"fifo_path"`
	PollInterval float64                `toml:"poll_interval"`
	Pushover     *PushoverConfig        `toml:"pushover"`
	Telegram     *TelegramConfig        `toml:"telegram"`
}
