// Package constants holds process-wide values that must not drift between
// packages: timing defaults, directory names, and the circuit breaker
// threshold.
package constants

import "time"

// NoProgressLimit is the number of consecutive no-progress transitions
// that trips the circuit breaker open.
const NoProgressLimit = 3

// DefaultPollInterval is used when the config document omits poll_interval.
const DefaultPollInterval = 2 * time.Second

// NotificationCooldown is the minimum spacing between two notifications for
// the same agent.
const NotificationCooldown = 30 * time.Second

// CommandChannelBuffer bounds the shared command channel producers write to.
const CommandChannelBuffer = 64

// SocketWorkerPool bounds concurrent in-flight socket connections.
const SocketWorkerPool = 8

// ShutdownDeadline is the maximum time the coordinator waits to drain and
// save state before forcibly exiting.
const ShutdownDeadline = 5 * time.Second

// IOTimeout bounds every individual subprocess invocation or HTTP call made
// on behalf of a single agent during a scan tick.
const IOTimeout = 5 * time.Second

// ChatPollBackoffCap is the maximum backoff between chat long-poll retries.
const ChatPollBackoffCap = 30 * time.Second

// StateDirName is the per-user directory (under os.UserConfigDir) holding
// the snapshot file.
const StateDirName = "dispatchd"

// SnapshotFileName is the file the Store reads/writes.
const SnapshotFileName = "state.json"

// SnapshotVersion is the current on-disk snapshot schema version.
const SnapshotVersion = 1

// RuntimeDirName holds transient, process-owned files: the default socket
// and the pid file.
const RuntimeDirName = "runtime"
