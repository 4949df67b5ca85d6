package coordinator

import (
	"github.com/xcawolfe-amzn/dispatchd/internal/agent"
	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
	"github.com/xcawolfe-amzn/dispatchd/internal/notify"
	"github.com/xcawolfe-amzn/dispatchd/internal/producer"
	"github.com/xcawolfe-amzn/dispatchd/internal/store"
)

// newForTest builds a Coordinator around injected fakes, bypassing New's
// config/file-backed wiring, for use by this package's own tests.
func newForTest(agents agent.Map, pd paneDriver, fp fingerprintFunc, st *store.Store) *Coordinator {
	return &Coordinator{
		agents:      agents,
		pane:        pd,
		notifier:    notify.New(nil),
		store:       st,
		fingerprint: fp,
		commands:    make(chan producer.Line, constants.CommandChannelBuffer),
	}
}
