// dispatchd watches multiplexer panes running coding-assistant sessions and
// dispatches queued tasks when they go idle.
package main

import (
	"os"

	"github.com/xcawolfe-amzn/dispatchd/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
