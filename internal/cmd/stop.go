package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/dispatchd/internal/daemonctl"
	"github.com/xcawolfe-amzn/dispatchd/internal/style"
)

var stopCmd = &cobra.Command{
	Use:     "stop",
	GroupID: GroupServices,
	Short:   "Stop a running dispatchd instance",
	RunE:    runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	dir, err := stateDir()
	if err != nil {
		return err
	}
	runtimeDir := runtimeDirFor(dir)

	running, pid, err := daemonctl.IsRunning(runtimeDir)
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("dispatchd is not running")
	}

	if err := daemonctl.Stop(runtimeDir); err != nil {
		return fmt.Errorf("stopping dispatchd: %w", err)
	}

	fmt.Printf("%s dispatchd stopped (was pid %d)\n", style.Bold.Render("✓"), pid)
	return nil
}
