// Package cmd provides the dispatchd CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Command groups, mirrored after the teacher's own GroupServices/GroupConfig
// split so `dispatchd help` separates the daemon lifecycle from one-shot
// inspection commands.
const (
	GroupServices = "services"
	GroupConfig   = "config"
)

var rootCmd = &cobra.Command{
	Use:   "dispatchd",
	Short: "Multi-agent command dispatcher",
	Long: `dispatchd watches a set of multiplexer panes running coding-assistant
sessions, detects when each goes idle, and dispatches the next queued
task or an auto-continue nudge.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupServices, Title: "Service Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Config Commands:"},
	)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

// requireSubcommand is RunE for parent commands that exist only to group
// subcommands; invoking them bare is a usage error.
func requireSubcommand(cmd *cobra.Command, args []string) error {
	return fmt.Errorf("%s requires a subcommand; run '%s --help' for usage", cmd.CommandPath(), cmd.CommandPath())
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
