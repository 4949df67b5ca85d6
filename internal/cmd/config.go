package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/dispatchd/internal/config"
	"github.com/xcawolfe-amzn/dispatchd/internal/style"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: GroupConfig,
	Short:   "Inspect and validate dispatchd configuration",
	RunE:    requireSubcommand,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Parse and validate a dispatchd.toml document",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s %s: %d agent(s) configured\n", style.Bold.Render("✓"), args[0], len(cfg.Agents))
	return nil
}
