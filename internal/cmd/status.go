package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/dispatchd/internal/config"
	"github.com/xcawolfe-amzn/dispatchd/internal/daemonctl"
	"github.com/xcawolfe-amzn/dispatchd/internal/store"
	"github.com/xcawolfe-amzn/dispatchd/internal/style"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: GroupServices,
	Short:   "Show the last known state of every configured agent",
	RunE:    runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&configPath, "config", "dispatchd.toml", "path to dispatchd.toml")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dir, err := stateDir()
	if err != nil {
		return err
	}
	runtimeDir := runtimeDirFor(dir)

	running, pid, err := daemonctl.IsRunning(runtimeDir)
	if err != nil {
		return err
	}
	if running {
		fmt.Printf("%s dispatchd running (pid %d)\n\n", style.Bold.Render("●"), pid)
	} else {
		fmt.Printf("%s dispatchd not running\n\n", style.Dim.Render("○"))
	}

	snap, err := store.New(dir).Load()
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	ids := make([]int, 0, len(cfg.Agents))
	for id := range cfg.Agents {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	table := style.NewTable(
		style.Column{Name: "ID", Width: 4},
		style.Column{Name: "NAME", Width: 16},
		style.Column{Name: "AUTO", Width: 6},
		style.Column{Name: "CIRCUIT", Width: 8},
		style.Column{Name: "STREAK", Width: 7},
		style.Column{Name: "QUEUE", Width: 6},
	)
	for _, id := range ids {
		agentCfg := cfg.Agents[id]
		snapAgent, ok := snap.Agents[id]
		auto, circuit, streak, queue := "no", "closed", 0, 0
		if ok {
			if snapAgent.Auto {
				auto = "yes"
			}
			circuit = snapAgent.Circuit
			streak = snapAgent.Streak
			queue = len(snapAgent.Queue)
		}
		table.AddRow(
			fmt.Sprintf("%d", id),
			agentCfg.Name,
			auto,
			circuit,
			fmt.Sprintf("%d", streak),
			fmt.Sprintf("%d", queue),
		)
	}

	fmt.Print(table.Render())
	return nil
}
