package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/dispatchd/internal/command"
	"github.com/xcawolfe-amzn/dispatchd/internal/config"
	"github.com/xcawolfe-amzn/dispatchd/internal/constants"
	"github.com/xcawolfe-amzn/dispatchd/internal/coordinator"
	"github.com/xcawolfe-amzn/dispatchd/internal/daemonctl"
	"github.com/xcawolfe-amzn/dispatchd/internal/notify"
	"github.com/xcawolfe-amzn/dispatchd/internal/pane"
	"github.com/xcawolfe-amzn/dispatchd/internal/producer"
	"github.com/xcawolfe-amzn/dispatchd/internal/store"
)

var (
	configPath string
	tmuxBin    string
)

var runCmd = &cobra.Command{
	Use:     "run",
	GroupID: GroupServices,
	Short:   "Run the dispatchd coordinator in the foreground",
	RunE:    runRun,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "dispatchd.toml", "path to dispatchd.toml")
	runCmd.Flags().StringVar(&tmuxBin, "tmux-bin", "tmux", "multiplexer binary to invoke")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	stateDir, err := stateDir()
	if err != nil {
		return err
	}
	runtimeDir := runtimeDirFor(stateDir)

	if running, pid, err := daemonctl.IsRunning(runtimeDir); err != nil {
		return err
	} else if running {
		return fmt.Errorf("dispatchd already running (pid %d)", pid)
	}

	st := store.New(stateDir)
	paneDriver := pane.New(tmuxBin)
	notifier := notify.New(cfg.Pushover)

	co, err := coordinator.New(cfg, paneDriver, notifier, st)
	if err != nil {
		return fmt.Errorf("starting coordinator: %w", err)
	}

	if err := daemonctl.WritePID(runtimeDir); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	defer daemonctl.RemovePID(runtimeDir)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	commands := co.Commands()
	startProducers(ctx, cfg, runtimeDir, commands)

	log.Printf("dispatchd: running with %d agent(s), poll interval %.1fs", len(cfg.Agents), cfg.PollInterval)
	return co.Run(ctx)
}

// startProducers launches each configured input channel in its own
// goroutine, independent failure domains per spec.md §4.6.
func startProducers(ctx context.Context, cfg *config.Config, runtimeDir string, commands chan<- producer.Line) {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = runtimeDir + "/dispatchd.sock"
	}
	sock := &producer.Socket{
		Path:  socketPath,
		Reply: replyForLine,
	}
	go sock.Run(ctx, commands)

	if cfg.FifoPath != "" {
		fifo := &producer.FIFO{Path: cfg.FifoPath}
		go fifo.Run(ctx, commands)
	}

	if cfg.Telegram != nil && cfg.Telegram.BotToken != "" {
		bot := producer.NewChatbot(cfg.Telegram.BotToken, cfg.Telegram.AllowedUserIDs)
		go bot.Run(ctx, commands)
	}

	stdin := &producer.Stdin{File: os.Stdin}
	go stdin.Run(ctx, commands)
}

// replyForLine parses a socket-submitted line just far enough to report
// whether the coordinator will accept it; the coordinator re-parses and
// actually acts on it once pushed onto the shared channel.
func replyForLine(line string) string {
	cmd := command.Parse(line)
	if cmd.Kind == command.Invalid {
		return "error: " + cmd.Err
	}
	return "ok"
}

func stateDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return dir + "/" + constants.StateDirName, nil
}

func runtimeDirFor(stateDir string) string {
	return stateDir + "/" + constants.RuntimeDirName
}
