package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/davehorner/e-grid/internal/config"
	"github.com/davehorner/e-grid/internal/events"
	"github.com/davehorner/e-grid/internal/logging"
	"github.com/davehorner/e-grid/internal/server"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the grid server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// runServer wires the platform backend and intake hook to a Server
// facade and drives it until the process receives SIGINT/SIGTERM — the
// "installs a console-close handler that triggers graceful shutdown"
// language of spec §4.7, adapted from the teacher's os/signal handling in
// cmd/termtile/main.go's runDaemon.
func runServer(ctx context.Context) error {
	logger := logging.Init()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("e-grid: load config: %w", err)
	}

	monitors, err := platformMonitors()
	if err != nil {
		return fmt.Errorf("e-grid: enumerate monitors: %w", err)
	}
	if len(monitors) == 0 {
		return incompatibleMonitorError{reason: "no monitors detected"}
	}

	backend, err := newPlatformBackend()
	if err != nil {
		return err
	}

	queue := events.NewQueue(cfg.IPC.QueueCapacity)
	stopIntake, err := startPlatformIntake(queue)
	if err != nil {
		return fmt.Errorf("e-grid: start event intake: %w", err)
	}
	defer stopIntake()

	srv := server.New(cfg, monitors, queue, backend, logger)

	bridgeCtx, cancelBridge := context.WithCancel(ctx)
	defer cancelBridge()
	stopBridge := startPlatformBridge(bridgeCtx, srv.Bus(), logger)
	defer stopBridge()

	sigCtx, stopSig := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSig()

	logger.Info("e-grid server starting", "monitors", len(monitors), "rows_per_monitor", cfg.Grid.RowsPerMonitor, "cols_per_monitor", cfg.Grid.ColsPerMonitor)
	err = srv.Run(sigCtx)
	if err != nil && sigCtx.Err() != nil {
		// Context cancellation (SIGINT/SIGTERM) is the normal shutdown
		// path, not a reportable failure.
		return nil
	}
	return err
}

// startPlatformBridge is declared per-platform (server_windows.go /
// server_other.go): on Windows it mirrors the in-process bus onto shared
// memory via internal/ipcshm.Start so a separate client process can
// attach; elsewhere it is a no-op, since the in-process bus is this
// module's only transport off Windows.
