//go:build windows

package main

import (
	"context"
	"log/slog"

	"github.com/davehorner/e-grid/internal/client"
	"github.com/davehorner/e-grid/internal/events"
	"github.com/davehorner/e-grid/internal/grid"
	"github.com/davehorner/e-grid/internal/ipc"
	"github.com/davehorner/e-grid/internal/ipcshm"
	"github.com/davehorner/e-grid/internal/server"
	"github.com/davehorner/e-grid/internal/winapi"
)

func platformMonitors() ([]grid.Monitor, error) {
	return winapi.EnumMonitors(), nil
}

func newPlatformBackend() (server.FocusBackend, error) {
	return winapi.Backend{}, nil
}

// startPlatformIntake installs the WinEvent hook and runs its Win32
// message pump on a dedicated goroutine — Pump has Win32 thread affinity
// to the thread that called Install, so it cannot share the calling
// goroutine with anything else that also wants a message loop.
func startPlatformIntake(queue *events.Queue) (func(), error) {
	hook := winapi.Install(queue)
	done := make(chan struct{})
	go func() {
		defer close(done)
		hook.Pump()
	}()
	return func() {
		hook.Uninstall()
		<-done
	}, nil
}

func startPlatformBridge(ctx context.Context, bus *ipc.Bus, logger *slog.Logger) func() {
	bridge := ipcshm.Start(ctx, bus, logger)
	return bridge.Stop
}

func platformDiscoverable() (bool, error) {
	return ipcshm.Discoverable()
}

func newPlatformClientConn() (client.Conn, error) {
	return ipcshm.NewConn(), nil
}
