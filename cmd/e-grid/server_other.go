//go:build !windows

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/davehorner/e-grid/internal/client"
	"github.com/davehorner/e-grid/internal/events"
	"github.com/davehorner/e-grid/internal/grid"
	"github.com/davehorner/e-grid/internal/ipc"
	"github.com/davehorner/e-grid/internal/server"
)

// errUnsupportedPlatform is returned by every platform hook on a non-
// Windows build: internal/winapi and internal/ipcshm are both Win32-only
// (spec §1's scope is a Windows window-management fabric), so a server or
// a cross-process client cannot run here. An in-process client against a
// Server built in the same Go program (see internal/server's tests) still
// works everywhere.
var errUnsupportedPlatform = errors.New("e-grid: server/cross-process client require Windows (internal/winapi, internal/ipcshm)")

func platformMonitors() ([]grid.Monitor, error) { return nil, errUnsupportedPlatform }

func newPlatformBackend() (server.FocusBackend, error) { return nil, errUnsupportedPlatform }

func startPlatformIntake(queue *events.Queue) (func(), error) { return nil, errUnsupportedPlatform }

func startPlatformBridge(ctx context.Context, bus *ipc.Bus, logger *slog.Logger) func() {
	return func() {}
}

func platformDiscoverable() (bool, error) { return false, nil }

func newPlatformClientConn() (client.Conn, error) { return nil, errUnsupportedPlatform }
