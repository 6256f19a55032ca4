//go:build windows

package ipcshm

import "fmt"

// Discoverable reports whether a server's GRID_HEARTBEAT region already
// exists (spec §6's auto-detect: "if GRID_HEARTBEAT publisher already
// exists, starts an interactive client; else starts the server"). It
// probes by creating-or-attaching the region and immediately releasing
// it, so a negative result never leaves a dangling section behind for the
// real server startup that follows to open fresh.
//
// This has an unavoidable TOCTOU race if two processes probe at the same
// instant — spec §5 already documents a startup race at cold start as a
// known, accepted behavior, not one this probe needs to close.
func Discoverable() (bool, error) {
	region, err := Create(regionPrefix+"GRID_HEARTBEAT", headerSize+tierSmall*slotSize)
	if err != nil {
		return false, fmt.Errorf("ipcshm: probe GRID_HEARTBEAT: %w", err)
	}
	existed := !region.Creator()
	region.Close()
	return existed, nil
}
