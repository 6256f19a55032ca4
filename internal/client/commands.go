package client

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/davehorner/e-grid/internal/animation"
	"github.com/davehorner/e-grid/internal/grid"
	"github.com/davehorner/e-grid/internal/ipc"
)

func (c *Client) nextRequestID() uint64 {
	return atomic.AddUint64(&c.reqSeq, 1)
}

// sendCommand publishes cmd on GRID_COMMANDS and waits on GRID_RESPONSES
// for the matching request id, bounded by cfg.IPC.ClientTimeout.
func (c *Client) sendCommand(ctx context.Context, cmd ipc.WindowCommand) (ipc.WindowResponse, error) {
	cmd.ProtocolVersion = ipc.ProtocolVersion
	cmd.RequestID = c.nextRequestID()

	wait := c.registerPending(cmd.RequestID)
	defer c.unregisterPending(cmd.RequestID)

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ipc.WindowResponse{}, errNotConnected{}
	}

	data, err := ipc.Encode(&cmd)
	if err != nil {
		return ipc.WindowResponse{}, fmt.Errorf("client: encode command: %w", err)
	}
	if err := conn.Publish(ipc.ServiceGridCommands, data); err != nil {
		return ipc.WindowResponse{}, fmt.Errorf("client: publish command: %w", err)
	}

	timeout := c.cfg.IPC.ClientTimeout()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-wait:
		return resp, nil
	case <-timer.C:
		return ipc.WindowResponse{}, fmt.Errorf("client: command %d (type %d) timed out after %s", cmd.RequestID, cmd.CommandType, timeout)
	case <-ctx.Done():
		return ipc.WindowResponse{}, ctx.Err()
	case <-c.closed:
		return ipc.WindowResponse{}, errNotConnected{}
	}
}

func responseErr(resp ipc.WindowResponse) error {
	if resp.ResponseType == ipc.RespError {
		return fmt.Errorf("client: server error: %s", resp.PayloadBytes())
	}
	return nil
}

func responseText(resp ipc.WindowResponse) string {
	return string(resp.PayloadBytes())
}

func (c *Client) validateCell(row, col int) error {
	if row < 0 || row >= c.cfg.Grid.RowsPerMonitor {
		return fmt.Errorf("client: row %d out of declared grid range [0,%d)", row, c.cfg.Grid.RowsPerMonitor)
	}
	if col < 0 || col >= c.cfg.Grid.ColsPerMonitor {
		return fmt.Errorf("client: col %d out of declared grid range [0,%d)", col, c.cfg.Grid.ColsPerMonitor)
	}
	return nil
}

func durationAndEasingWire(duration time.Duration, easing animation.Easing) (uint32, uint8) {
	if duration <= 0 {
		duration = 250 * time.Millisecond
	}
	return uint32(duration / time.Millisecond), uint8(easing)
}

// GetWindowList asks the server for its tracked window set, returning the
// advisory text payload the server facade responds with.
func (c *Client) GetWindowList(ctx context.Context) (string, error) {
	resp, err := c.sendCommand(ctx, ipc.WindowCommand{CommandType: ipc.CmdGetWindowList})
	if err != nil {
		return "", err
	}
	if err := responseErr(resp); err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// GetGridState asks the server for a virtual-grid occupancy summary.
func (c *Client) GetGridState(ctx context.Context) (string, error) {
	resp, err := c.sendCommand(ctx, ipc.WindowCommand{CommandType: ipc.CmdGetGridState})
	if err != nil {
		return "", err
	}
	if err := responseErr(resp); err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// GetMonitorList asks the server for the negotiated monitor layout.
func (c *Client) GetMonitorList(ctx context.Context) (string, error) {
	resp, err := c.sendCommand(ctx, ipc.WindowCommand{CommandType: ipc.CmdGetMonitorList})
	if err != nil {
		return "", err
	}
	if err := responseErr(resp); err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// AssignToVirtualCell requests that h animate to (row, col) in the
// virtual grid's coordinate space.
func (c *Client) AssignToVirtualCell(ctx context.Context, h grid.Handle, row, col int, duration time.Duration, easing animation.Easing) error {
	if err := c.validateCell(row, col); err != nil {
		return err
	}
	durMS, easingByte := durationAndEasingWire(duration, easing)
	cmd := ipc.WindowCommand{
		CommandType: ipc.CmdAssignToVirtualCell, Hwnd: uint64(h),
		TargetRow: uint32(row), TargetCol: uint32(col),
		AnimationDurationMS: durMS, EasingType: easingByte,
	}
	resp, err := c.sendCommand(ctx, cmd)
	if err != nil {
		return err
	}
	return responseErr(resp)
}

// AssignToMonitorCell requests that h animate to (row, col) within
// monitorID's own work-area grid.
func (c *Client) AssignToMonitorCell(ctx context.Context, h grid.Handle, monitorID grid.MonitorID, row, col int, duration time.Duration, easing animation.Easing) error {
	if err := c.validateCell(row, col); err != nil {
		return err
	}
	durMS, easingByte := durationAndEasingWire(duration, easing)
	cmd := ipc.WindowCommand{
		CommandType: ipc.CmdAssignToMonitorCell, Hwnd: uint64(h),
		TargetRow: uint32(row), TargetCol: uint32(col), MonitorID: uint32(monitorID),
		AnimationDurationMS: durMS, EasingType: easingByte,
	}
	resp, err := c.sendCommand(ctx, cmd)
	if err != nil {
		return err
	}
	return responseErr(resp)
}

// StartAnimation requests an animation toward (row, col); a nonzero
// monitorID addresses that monitor's local grid, matching the server
// facade's addressing heuristic for this command (see Server.Handle in
// internal/server/commands.go).
func (c *Client) StartAnimation(ctx context.Context, h grid.Handle, monitorID grid.MonitorID, row, col int, duration time.Duration, easing animation.Easing) error {
	if err := c.validateCell(row, col); err != nil {
		return err
	}
	durMS, easingByte := durationAndEasingWire(duration, easing)
	cmd := ipc.WindowCommand{
		CommandType: ipc.CmdStartAnimation, Hwnd: uint64(h),
		TargetRow: uint32(row), TargetCol: uint32(col), MonitorID: uint32(monitorID),
		AnimationDurationMS: durMS, EasingType: easingByte,
	}
	resp, err := c.sendCommand(ctx, cmd)
	if err != nil {
		return err
	}
	return responseErr(resp)
}

// SaveLayout snapshots the server's current window arrangement under
// layoutID (the wire protocol keys saved layouts by this numeric id, not
// a string name).
func (c *Client) SaveLayout(ctx context.Context, layoutID uint32) (string, error) {
	resp, err := c.sendCommand(ctx, ipc.WindowCommand{CommandType: ipc.CmdSaveLayout, LayoutID: layoutID})
	if err != nil {
		return "", err
	}
	if err := responseErr(resp); err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// ApplyLayout restores a previously saved layout, or — when layoutID
// falls in the generated-preset range the server facade reserves — a
// named layout.Registry preset, addressed through this same command.
func (c *Client) ApplyLayout(ctx context.Context, layoutID uint32, duration time.Duration, easing animation.Easing) (string, error) {
	durMS, easingByte := durationAndEasingWire(duration, easing)
	cmd := ipc.WindowCommand{CommandType: ipc.CmdApplyLayout, LayoutID: layoutID, AnimationDurationMS: durMS, EasingType: easingByte}
	resp, err := c.sendCommand(ctx, cmd)
	if err != nil {
		return "", err
	}
	if err := responseErr(resp); err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// FocusWindow requests that h be brought to the foreground.
func (c *Client) FocusWindow(ctx context.Context, h grid.Handle) error {
	resp, err := c.sendCommand(ctx, ipc.WindowCommand{CommandType: ipc.CmdFocusWindow, Hwnd: uint64(h)})
	if err != nil {
		return err
	}
	return responseErr(resp)
}
