package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/davehorner/e-grid/internal/animation"
	"github.com/davehorner/e-grid/internal/dispatcher"
	"github.com/davehorner/e-grid/internal/geometry"
	"github.com/davehorner/e-grid/internal/grid"
	"github.com/davehorner/e-grid/internal/ipc"
	"github.com/davehorner/e-grid/internal/layout"
)

// presetLayoutIDBase marks LayoutIDs the ApplyLayout command should treat
// as a generated (not saved) preset arrangement rather than a saved-
// layout lookup (supplemented feature, SPEC_FULL.md §C.3): LayoutID
// values at or above this base select a layout.Registry preset by index
// instead of a stored SavedLayout.
const presetLayoutIDBase = 0xF0000000

var presetNames = [...]string{"grid", "cascade", "fibonacci"}

func presetNameForLayoutID(id uint32) (string, bool) {
	if id < presetLayoutIDBase {
		return "", false
	}
	idx := id - presetLayoutIDBase
	if int(idx) >= len(presetNames) {
		return "", false
	}
	return presetNames[idx], true
}

// Drain satisfies dispatcher.CommandSource: it decodes up to max pending
// WindowCommand messages off GRID_COMMANDS into the dispatcher's Command
// shape.
func (s *Server) Drain(max int) []dispatcher.Command {
	if s.cmdSub == nil {
		return nil
	}
	out := make([]dispatcher.Command, 0, max)
	for i := 0; i < max; i++ {
		data, ok := s.cmdSub.TryRecv()
		if !ok {
			break
		}
		var wc ipc.WindowCommand
		if err := ipc.Decode(data, &wc); err != nil {
			s.logger.Warn("server: decode command", "error", err)
			continue
		}
		out = append(out, dispatcher.Command{
			RequestID:  wc.RequestID,
			Type:       dispatcher.CommandType(wc.CommandType),
			Handle:     wc.Hwnd,
			TargetRow:  int(wc.TargetRow),
			TargetCol:  int(wc.TargetCol),
			MonitorID:  wc.MonitorID,
			LayoutID:   wc.LayoutID,
			DurationMS: wc.AnimationDurationMS,
			Easing:     wc.EasingType,
		})
	}
	return out
}

// Handle satisfies dispatcher.CommandHandler: it executes one command to
// completion and publishes exactly one WindowResponse (spec §4.7).
func (s *Server) Handle(cmd dispatcher.Command) {
	switch cmd.Type {
	case dispatcher.GetWindowList:
		s.handleGetWindowList(cmd)
	case dispatcher.GetGridState:
		s.handleGetGridState(cmd)
	case dispatcher.GetMonitorList:
		s.handleGetMonitorList(cmd)
	case dispatcher.AssignToVirtualCell:
		s.handleAssign(cmd, false)
	case dispatcher.AssignToMonitorCell:
		s.handleAssign(cmd, true)
	case dispatcher.StartAnimation:
		// StartAnimation addresses the same target-cell fields as the
		// Assign commands; a nonzero MonitorID selects monitor-local
		// cell coordinates, matching AssignToMonitorCell's addressing.
		s.handleAssign(cmd, cmd.MonitorID != 0)
	case dispatcher.SaveLayout:
		s.handleSaveLayout(cmd)
	case dispatcher.ApplyLayout:
		s.handleApplyLayout(cmd)
	case dispatcher.FocusWindow:
		s.handleFocusWindow(cmd)
	default:
		s.respondError(cmd.RequestID, fmt.Sprintf("unknown command type %d", cmd.Type))
	}
}

func (s *Server) handleGetWindowList(cmd dispatcher.Command) {
	snap := s.tracker.Snapshot()
	handles := make([]grid.Handle, 0, len(snap.Windows))
	for h := range snap.Windows {
		handles = append(handles, h)
	}
	s.respondData(cmd.RequestID, fmt.Sprintf("%d windows: %v", len(handles), handles))
}

func (s *Server) handleGetGridState(cmd dispatcher.Command) {
	snap := s.tracker.Snapshot()
	occupied := 0
	for _, c := range snap.Virtual.Cells {
		if c.Occupied {
			occupied++
		}
	}
	s.respondData(cmd.RequestID, fmt.Sprintf("virtual %dx%d, %d occupied cells, %d windows",
		snap.Virtual.Rows, snap.Virtual.Cols, occupied, len(snap.Windows)))
}

func (s *Server) handleGetMonitorList(cmd dispatcher.Command) {
	monitors := s.tracker.Monitors()
	s.respondData(cmd.RequestID, fmt.Sprintf("%d monitors: %v", len(monitors), monitorSummaries(monitors)))
}

func monitorSummaries(monitors []grid.Monitor) []string {
	out := make([]string, len(monitors))
	for i, m := range monitors {
		out[i] = fmt.Sprintf("#%d %dx%d", m.ID, m.Width, m.Height)
	}
	return out
}

// handleAssign resolves the command's target cell into a rectangle
// (virtual grid, or one monitor's grid when byMonitor is true) and starts
// an animation toward it, defaulting to EaseInOut over 250ms when the
// command leaves duration/easing at zero.
func (s *Server) handleAssign(cmd dispatcher.Command, byMonitor bool) {
	w, ok := s.tracker.Get(grid.Handle(cmd.Handle))
	if !ok {
		s.respondError(cmd.RequestID, "unknown window handle")
		return
	}

	cfg := s.tracker.Config()
	var target geometry.Rect
	if byMonitor {
		mon, ok := s.findMonitor(grid.MonitorID(cmd.MonitorID))
		if !ok {
			s.respondError(cmd.RequestID, "unknown monitor id")
			return
		}
		target = geometry.CellBounds(cmd.TargetRow, cmd.TargetCol, cfg.RowsPerMonitor, cfg.ColsPerMonitor, mon.WorkArea)
	} else {
		target = geometry.CellBounds(cmd.TargetRow, cmd.TargetCol, cfg.RowsPerMonitor, cfg.ColsPerMonitor, s.tracker.VirtualBounds())
	}

	duration, easing := durationAndEasing(cmd)
	s.anim.Start(grid.Handle(cmd.Handle), w.Rect, target, duration, easing, time.Now())
	s.respondAck(cmd.RequestID)
}

func (s *Server) findMonitor(id grid.MonitorID) (grid.Monitor, bool) {
	for _, m := range s.tracker.Monitors() {
		if m.ID == id {
			return m, true
		}
	}
	return grid.Monitor{}, false
}

func durationAndEasing(cmd dispatcher.Command) (time.Duration, animation.Easing) {
	duration := time.Duration(cmd.DurationMS) * time.Millisecond
	if duration <= 0 {
		duration = 250 * time.Millisecond
	}
	easing := animation.Easing(cmd.Easing)
	if easing < animation.Linear || easing > animation.Back {
		easing = animation.EaseInOut
	}
	return duration, easing
}

// handleSaveLayout snapshots the current window set under a name derived
// from the command's numeric LayoutID (the wire protocol has no string
// field for a layout name, so this module uses the decimal LayoutID as
// the LayoutStore key — see DESIGN.md).
func (s *Server) handleSaveLayout(cmd dispatcher.Command) {
	snap := s.tracker.Snapshot()
	handles := make([]grid.Handle, 0, len(snap.Windows))
	for h := range snap.Windows {
		handles = append(handles, h)
	}
	name := strconv.FormatUint(uint64(cmd.LayoutID), 10)
	saved := s.layouts.Save(name, handles, s.tracker.Get, identityOf)
	s.respondData(cmd.RequestID, fmt.Sprintf("saved layout %s with %d entries", name, len(saved.Entries)))
}

// handleApplyLayout applies either a saved layout (by numeric name) or,
// when LayoutID falls in the preset range, a generated layout.Registry
// preset spread across the currently tracked manageable windows
// (supplemented feature, SPEC_FULL.md §C.3).
func (s *Server) handleApplyLayout(cmd dispatcher.Command) {
	duration, easing := durationAndEasing(cmd)

	if presetName, ok := presetNameForLayoutID(cmd.LayoutID); ok {
		s.applyPreset(cmd, presetName, duration, easing)
		return
	}

	name := strconv.FormatUint(uint64(cmd.LayoutID), 10)
	saved, ok := s.layouts.Get(name)
	if !ok {
		s.respondError(cmd.RequestID, "no saved layout "+name)
		return
	}

	resolve := func(id animation.Identity) (grid.Handle, geometry.Rect, bool) {
		var found grid.Handle
		var rect geometry.Rect
		matched := false
		s.tracker.ForEachWindow(func(w grid.WindowInfo) {
			if matched {
				return
			}
			if identityOf(w) == id {
				found, rect, matched = w.Handle, w.Rect, true
			}
		})
		return found, rect, matched
	}

	result := animation.Apply(saved, resolve, s.anim, duration, easing, time.Now())
	s.respondData(cmd.RequestID, fmt.Sprintf("applied layout %s: %d animated, %d warnings", name, len(result.Animated), len(result.Warnings)))
}

func (s *Server) applyPreset(cmd dispatcher.Command, presetName string, duration time.Duration, easing animation.Easing) {
	preset, err := layout.Lookup(presetName)
	if err != nil {
		s.respondError(cmd.RequestID, err.Error())
		return
	}

	var handles []grid.Handle
	s.tracker.ForEachWindow(func(w grid.WindowInfo) {
		if w.Manageable {
			handles = append(handles, w.Handle)
		}
	})
	if len(handles) == 0 {
		s.respondData(cmd.RequestID, "preset "+presetName+": no manageable windows")
		return
	}

	rects := preset(len(handles), s.tracker.VirtualBounds())
	now := time.Now()
	for i, h := range handles {
		w, ok := s.tracker.Get(h)
		if !ok || i >= len(rects) {
			continue
		}
		s.anim.Start(h, w.Rect, rects[i], duration, easing, now)
	}
	s.respondData(cmd.RequestID, fmt.Sprintf("applied preset %s to %d windows", presetName, len(handles)))
}

func (s *Server) handleFocusWindow(cmd dispatcher.Command) {
	if s.backend == nil {
		s.respondError(cmd.RequestID, "no focus backend configured")
		return
	}
	if err := s.backend.Focus(grid.Handle(cmd.Handle)); err != nil {
		s.respondError(cmd.RequestID, err.Error())
		return
	}
	s.respondAck(cmd.RequestID)
}

func (s *Server) respondAck(requestID uint64) {
	resp := ipc.WindowResponse{ProtocolVersion: ipc.ProtocolVersion, RequestID: requestID, ResponseType: ipc.RespAck}
	s.publish(s.bus.Responses, &resp)
}

func (s *Server) respondError(requestID uint64, reason string) {
	resp := ipc.WindowResponse{ProtocolVersion: ipc.ProtocolVersion, RequestID: requestID, ResponseType: ipc.RespError}
	resp.SetPayload([]byte(reason))
	s.publish(s.bus.Responses, &resp)
}

func (s *Server) respondData(requestID uint64, data string) {
	resp := ipc.WindowResponse{ProtocolVersion: ipc.ProtocolVersion, RequestID: requestID, ResponseType: ipc.RespData}
	resp.SetPayload([]byte(data))
	s.publish(s.bus.Responses, &resp)
}
