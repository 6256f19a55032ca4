// Package ipc defines the fixed wire message set (spec §6) and the
// fan-out publish/subscribe primitive the shared-memory transport
// (internal/ipcshm) and the in-process test transport both build on.
// Every message is fixed-size, little-endian, plain data — encoded with
// encoding/binary rather than the teacher's JSON-over-Unix-socket
// protocol (internal/ipc/protocol.go), because the spec requires POD
// wire layouts for a shared-memory ring buffer rather than a line-
// oriented JSON stream; the request/response correlation idiom (typed
// command, typed response, matching id) is carried over from there.
package ipc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ProtocolVersion is embedded in every message for future migration (spec
// §6: "every message carries a protocol_version field").
const ProtocolVersion uint32 = 1

// MaxPayload bounds WindowResponse's inline data payload.
const MaxPayload = 256

// EventType codes, matching spec §6's WindowEvent.event_type.
const (
	EventCreated = iota
	EventDestroyed
	EventMoved
	EventStateChanged
	EventMoveStart
	EventMoveStop
	EventResizeStart
	EventResizeStop
	EventContinuousMove
	EventContinuousResize
)

// WindowEvent is the GRID_EVENTS payload.
type WindowEvent struct {
	ProtocolVersion    uint32
	EventType          uint8
	_                  [3]byte // padding to keep Hwnd 8-byte aligned in the encoded form
	Hwnd               uint64
	Row                uint32
	Col                uint32
	GridTopLeftRow     uint32
	GridTopLeftCol     uint32
	GridBottomRightRow uint32
	GridBottomRightCol uint32
	RealX              int32
	RealY              int32
	RealWidth          uint32
	RealHeight         uint32
	MonitorID          uint32
	Timestamp          uint64
}

// WindowDetails is the GRID_WINDOW_DETAILS payload. Flags bit layout: bit0
// minimized, bit1 maximized, bit2 foreground, bit3 topmost.
type WindowDetails struct {
	ProtocolVersion       uint32
	Hwnd                  uint64
	X                     int32
	Y                     int32
	Width                 uint32
	Height                uint32
	VirtualRowTopLeft     uint32
	VirtualColTopLeft     uint32
	VirtualRowBottomRight uint32
	VirtualColBottomRight uint32
	MonitorID             uint32
	TitleHash             uint64
	Flags                 uint32
}

// Focus event type codes.
const (
	FocusEventFocused = iota
	FocusEventDefocused
)

// WindowFocusEvent is the GRID_FOCUS_EVENTS payload.
type WindowFocusEvent struct {
	ProtocolVersion uint32
	EventType       uint8
	_               [3]byte
	Hwnd            uint64
	ProcessID       uint32
	Timestamp       uint64
	AppNameHash     uint64
	WindowTitleHash uint64
	Reserved        [2]byte
	_               [2]byte // pad to a multiple of 8 for stable fixed-size encoding
}

// Command type codes, matching spec §6.
const (
	CmdGetWindowList = iota + 1
	CmdGetGridState
	CmdGetMonitorList
	CmdAssignToVirtualCell
	CmdAssignToMonitorCell
	CmdStartAnimation
	CmdSaveLayout
	CmdApplyLayout
	CmdFocusWindow
)

// WindowCommand is the GRID_COMMANDS payload.
type WindowCommand struct {
	ProtocolVersion     uint32
	RequestID           uint64
	CommandType         uint32
	Hwnd                uint64
	TargetRow           uint32
	TargetCol           uint32
	MonitorID           uint32
	LayoutID            uint32
	AnimationDurationMS uint32
	EasingType          uint8
	Reserved            [3]byte
}

// Response type codes.
const (
	RespAck = iota + 1
	RespError
	RespData
)

// WindowResponse is the GRID_RESPONSES payload.
type WindowResponse struct {
	ProtocolVersion uint32
	RequestID       uint64
	ResponseType    uint32
	PayloadLen      uint32
	Payload         [MaxPayload]byte
}

// SetPayload copies data into the fixed Payload array, truncating rather
// than erroring if it exceeds MaxPayload — a response is advisory text,
// not a transport the server blocks delivery on.
func (r *WindowResponse) SetPayload(data []byte) {
	n := len(data)
	if n > MaxPayload {
		n = MaxPayload
	}
	copy(r.Payload[:], data[:n])
	r.PayloadLen = uint32(n)
}

// PayloadBytes returns the valid prefix of Payload.
func (r *WindowResponse) PayloadBytes() []byte {
	return r.Payload[:r.PayloadLen]
}

// Heartbeat is the GRID_HEARTBEAT payload. flag: 0 alive, 1 shutdown.
type Heartbeat struct {
	ProtocolVersion uint32
	Sequence        uint64
	Timestamp       uint64
	Flag            uint8
}

// LayoutMessage parallels the SaveLayout/ApplyLayout command semantics for
// the bidirectional GRID_LAYOUT service (spec §4.6).
type LayoutMessage struct {
	ProtocolVersion uint32
	RequestID       uint64
	LayoutID        uint32
	WindowCount     uint32
	NameHash        uint64
}

// AnimationCommand parallels StartAnimation for the client->server
// GRID_ANIMATION service.
type AnimationCommand struct {
	ProtocolVersion uint32
	RequestID       uint64
	Hwnd            uint64
	TargetX         int32
	TargetY         int32
	TargetWidth     uint32
	TargetHeight    uint32
	DurationMS      uint32
	EasingType      uint8
	Reserved        [3]byte
}

// Encode serializes any of the fixed message structs above into its
// little-endian wire form.
func Encode(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("ipc: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes a little-endian wire buffer into v, which must be a
// pointer to one of the fixed message structs above.
func Decode(data []byte, v any) error {
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("ipc: decode: %w", err)
	}
	return nil
}
