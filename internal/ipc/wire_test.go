package ipc

import "testing"

func TestEncodeDecodeHeartbeatRoundTrip(t *testing.T) {
	hb := Heartbeat{ProtocolVersion: ProtocolVersion, Sequence: 42, Timestamp: 123456789, Flag: 1}
	data, err := Encode(hb)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got Heartbeat
	if err := Decode(data, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != hb {
		t.Fatalf("got %+v, want %+v", got, hb)
	}
}

func TestEncodeDecodeWindowCommandRoundTrip(t *testing.T) {
	cmd := WindowCommand{
		ProtocolVersion: ProtocolVersion,
		RequestID:       7,
		CommandType:     CmdAssignToMonitorCell,
		Hwnd:            0xdeadbeef,
		TargetRow:       2,
		TargetCol:       5,
		MonitorID:       0,
	}
	data, err := Encode(cmd)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var got WindowCommand
	if err := Decode(data, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != cmd {
		t.Fatalf("got %+v, want %+v", got, cmd)
	}
}

func TestWindowResponsePayloadTruncates(t *testing.T) {
	var r WindowResponse
	big := make([]byte, MaxPayload+50)
	for i := range big {
		big[i] = byte(i)
	}
	r.SetPayload(big)
	if r.PayloadLen != MaxPayload {
		t.Fatalf("PayloadLen = %d, want %d", r.PayloadLen, MaxPayload)
	}
	if len(r.PayloadBytes()) != MaxPayload {
		t.Fatalf("PayloadBytes len = %d, want %d", len(r.PayloadBytes()), MaxPayload)
	}
}
