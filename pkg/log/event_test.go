package log

import (
	"bytes"
	"testing"
)

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"DirectionIn", DirectionIn.String(), "IN"},
		{"DirectionOut", DirectionOut.String(), "OUT"},
		{"DirectionUnknown", Direction(9).String(), "UNKNOWN"},
		{"LayerTransport", LayerTransport.String(), "TRANSPORT"},
		{"LayerWire", LayerWire.String(), "WIRE"},
		{"LayerSession", LayerSession.String(), "SESSION"},
		{"CategoryMessage", CategoryMessage.String(), "MESSAGE"},
		{"CategoryControl", CategoryControl.String(), "CONTROL"},
		{"CategoryState", CategoryState.String(), "STATE"},
		{"CategoryError", CategoryError.String(), "ERROR"},
		{"MessageTypeEvent", MessageTypeEvent.String(), "EVENT"},
		{"MessageTypeResponse", MessageTypeResponse.String(), "RESPONSE"},
		{"MessageTypeRaw", MessageTypeRaw.String(), "RAW"},
		{"ControlMsgPing", ControlMsgPing.String(), "PING"},
		{"ControlMsgPong", ControlMsgPong.String(), "PONG"},
		{"ControlMsgDisconnect", ControlMsgDisconnect.String(), "DISCONNECT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestNewFrameEvent(t *testing.T) {
	small := NewFrameEvent([]byte(`{"event":"x"}`))
	if small.Size != 13 || small.Truncated {
		t.Errorf("small frame: size=%d truncated=%v", small.Size, small.Truncated)
	}

	big := bytes.Repeat([]byte{'a'}, MaxFrameData+10)
	fe := NewFrameEvent(big)
	if fe.Size != MaxFrameData+10 {
		t.Errorf("Size: got %d, want %d", fe.Size, MaxFrameData+10)
	}
	if !fe.Truncated {
		t.Error("large frame should be truncated")
	}
	if len(fe.Data) != MaxFrameData {
		t.Errorf("Data length: got %d, want %d", len(fe.Data), MaxFrameData)
	}

	// The event must not alias the caller's buffer.
	big[0] = 'b'
	if fe.Data[0] != 'a' {
		t.Error("frame data aliases input buffer")
	}
}
