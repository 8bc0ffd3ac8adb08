package log

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologAdapterLogsControlEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapter(zerolog.New(&buf))

	code := 1000
	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-9",
		Direction:    DirectionOut,
		Layer:        LayerWire,
		Category:     CategoryControl,
		ControlMsg:   &ControlMsgEvent{Type: ControlMsgDisconnect, CloseCode: &code},
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}

	if entry["level"] != "debug" {
		t.Errorf("level: got %v", entry["level"])
	}
	if entry["message"] != "protocol" {
		t.Errorf("message: got %v", entry["message"])
	}
	if entry["conn_id"] != "conn-9" {
		t.Errorf("conn_id: got %v", entry["conn_id"])
	}
	if entry["ctrl_type"] != "DISCONNECT" {
		t.Errorf("ctrl_type: got %v", entry["ctrl_type"])
	}
	if entry["close_code"] != float64(1000) {
		t.Errorf("close_code: got %v", entry["close_code"])
	}
}

func TestZerologAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	NewZerologAdapter(logger).Log(Event{Message: &MessageEvent{Type: MessageTypeEvent, Event: "x"}})
	if buf.Len() != 0 {
		t.Errorf("debug event written at info level: %q", buf.String())
	}

	NewZerologAdapter(logger).WithLevel(zerolog.InfoLevel).Log(Event{Message: &MessageEvent{Type: MessageTypeEvent, Event: "x"}})
	if buf.Len() == 0 {
		t.Error("info event was not written")
	}
}
