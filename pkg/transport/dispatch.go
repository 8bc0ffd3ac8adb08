package transport

import (
	"fmt"
	"time"

	"github.com/wcsocket/wcsocket-go/pkg/log"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

// handleMessage decodes one socket message and dispatches its frames in
// order. Every message is first passed on as EventMessage.
func (t *Transport) handleMessage(data []byte) {
	t.metrics.frameReceived(len(data))
	t.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.id,
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame:        log.NewFrameEvent(data),
	})

	raw := string(data)
	var notes outbox
	notes.add(func() { t.handler.OnEvent(EventMessage, raw, nil) })

	packet, err := wire.DecodePacket(t.codec, data)

	t.mu.Lock()
	switch {
	case err != nil:
		t.reportErrorLocked(fmt.Errorf("failed to decode message: %w", err), log.LayerWire, "decode", &notes)
	case packet.Ping:
		t.handlePingLocked(&notes)
	default:
		batchSize := 0
		if packet.Batch {
			batchSize = len(packet.Frames)
		}
		for _, frame := range packet.Frames {
			t.dispatchLocked(frame, raw, batchSize, &notes)
		}
	}
	t.mu.Unlock()

	notes.deliver()
}

func (t *Transport) dispatchLocked(frame wire.Frame, raw string, batchSize int, notes *outbox) {
	switch f := frame.(type) {
	case *wire.EventFrame:
		t.logInbound(&log.MessageEvent{
			Type:      log.MessageTypeEvent,
			Event:     f.Event,
			CallID:    f.CID,
			Payload:   f.Data,
			BatchSize: batchSize,
		})
		res := newResponse(t, CallID(f.CID))
		notes.add(func() { t.handler.OnEvent(f.Event, f.Data, res) })

	case *wire.ResponseFrame:
		t.resolveLocked(f, notes)

	case *wire.RawFrame:
		t.logInbound(&log.MessageEvent{Type: log.MessageTypeRaw, BatchSize: batchSize})
		notes.add(func() { t.handler.OnEvent(EventRaw, raw, nil) })
	}
}

func (t *Transport) logInbound(msg *log.MessageEvent) {
	t.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.id,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message:      msg,
	})
}
