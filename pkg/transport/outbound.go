package transport

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wcsocket/wcsocket-go/pkg/log"
	"github.com/wcsocket/wcsocket-go/pkg/socket"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

// SendOptions configures SendObject.
type SendOptions struct {
	// Batch queues the frame for the next batch flush.
	Batch bool
}

// SendObject serializes and sends a frame. Serialization failures are
// reported through Handler.OnError and nothing is sent.
func (t *Transport) SendObject(obj any, opts *SendOptions) {
	batch := opts != nil && opts.Batch

	var notes outbox
	t.mu.Lock()
	t.sendObjectLocked(obj, batch, &notes)
	t.mu.Unlock()
	notes.deliver()
}

func (t *Transport) sendObjectLocked(obj any, batch bool, notes *outbox) {
	if batch {
		t.batch = append(t.batch, obj)
		if !t.batchTmr.armed() {
			t.batchTmr.arm(t.config.BatchDuration, t.flushBatch)
		}
		return
	}

	if data, ok := t.serializeLocked(obj, notes); ok {
		t.sendLocked(data, notes)
	}
}

// flushBatch sends the queued frames as one array. The queue is cleared
// whether or not serialization succeeds.
func (t *Transport) flushBatch(gen uint64) {
	var notes outbox
	t.mu.Lock()
	if !t.batchTmr.take(gen) {
		t.mu.Unlock()
		return
	}
	frames := t.batch
	t.batch = nil

	if len(frames) > 0 {
		t.logger.Debug("flushing batch", slog.Int("frames", len(frames)))
		if data, ok := t.serializeLocked(frames, &notes); ok {
			t.sendLocked(data, &notes)
		}
	}
	t.mu.Unlock()
	notes.deliver()
}

func (t *Transport) serializeLocked(obj any, notes *outbox) ([]byte, bool) {
	data, err := t.codec.Encode(obj)
	if err != nil {
		t.reportErrorLocked(err, log.LayerWire, "encode", notes)
		return nil, false
	}
	return data, true
}

// sendLocked writes one message. A socket that is not open closes the
// transport with 1005, the same code used when the platform reports no
// close status.
func (t *Transport) sendLocked(data []byte, notes *outbox) {
	if t.socket.ReadyState() != socket.StateOpen {
		t.closeLocked(CloseNoStatus, "", notes)
		return
	}

	if err := t.socket.Send(data); err != nil {
		t.reportErrorLocked(fmt.Errorf("failed to send message: %w", err), log.LayerTransport, "send", notes)
		return
	}

	t.metrics.frameSent(len(data))
	t.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.id,
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame:        log.NewFrameEvent(data),
	})
}

// sendResponse encodes and sends a response frame immediately.
func (t *Transport) sendResponse(frame *wire.ResponseFrame) error {
	data, err := t.codec.Encode(frame)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	var notes outbox
	t.mu.Lock()
	t.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.id,
		Direction:    log.DirectionOut,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message: &log.MessageEvent{
			Type:     log.MessageTypeResponse,
			CallID:   frame.RID,
			HasError: frame.Error != nil,
			Payload:  frame.Data,
		},
	})
	t.sendLocked(data, &notes)
	t.mu.Unlock()

	notes.deliver()
	return nil
}
