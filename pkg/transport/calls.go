package transport

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wcsocket/wcsocket-go/pkg/log"
	"github.com/wcsocket/wcsocket-go/pkg/sockerr"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

// AckFunc receives the outcome of a call: the hydrated remote error or a
// local timeout/bad-connection error, and the response data.
type AckFunc func(err error, data any)

// EmitOptions configures Emit. A nil Callback makes the emit fire-and-forget.
type EmitOptions struct {
	// Callback is invoked exactly once with the call outcome, unless the
	// call is cancelled with CancelPendingResponse.
	Callback AckFunc

	// NoTimeout disables the ack timeout for this call.
	NoTimeout bool

	// Force sends while the transport is CONNECTING. It has no effect
	// once the transport is CLOSED.
	Force bool

	// Batch queues the frame for the next batch flush.
	Batch bool
}

// pendingCall is an outbound call awaiting its response. The ack timer
// refers to the call only through its id and sequence number.
type pendingCall struct {
	id       CallID
	seq      uint64
	event    string
	callback AckFunc
	timer    *time.Timer
	sentAt   time.Time
	span     trace.Span
}

// end stops the timer and finishes the span.
func (c *pendingCall) end(outcome string, err error) {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.span.SetAttributes(attribute.String("wcsocket.outcome", outcome))
	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	}
	c.span.End()
}

// Emit sends an event frame. ok reports whether the call is pending when
// Emit returns; id then identifies it for CancelPendingResponse. A call
// whose send closed the transport has already been aborted, so ok is false.
// When the transport is CLOSED, or CONNECTING without Force, nothing is
// sent and ok is false; a callback still receives a timeout error after
// AckTimeout unless NoTimeout is set.
func (t *Transport) Emit(event string, data any, opts *EmitOptions) (CallID, bool) {
	var o EmitOptions
	if opts != nil {
		o = *opts
	}

	var notes outbox
	t.mu.Lock()
	id, ok := t.emitLocked(event, data, o, &notes)
	t.mu.Unlock()

	notes.deliver()
	return id, ok
}

func (t *Transport) emitLocked(event string, data any, o EmitOptions, notes *outbox) (CallID, bool) {
	if t.state == StateClosed || (t.state != StateOpen && !o.Force) {
		if o.Callback != nil && !o.NoTimeout {
			t.armUntrackedTimeout(event, o.Callback)
		}
		t.logger.Debug("emit dropped, transport not open", slog.String("event", event), slog.String("state", t.state.String()))
		return 0, false
	}

	frame := &wire.EventFrame{Event: event, Data: data}
	msg := &log.MessageEvent{Type: log.MessageTypeEvent, Event: event, Payload: data}

	var id CallID
	tracked := o.Callback != nil
	if tracked {
		id = t.config.CallIDGenerator()
		frame.CID = uint64(id)
		msg.CallID = uint64(id)

		t.callSeq++
		call := &pendingCall{
			id:       id,
			seq:      t.callSeq,
			event:    event,
			callback: o.Callback,
			sentAt:   time.Now(),
		}
		_, call.span = t.tracer.Start(context.Background(), "wcsocket.call "+event,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("wcsocket.conn_id", t.id),
				attribute.String("wcsocket.event", event),
				attribute.Int64("wcsocket.cid", int64(id)),
			))
		if !o.NoTimeout {
			seq := call.seq
			call.timer = time.AfterFunc(t.config.AckTimeout, func() { t.onAckTimeout(id, seq) })
		}
		t.calls[id] = call
		t.metrics.callStarted()
	}

	t.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.id,
		Direction:    log.DirectionOut,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message:      msg,
	})
	t.sendObjectLocked(frame, o.Batch, notes)

	if tracked {
		if _, pending := t.calls[id]; !pending {
			return 0, false
		}
	}
	return id, tracked
}

// armUntrackedTimeout times out a callback whose frame was never sent. The
// call is not recorded as pending and cannot be cancelled.
func (t *Transport) armUntrackedTimeout(event string, cb AckFunc) {
	timeout := t.config.AckTimeout
	time.AfterFunc(timeout, func() {
		t.metrics.untrackedTimeout()
		cb(timeoutError(event), nil)
	})
}

func (t *Transport) onAckTimeout(id CallID, seq uint64) {
	t.mu.Lock()
	call, ok := t.calls[id]
	if !ok || call.seq != seq {
		t.mu.Unlock()
		return
	}
	delete(t.calls, id)
	err := timeoutError(call.event)
	call.end(outcomeTimeout, err)
	t.metrics.callFinished(outcomeTimeout, time.Since(call.sentAt))
	t.mu.Unlock()

	t.logger.Debug("call timed out", slog.String("event", call.event), slog.Uint64("cid", uint64(id)))
	call.callback(err, nil)
}

// CancelPendingResponse abandons a pending call. Its callback is never
// invoked. It reports whether the call was pending.
func (t *Transport) CancelPendingResponse(id CallID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	call, ok := t.calls[id]
	if !ok {
		return false
	}
	delete(t.calls, id)
	call.end(outcomeCancelled, nil)
	t.metrics.callFinished(outcomeCancelled, time.Since(call.sentAt))
	return true
}

// PendingCount returns the number of calls awaiting a response.
func (t *Transport) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

// resolveLocked completes the call a response frame refers to. Responses
// for unknown ids are ignored.
func (t *Transport) resolveLocked(frame *wire.ResponseFrame, notes *outbox) {
	id := CallID(frame.RID)
	call, ok := t.calls[id]

	msg := &log.MessageEvent{
		Type:     log.MessageTypeResponse,
		CallID:   frame.RID,
		HasError: frame.Error != nil,
		Payload:  frame.Data,
	}
	if ok {
		rtt := time.Since(call.sentAt)
		msg.Event = call.event
		msg.RoundTrip = &rtt
	}
	t.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.id,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message:      msg,
	})

	if !ok {
		t.logger.Debug("response for unknown call", slog.Uint64("rid", frame.RID))
		return
	}

	delete(t.calls, id)
	err := sockerr.Hydrate(frame.Error)
	outcome := outcomeResolved
	if err != nil {
		outcome = outcomeRejected
	}
	call.end(outcome, err)
	t.metrics.callFinished(outcome, time.Since(call.sentAt))

	data := frame.Data
	notes.add(func() { call.callback(err, data) })
}

// abortCallsLocked rejects every pending call with a bad-connection error,
// in the order the calls were made.
func (t *Transport) abortCallsLocked(failure sockerr.FailureType, notes *outbox) {
	if len(t.calls) == 0 {
		return
	}

	calls := make([]*pendingCall, 0, len(t.calls))
	for _, call := range t.calls {
		calls = append(calls, call)
	}
	slices.SortFunc(calls, func(a, b *pendingCall) int { return cmp.Compare(a.seq, b.seq) })
	clear(t.calls)

	for _, call := range calls {
		err := sockerr.NewBadConnection(
			fmt.Sprintf("Event '%s' was aborted due to a bad connection", call.event), failure)
		call.end(outcomeAborted, err)
		t.metrics.callFinished(outcomeAborted, time.Since(call.sentAt))
		cb := call.callback
		notes.add(func() { cb(err, nil) })
	}
}

func timeoutError(event string) error {
	return sockerr.NewTimeout(fmt.Sprintf("Event response for '%s' timed out", event))
}
