package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wcsocket/wcsocket-go/pkg/auth"
	"github.com/wcsocket/wcsocket-go/pkg/log"
	"github.com/wcsocket/wcsocket-go/pkg/socket"
	"github.com/wcsocket/wcsocket-go/pkg/sockerr"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

// TracerName is the instrumentation name used for the default tracer.
const TracerName = "github.com/wcsocket/wcsocket-go/pkg/transport"

// Construction errors.
var (
	ErrNilCodec      = errors.New("codec is nil")
	ErrNilAuthEngine = errors.New("auth token loader is nil")
)

// Transport is one client connection speaking the event protocol over a
// socket. It is created CONNECTING and dials immediately.
type Transport struct {
	id      string
	config  Config
	auth    auth.TokenLoader
	codec   wire.Codec
	handler Handler
	logger  *slog.Logger
	plog    log.Logger
	metrics *Metrics
	tracer  trace.Tracer
	uri     string

	mu       sync.Mutex
	state    State
	socket   socket.Socket
	calls    map[CallID]*pendingCall
	callSeq  uint64
	nextCID  CallID
	batch    []any
	batchTmr timerSlot
	pingTmr  timerSlot
	connTmr  timerSlot
	closed   closeInfo
}

type closeInfo struct {
	code   int
	reason string
}

// New creates a transport and starts dialing. Handler notifications may
// arrive before New returns to the caller's goroutine.
func New(tokens auth.TokenLoader, codec wire.Codec, config Config) (*Transport, error) {
	if tokens == nil {
		return nil, ErrNilAuthEngine
	}
	if codec == nil {
		return nil, ErrNilCodec
	}
	config.applyDefaults()

	t := &Transport{
		id:      uuid.NewString(),
		config:  config,
		auth:    tokens,
		codec:   codec,
		handler: config.Handler,
		plog:    config.ProtocolLogger,
		metrics: config.Metrics,
		tracer:  config.Tracer,
		state:   StateConnecting,
		calls:   make(map[CallID]*pendingCall),
	}
	if t.config.CallIDGenerator == nil {
		t.config.CallIDGenerator = t.nextCallID
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer(TracerName)
	}
	dialer := config.Dialer
	if dialer == nil {
		dialer = socket.NewWebSocketDialer(socket.WebSocketConfig{Binary: wire.IsBinary(codec)})
	}
	t.logger = config.Logger.With(slog.String("conn_id", t.id))
	t.uri = BuildURI(t.config, time.Now())

	// Socket events block on the lock until the socket is recorded.
	t.mu.Lock()
	defer t.mu.Unlock()

	sock, err := dialer.Dial(t.uri, socketEvents{t})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket: %w", err)
	}
	t.socket = sock
	t.logger.Info("transport connecting", slog.String("uri", t.uri))

	return t, nil
}

// nextCallID is the default call id generator. Called with t.mu held.
func (t *Transport) nextCallID() CallID {
	t.nextCID++
	return t.nextCID
}

// ID returns the connection id used in logs and traces.
func (t *Transport) ID() string {
	return t.id
}

// State returns the current state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// CloseStatus returns the code and reason the transport closed with.
// ok is false while the transport is not closed.
func (t *Transport) CloseStatus() (code int, reason string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateClosed {
		return 0, "", false
	}
	return t.closed.code, t.closed.reason, true
}

// BytesReceived returns the number of payload bytes read from the socket.
func (t *Transport) BytesReceived() int64 {
	return t.socket.BytesReceived()
}

// Encode serializes v with the transport codec.
func (t *Transport) Encode(v any) ([]byte, error) {
	return t.codec.Encode(v)
}

// Decode parses data with the transport codec.
func (t *Transport) Decode(data []byte) (any, error) {
	return t.codec.Decode(data)
}

// Close closes the transport. A zero code means CloseNormal. An OPEN
// transport first announces the close to the server with #disconnect.
// Closing a closed transport does nothing.
func (t *Transport) Close(code int, reason string) {
	if code == 0 {
		code = CloseNormal
	}

	var notes outbox
	t.mu.Lock()
	switch t.state {
	case StateOpen:
		data := map[string]any{"code": code}
		if reason != "" {
			data["data"] = reason
		}
		t.emitLocked(wire.EventDisconnect, data, EmitOptions{}, &notes)
		t.logControl(log.DirectionOut, log.ControlMsgDisconnect, &code)
		t.closeLocked(code, reason, &notes)
	case StateConnecting:
		t.closeLocked(code, reason, &notes)
	default:
		t.mu.Unlock()
		return
	}
	sock := t.socket
	t.mu.Unlock()

	notes.deliver()
	t.closeSocket(sock, code, reason)
}

// closeLocked moves the transport to CLOSED and aborts pending calls. All
// timers are cleared even when already closed.
func (t *Transport) closeLocked(code int, reason string, notes *outbox) {
	t.connTmr.stop()
	t.pingTmr.stop()
	t.batchTmr.stop()
	t.batch = nil

	switch t.state {
	case StateOpen:
		t.setStateLocked(StateClosed, code, reason)
		notes.add(func() { t.handler.OnClose(code, reason) })
		t.abortCallsLocked(sockerr.FailureDisconnect, notes)
	case StateConnecting:
		t.setStateLocked(StateClosed, code, reason)
		notes.add(func() { t.handler.OnOpenAbort(code, reason) })
		t.abortCallsLocked(sockerr.FailureConnectAbort, notes)
	}
}

// forceClose closes the transport and the socket with code. When live is
// non-nil it is checked under the lock and a false result cancels the close.
func (t *Transport) forceClose(code int, reason string, live func() bool) {
	var notes outbox
	t.mu.Lock()
	if live != nil && !live() {
		t.mu.Unlock()
		return
	}
	t.closeLocked(code, reason, &notes)
	sock := t.socket
	t.mu.Unlock()

	notes.deliver()
	t.closeSocket(sock, code, reason)
}

func (t *Transport) closeSocket(sock socket.Socket, code int, reason string) {
	if sock == nil {
		return
	}
	if err := sock.Close(code, reason); err != nil {
		t.logger.Debug("socket close failed", slog.Int("code", code), slog.Any("error", err))
	}
}

func (t *Transport) setStateLocked(next State, code int, reason string) {
	prev := t.state
	t.state = next
	if next == StateClosed {
		t.closed = closeInfo{code: code, reason: reason}
	}

	t.metrics.stateChanged(next, code)
	t.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.id,
		Layer:        log.LayerSession,
		Category:     log.CategoryState,
		URI:          t.uri,
		StateChange: &log.StateChangeEvent{
			OldState: prev.String(),
			NewState: next.String(),
			Code:     code,
			Reason:   reason,
		},
	})

	if next == StateClosed {
		t.logger.Info("transport closed",
			slog.String("from", prev.String()),
			slog.Int("code", code),
			slog.String("reason", reason),
			slog.String("description", sockerr.CloseCodeText(code)))
		return
	}
	t.logger.Info("transport state changed", slog.String("from", prev.String()), slog.String("to", next.String()))
}

// reportErrorLocked routes err to OnError and to the loggers.
func (t *Transport) reportErrorLocked(err error, layer log.Layer, context string, notes *outbox) {
	t.metrics.errorReported()
	t.logger.Warn("transport error", slog.String("context", context), slog.Any("error", err))

	data := &log.ErrorEventData{
		Layer:   layer,
		Message: err.Error(),
		Context: context,
		Kind:    sockerr.KindOf(err).String(),
	}
	var se *sockerr.Error
	if errors.As(err, &se) && se.Code != 0 {
		code := se.Code
		data.Code = &code
	}
	t.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.id,
		Layer:        layer,
		Category:     log.CategoryError,
		Error:        data,
	})

	notes.add(func() { t.handler.OnError(err) })
}

func (t *Transport) logControl(dir log.Direction, typ log.ControlMsgType, code *int) {
	t.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: t.id,
		Direction:    dir,
		Layer:        log.LayerWire,
		Category:     log.CategoryControl,
		ControlMsg:   &log.ControlMsgEvent{Type: typ, CloseCode: code},
	})
}

// socketEvents adapts socket callbacks to the transport.
type socketEvents struct {
	t *Transport
}

func (e socketEvents) OnOpen() {
	e.t.handleSocketOpen()
}

func (e socketEvents) OnClose(code int, reason string) {
	e.t.handleSocketClose(code, reason)
}

func (e socketEvents) OnMessage(data []byte) {
	e.t.handleMessage(data)
}

func (e socketEvents) OnError(err error) {
	e.t.handleSocketError(err)
}

func (t *Transport) handleSocketOpen() {
	t.mu.Lock()
	if t.state != StateConnecting {
		t.mu.Unlock()
		return
	}
	t.connTmr.stop()
	t.resetPingLocked()
	t.mu.Unlock()

	t.logger.Debug("socket open, starting handshake")
	t.handshake()
}

func (t *Transport) handleSocketClose(code int, reason string) {
	if code == 0 {
		code = CloseNoStatus
	}
	t.logger.Debug("socket closed", slog.Int("code", code), slog.String("reason", reason))

	var notes outbox
	t.mu.Lock()
	t.closeLocked(code, reason, &notes)
	t.mu.Unlock()
	notes.deliver()
}

// handleSocketError closes a connecting transport with 1006 and then gives
// the socket ConnectTimeout to report its close before forcing 4007.
// Socket errors are not passed to OnError; the close notification covers them.
func (t *Transport) handleSocketError(err error) {
	t.logger.Warn("socket error", slog.Any("error", err))

	var notes outbox
	t.mu.Lock()
	if t.state == StateConnecting {
		t.closeLocked(CloseAbnormal, err.Error(), &notes)
		t.connTmr.arm(t.config.ConnectTimeout, t.onConnectTimeout)
	}
	t.mu.Unlock()
	notes.deliver()
}

func (t *Transport) onConnectTimeout(gen uint64) {
	t.forceClose(CloseConnectTimeout, "", func() bool {
		if !t.connTmr.take(gen) {
			return false
		}
		t.logger.Warn("connect grace period expired", slog.Duration("timeout", t.config.ConnectTimeout))
		return true
	})
}
