package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wcsocket/wcsocket-go/pkg/auth"
	"github.com/wcsocket/wcsocket-go/pkg/socket"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeSocket is a socket.Socket driven by the test.
type fakeSocket struct {
	mu       sync.Mutex
	handler  socket.Handler
	state    socket.ReadyState
	sent     []string
	closes   []closeInfo
	sendErr  error
	received int64
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{state: socket.StateConnecting}
}

func (s *fakeSocket) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, string(data))
	return nil
}

func (s *fakeSocket) Close(code int, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes = append(s.closes, closeInfo{code: code, reason: reason})
	s.state = socket.StateClosed
	return nil
}

func (s *fakeSocket) ReadyState() socket.ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeSocket) BytesReceived() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received
}

func (s *fakeSocket) setState(state socket.ReadyState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *fakeSocket) open() {
	s.setState(socket.StateOpen)
	s.handler.OnOpen()
}

func (s *fakeSocket) receive(msg string) {
	s.mu.Lock()
	s.received += int64(len(msg))
	s.mu.Unlock()
	s.handler.OnMessage([]byte(msg))
}

func (s *fakeSocket) fail(err error) {
	s.handler.OnError(err)
}

func (s *fakeSocket) peerClose(code int, reason string) {
	s.setState(socket.StateClosed)
	s.handler.OnClose(code, reason)
}

func (s *fakeSocket) sentFrames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func (s *fakeSocket) closeCalls() []closeInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]closeInfo(nil), s.closes...)
}

// fakeDialer hands out one fakeSocket.
type fakeDialer struct {
	sock *fakeSocket
	uri  string
}

func (d *fakeDialer) Dial(uri string, h socket.Handler) (socket.Socket, error) {
	d.uri = uri
	d.sock.handler = h
	return d.sock, nil
}

type eventRecord struct {
	name string
	data any
	res  *Response
}

// handlerState is what a recordingHandler has seen. trace interleaves
// notifications and notes in arrival order.
type handlerState struct {
	opens  []*HandshakeStatus
	aborts []closeInfo
	closes []closeInfo
	errors []error
	events []eventRecord
	trace  []string
}

// recordingHandler records notifications.
type recordingHandler struct {
	mu sync.Mutex
	handlerState
	onEvent func(name string, data any, res *Response)
}

func (h *recordingHandler) OnOpen(status *HandshakeStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opens = append(h.opens, status)
	h.trace = append(h.trace, "open")
}

func (h *recordingHandler) OnOpenAbort(code int, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.aborts = append(h.aborts, closeInfo{code, reason})
	h.trace = append(h.trace, "openAbort")
}

func (h *recordingHandler) OnClose(code int, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closes = append(h.closes, closeInfo{code, reason})
	h.trace = append(h.trace, "close")
}

func (h *recordingHandler) OnError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
	h.trace = append(h.trace, "error")
}

func (h *recordingHandler) OnEvent(name string, data any, res *Response) {
	h.mu.Lock()
	h.events = append(h.events, eventRecord{name, data, res})
	h.trace = append(h.trace, "event:"+name)
	hook := h.onEvent
	h.mu.Unlock()

	if hook != nil {
		hook(name, data, res)
	}
}

func (h *recordingHandler) note(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trace = append(h.trace, s)
}

func (h *recordingHandler) snapshot() handlerState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return handlerState{
		opens:  append([]*HandshakeStatus(nil), h.opens...),
		aborts: append([]closeInfo(nil), h.aborts...),
		closes: append([]closeInfo(nil), h.closes...),
		errors: append([]error(nil), h.errors...),
		events: append([]eventRecord(nil), h.events...),
		trace:  append([]string(nil), h.trace...),
	}
}

// appEvents returns application events, skipping the reserved message
// notification.
func (h *recordingHandler) appEvents() []eventRecord {
	var out []eventRecord
	for _, e := range h.snapshot().events {
		if e.name != EventMessage {
			out = append(out, e)
		}
	}
	return out
}

// callResult captures one AckFunc invocation.
type callResult struct {
	err  error
	data any
}

type callRecorder struct {
	mu      sync.Mutex
	results []callResult
}

func (r *callRecorder) ack(err error, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, callResult{err, data})
}

func (r *callRecorder) get() []callResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]callResult(nil), r.results...)
}

type testEnv struct {
	tr      *Transport
	sock    *fakeSocket
	dialer  *fakeDialer
	handler *recordingHandler
}

// newTestEnv builds a CONNECTING transport over a fake socket using the
// JSON codec and an empty token store.
func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()
	return newTestEnvWith(t, auth.NewMemoryEngine(), mutate)
}

func newTestEnvWith(t *testing.T, tokens auth.TokenLoader, mutate func(*Config)) *testEnv {
	t.Helper()

	sock := newFakeSocket()
	dialer := &fakeDialer{sock: sock}
	h := &recordingHandler{}

	cfg := DefaultConfig()
	cfg.Dialer = dialer
	cfg.Handler = h
	cfg.AckTimeout = time.Second
	cfg.PingTimeoutDisabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	tr, err := New(tokens, wire.JSONCodec{}, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close(CloseNormal, "") })

	return &testEnv{tr: tr, sock: sock, dialer: dialer, handler: h}
}

// openEnv builds a transport and completes the handshake.
func openEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()
	env := newTestEnv(t, mutate)
	env.handshake(t)
	return env
}

// handshake opens the socket and answers the #handshake call.
func (e *testEnv) handshake(t *testing.T) {
	t.Helper()
	e.sock.open()

	frames := e.sock.sentFrames()
	require.Len(t, frames, 1)
	require.JSONEq(t, `{"event":"#handshake","data":{"authToken":null},"cid":1}`, frames[0])

	e.sock.receive(`{"rid":1,"data":{"id":"sock-1","pingTimeout":20000,"isAuthenticated":false}}`)
	require.Equal(t, StateOpen, e.tr.State())
}
