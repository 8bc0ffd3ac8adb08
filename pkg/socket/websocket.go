package socket

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
)

// Default WebSocket settings.
const (
	DefaultHandshakeTimeout = 30 * time.Second
	DefaultCloseTimeout     = 5 * time.Second

	// maxCloseReason is the largest reason that fits a close frame
	// (125 byte control payload minus the 2 byte code).
	maxCloseReason = 123
)

// WebSocketConfig configures a WebSocketDialer.
type WebSocketConfig struct {
	// Dialer is the underlying gorilla dialer (default: a copy of
	// websocket.DefaultDialer with HandshakeTimeout and TLS applied).
	Dialer *websocket.Dialer

	// TLS configures secure (wss) connections when Dialer is nil.
	TLS *tls.Config

	// Header is sent with the opening handshake request.
	Header http.Header

	// Binary sends messages as binary frames instead of text frames.
	Binary bool

	// HandshakeTimeout bounds the opening handshake (default: 30s).
	HandshakeTimeout time.Duration

	// CloseTimeout is how long to wait for the peer to answer a close
	// frame before dropping the connection (default: 5s).
	CloseTimeout time.Duration

	// WriteTimeout bounds each message write (0 = no timeout).
	WriteTimeout time.Duration

	// MaxMessageSize limits inbound message size (0 = unlimited).
	MaxMessageSize int64
}

// WebSocketDialer opens WebSocket connections using gorilla/websocket.
type WebSocketDialer struct {
	config WebSocketConfig
}

// NewWebSocketDialer creates a dialer with the given configuration.
func NewWebSocketDialer(config WebSocketConfig) *WebSocketDialer {
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if config.CloseTimeout == 0 {
		config.CloseTimeout = DefaultCloseTimeout
	}
	if config.Dialer == nil {
		d := *websocket.DefaultDialer
		d.HandshakeTimeout = config.HandshakeTimeout
		d.TLSClientConfig = config.TLS
		config.Dialer = &d
	}
	return &WebSocketDialer{config: config}
}

// Dial implements Dialer. The connection is established in the background.
func (d *WebSocketDialer) Dial(uri string, h Handler) (Socket, error) {
	if h == nil {
		return nil, errors.New("socket handler is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &WebSocketConn{
		config:  d.config,
		handler: h,
		ctx:     ctx,
		cancel:  cancel,
	}
	c.state.Store(int32(StateConnecting))

	go c.run(uri)

	return c, nil
}

// WebSocketConn is a Socket backed by a gorilla WebSocket connection.
type WebSocketConn struct {
	config  WebSocketConfig
	handler Handler

	state         atomic.Int32
	bytesReceived atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	ws             *websocket.Conn
	closeRequested bool
	localCode      int
	localReason    string

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// ReadyState implements Socket.
func (c *WebSocketConn) ReadyState() ReadyState {
	return ReadyState(c.state.Load())
}

// BytesReceived implements Socket.
func (c *WebSocketConn) BytesReceived() int64 {
	return c.bytesReceived.Load()
}

// Send implements Socket.
func (c *WebSocketConn) Send(data []byte) error {
	if c.ReadyState() != StateOpen {
		return ErrNotOpen
	}

	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return ErrNotOpen
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.config.WriteTimeout > 0 {
		ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
		defer ws.SetWriteDeadline(time.Time{})
	}

	messageType := websocket.TextMessage
	if c.config.Binary {
		messageType = websocket.BinaryMessage
	}
	if err := ws.WriteMessage(messageType, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// Close implements Socket. It sends a close frame and drops the connection
// if the peer does not answer within CloseTimeout. Closing a socket that is
// still dialing aborts the dial.
func (c *WebSocketConn) Close(code int, reason string) error {
	c.mu.Lock()
	if c.closeRequested {
		c.mu.Unlock()
		return nil
	}
	c.closeRequested = true
	c.localCode = code
	c.localReason = reason
	ws := c.ws
	c.mu.Unlock()

	if ws == nil {
		c.cancel()
		return nil
	}

	c.state.Store(int32(StateClosing))

	deadline := time.Now().Add(c.config.CloseTimeout)
	err := ws.WriteControl(websocket.CloseMessage, closeMessage(code, reason), deadline)
	if err != nil {
		ws.Close()
		return fmt.Errorf("failed to send close frame: %w", err)
	}

	time.AfterFunc(c.config.CloseTimeout, func() {
		ws.Close()
	})
	return nil
}

// run dials and then reads until the connection ends.
func (c *WebSocketConn) run(uri string) {
	ws, _, err := c.config.Dialer.DialContext(c.ctx, uri, c.config.Header)
	if err != nil {
		code, reason := c.localClose()
		if c.ctx.Err() == nil {
			c.handler.OnError(fmt.Errorf("dial failed: %w", err))
			code, reason = websocket.CloseAbnormalClosure, err.Error()
		}
		c.finish(code, reason)
		return
	}

	c.mu.Lock()
	if c.closeRequested {
		c.mu.Unlock()
		ws.Close()
		c.finish(c.localClose())
		return
	}
	c.ws = ws
	c.mu.Unlock()

	if c.config.MaxMessageSize > 0 {
		ws.SetReadLimit(c.config.MaxMessageSize)
	}

	c.state.Store(int32(StateOpen))
	c.handler.OnOpen()

	c.readLoop(ws)
}

func (c *WebSocketConn) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			ws.Close()
			c.finish(c.closeStatus(err))
			return
		}

		c.bytesReceived.Add(int64(len(data)))
		c.handler.OnMessage(data)
	}
}

// closeStatus derives the close code reported for a read error.
func (c *WebSocketConn) closeStatus(err error) (int, string) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text
	}

	c.mu.Lock()
	requested := c.closeRequested
	c.mu.Unlock()
	if requested {
		// Peer never answered our close frame.
		return c.localClose()
	}

	c.handler.OnError(fmt.Errorf("read failed: %w", err))
	return websocket.CloseAbnormalClosure, err.Error()
}

func (c *WebSocketConn) localClose() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.localCode, c.localReason
}

// finish marks the socket closed and notifies the handler once.
func (c *WebSocketConn) finish(code int, reason string) {
	c.state.Store(int32(StateClosed))
	c.cancel()
	c.closeOnce.Do(func() {
		c.handler.OnClose(code, reason)
	})
}

// closeMessage builds a close frame payload. Codes that must not appear on
// the wire are sent as an empty payload.
func closeMessage(code int, reason string) []byte {
	switch code {
	case 0, websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure, websocket.CloseTLSHandshake:
		return websocket.FormatCloseMessage(websocket.CloseNoStatusReceived, "")
	}
	if len(reason) > maxCloseReason {
		reason = reason[:maxCloseReason]
		for !utf8.ValidString(reason) {
			reason = reason[:len(reason)-1]
		}
	}
	return websocket.FormatCloseMessage(code, reason)
}

// Compile-time interface satisfaction checks.
var (
	_ Dialer = (*WebSocketDialer)(nil)
	_ Socket = (*WebSocketConn)(nil)
)
