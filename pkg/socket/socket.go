package socket

import "errors"

// Socket errors.
var (
	ErrNotOpen = errors.New("socket is not open")
)

// ReadyState mirrors the WebSocket readyState values.
type ReadyState int32

const (
	// StateConnecting indicates the socket has not connected yet.
	StateConnecting ReadyState = iota

	// StateOpen indicates the socket can send and receive.
	StateOpen

	// StateClosing indicates a close frame was sent.
	StateClosing

	// StateClosed indicates the socket is closed.
	StateClosed
)

// String returns the ready state name.
func (s ReadyState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Handler receives socket events.
type Handler interface {
	// OnOpen is called once the socket is connected.
	OnOpen()

	// OnClose is called once when the socket closes. code is 0 when the
	// peer supplied no close code.
	OnClose(code int, reason string)

	// OnMessage is called for each received message.
	OnMessage(data []byte)

	// OnError is called when a socket-level error occurs.
	OnError(err error)
}

// Socket is one open or opening duplex connection.
type Socket interface {
	// Send transmits one message.
	Send(data []byte) error

	// Close starts closing the socket with the given code.
	Close(code int, reason string) error

	// ReadyState returns the current socket state.
	ReadyState() ReadyState

	// BytesReceived returns the total payload bytes received.
	BytesReceived() int64
}

// Dialer opens sockets.
type Dialer interface {
	// Dial starts connecting to uri and returns immediately.
	Dial(uri string, h Handler) (Socket, error)
}
