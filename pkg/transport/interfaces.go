package transport

// Reserved notification names passed to Handler.OnEvent.
const (
	// EventMessage carries every inbound message before it is decoded.
	EventMessage = "message"

	// EventRaw carries inbound messages that are neither events nor responses.
	EventRaw = "raw"
)

// Handler receives transport notifications. Methods are called without any
// transport lock held and may call back into the transport.
//
// Notifications arrive from the socket read goroutine and from timer
// goroutines (ping timeout, connect timeout, batch flush, ack timeout), so
// methods may run concurrently and implementations must be safe for
// concurrent use. Notifications produced by one transport operation are
// delivered in order; there is no ordering between different sources, e.g.
// a ping-timeout OnClose may arrive before an OnEvent read just before it.
type Handler interface {
	// OnOpen is called once when the handshake succeeds.
	OnOpen(status *HandshakeStatus)

	// OnOpenAbort is called when the transport closes before reaching OPEN.
	OnOpenAbort(code int, reason string)

	// OnClose is called when an OPEN transport closes.
	OnClose(code int, reason string)

	// OnError is called for connection-level and serialization errors.
	OnError(err error)

	// OnEvent is called for inbound events and for the reserved EventMessage
	// and EventRaw notifications. res is nil for the reserved notifications.
	OnEvent(name string, data any, res *Response)
}

// HandlerFuncs adapts optional functions to a Handler. Nil fields are ignored.
type HandlerFuncs struct {
	Open      func(status *HandshakeStatus)
	OpenAbort func(code int, reason string)
	Close     func(code int, reason string)
	Error     func(err error)
	Event     func(name string, data any, res *Response)
}

// OnOpen implements Handler.
func (h HandlerFuncs) OnOpen(status *HandshakeStatus) {
	if h.Open != nil {
		h.Open(status)
	}
}

// OnOpenAbort implements Handler.
func (h HandlerFuncs) OnOpenAbort(code int, reason string) {
	if h.OpenAbort != nil {
		h.OpenAbort(code, reason)
	}
}

// OnClose implements Handler.
func (h HandlerFuncs) OnClose(code int, reason string) {
	if h.Close != nil {
		h.Close(code, reason)
	}
}

// OnError implements Handler.
func (h HandlerFuncs) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

// OnEvent implements Handler.
func (h HandlerFuncs) OnEvent(name string, data any, res *Response) {
	if h.Event != nil {
		h.Event(name, data, res)
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Handler = HandlerFuncs{}
)
