package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/wcsocket/wcsocket-go/pkg/sockerr"
	"github.com/wcsocket/wcsocket-go/pkg/transport"
)

// Printer is a transport.Handler that writes every notification to w.
type Printer struct {
	mu sync.Mutex
	w  io.Writer

	// AutoAck answers inbound calls with an empty response.
	AutoAck bool

	// ShowMessages also prints the raw message notification.
	ShowMessages bool

	opened chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:      w,
		opened: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Opened is closed once the handshake succeeds.
func (p *Printer) Opened() <-chan struct{} { return p.opened }

// Done is closed when the transport reaches CLOSED.
func (p *Printer) Done() <-chan struct{} { return p.done }

func (p *Printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

// OnOpen implements transport.Handler.
func (p *Printer) OnOpen(status *transport.HandshakeStatus) {
	p.printf("[open] id=%s authenticated=%t pingTimeout=%dms\n",
		status.ID, status.IsAuthenticated, status.PingTimeout)
	if status.AuthError != nil {
		p.printf("[open] auth error: %v\n", status.AuthError)
	}
	close(p.opened)
}

// OnOpenAbort implements transport.Handler.
func (p *Printer) OnOpenAbort(code int, reason string) {
	p.printf("[openAbort] %d %s%s\n", code, sockerr.CloseCodeText(code), formatReason(reason))
	p.finish()
}

// OnClose implements transport.Handler.
func (p *Printer) OnClose(code int, reason string) {
	p.printf("[close] %d %s%s\n", code, sockerr.CloseCodeText(code), formatReason(reason))
	p.finish()
}

// OnError implements transport.Handler.
func (p *Printer) OnError(err error) {
	p.printf("[error] %v\n", err)
}

// OnEvent implements transport.Handler.
func (p *Printer) OnEvent(name string, data any, res *transport.Response) {
	switch name {
	case transport.EventMessage:
		if p.ShowMessages {
			p.printf("[message] %v\n", data)
		}
		return
	case transport.EventRaw:
		p.printf("[raw] %v\n", data)
		return
	}

	if res.ID() != 0 {
		p.printf("[event] %s %s (cid %d)\n", name, FormatJSON(data), res.ID())
		if p.AutoAck {
			if err := res.End(nil); err != nil {
				p.printf("[error] ack %d: %v\n", res.ID(), err)
			}
		}
		return
	}
	p.printf("[event] %s %s\n", name, FormatJSON(data))
}

func (p *Printer) finish() {
	p.once.Do(func() { close(p.done) })
}

func formatReason(reason string) string {
	if reason == "" {
		return ""
	}
	return " (" + reason + ")"
}

// FormatJSON renders v compactly, falling back to %v.
func FormatJSON(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

var _ transport.Handler = (*Printer)(nil)
