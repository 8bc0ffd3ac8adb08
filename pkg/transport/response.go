package transport

import (
	"errors"
	"sync"

	"github.com/wcsocket/wcsocket-go/pkg/sockerr"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

// ErrResponseAlreadySent is returned when a Response is used twice.
var ErrResponseAlreadySent = errors.New("response has already been sent")

// Response acknowledges an inbound event back to the server. Events sent
// without a call id get a Response whose methods do nothing.
type Response struct {
	t  *Transport
	id CallID

	mu   sync.Mutex
	sent bool
}

func newResponse(t *Transport, id CallID) *Response {
	return &Response{t: t, id: id}
}

// ID returns the call id being answered, or 0 if none is expected.
func (r *Response) ID() CallID {
	if r == nil {
		return 0
	}
	return r.id
}

// End answers with data.
func (r *Response) End(data any) error {
	return r.respond(&wire.ResponseFrame{Data: data})
}

// Error answers with an error and optional data.
func (r *Response) Error(err error, data any) error {
	if err == nil {
		return r.End(data)
	}
	return r.respond(&wire.ResponseFrame{Data: data, Error: sockerr.Dehydrate(err)})
}

// Callback answers with Error when err is set, End otherwise.
func (r *Response) Callback(err error, data any) error {
	return r.Error(err, data)
}

func (r *Response) respond(frame *wire.ResponseFrame) error {
	if r == nil || r.id == 0 {
		return nil
	}

	r.mu.Lock()
	if r.sent {
		r.mu.Unlock()
		return ErrResponseAlreadySent
	}
	r.sent = true
	r.mu.Unlock()

	frame.RID = uint64(r.id)
	return r.t.sendResponse(frame)
}
