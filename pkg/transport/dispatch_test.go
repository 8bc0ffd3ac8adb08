package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundEventCarriesResponse(t *testing.T) {
	env := openEnv(t, nil)

	env.sock.receive(`{"event":"chat","data":{"text":"hi"},"cid":9}`)

	events := env.handler.appEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "chat", events[0].name)
	assert.Equal(t, map[string]any{"text": "hi"}, events[0].data)
	require.NotNil(t, events[0].res)
	assert.Equal(t, CallID(9), events[0].res.ID())
}

func TestEveryMessageIsAnnouncedFirst(t *testing.T) {
	env := openEnv(t, nil)
	before := len(env.handler.snapshot().trace)

	env.sock.receive(`{"event":"chat"}`)

	trace := env.handler.snapshot().trace[before:]
	assert.Equal(t, []string{"event:message", "event:chat"}, trace)

	events := env.handler.snapshot().events
	msg := events[len(events)-2]
	assert.Equal(t, EventMessage, msg.name)
	assert.Equal(t, `{"event":"chat"}`, msg.data)
	assert.Nil(t, msg.res)
}

func TestInboundBatchKeepsOrder(t *testing.T) {
	env := openEnv(t, nil)

	id, _ := env.tr.Emit("q", nil, &EmitOptions{Callback: func(error, any) {
		env.handler.note("ack")
	}})
	before := len(env.handler.snapshot().trace)

	env.sock.receive(`[{"event":"a"},{"rid":` + itoa(id) + `,"data":1},{"event":"b"},42]`)

	trace := env.handler.snapshot().trace[before:]
	assert.Equal(t, []string{"event:message", "event:a", "ack", "event:b", "event:raw"}, trace)
}

func TestUnrecognizedMessageIsRaw(t *testing.T) {
	env := openEnv(t, nil)

	env.sock.receive(`{"hello":"world"}`)

	events := env.handler.appEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventRaw, events[0].name)
	assert.Equal(t, `{"hello":"world"}`, events[0].data)
	assert.Nil(t, events[0].res)
}

func TestDecodeFailureIsReportedAndDropped(t *testing.T) {
	env := openEnv(t, nil)

	env.sock.receive(`{not json`)

	h := env.handler.snapshot()
	require.Len(t, h.errors, 1)
	assert.Contains(t, h.errors[0].Error(), "failed to decode message")
	assert.Empty(t, env.handler.appEvents())
	assert.Equal(t, StateOpen, env.tr.State())
}

func TestResponseEnd(t *testing.T) {
	env := openEnv(t, nil)
	results := make(chan error, 2)
	env.handler.onEvent = func(name string, data any, res *Response) {
		if name != "ask" {
			return
		}
		results <- res.End(map[string]any{"answer": 42})
		results <- res.End("again")
	}

	env.sock.receive(`{"event":"ask","cid":5}`)

	assert.NoError(t, <-results)
	assert.ErrorIs(t, <-results, ErrResponseAlreadySent)

	frames := env.sock.sentFrames()
	assert.JSONEq(t, `{"rid":5,"data":{"answer":42}}`, frames[len(frames)-1])
}

func TestResponseError(t *testing.T) {
	env := openEnv(t, nil)
	env.handler.onEvent = func(name string, data any, res *Response) {
		if name == "ask" {
			_ = res.Callback(errors.New("nope"), nil)
		}
	}

	env.sock.receive(`{"event":"ask","cid":6}`)

	frames := env.sock.sentFrames()
	assert.JSONEq(t, `{"rid":6,"error":{"name":"Error","message":"nope"}}`, frames[len(frames)-1])
}

func TestResponseWithoutCallIDIsNoop(t *testing.T) {
	env := openEnv(t, nil)
	sent := len(env.sock.sentFrames())
	var res *Response
	env.handler.onEvent = func(name string, data any, r *Response) {
		if name == "note" {
			res = r
		}
	}

	env.sock.receive(`{"event":"note"}`)

	require.NotNil(t, res)
	assert.Zero(t, res.ID())
	assert.NoError(t, res.End("ignored"))
	assert.Len(t, env.sock.sentFrames(), sent)

	var nilRes *Response
	assert.NoError(t, nilRes.End(nil))
}
