package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcsocket/wcsocket-go/pkg/transport"
)

type emitted struct {
	event string
	data  any
	opts  *transport.EmitOptions
}

type fakeClient struct {
	state     transport.State
	nextID    transport.CallID
	emits     []emitted
	cancelled []transport.CallID
	closes    []int
	reasons   []string
}

func (c *fakeClient) Emit(event string, data any, opts *transport.EmitOptions) (transport.CallID, bool) {
	c.emits = append(c.emits, emitted{event, data, opts})
	if c.state != transport.StateOpen {
		return 0, false
	}
	if opts == nil || opts.Callback == nil {
		return 0, false
	}
	c.nextID++
	return c.nextID, true
}

func (c *fakeClient) CancelPendingResponse(id transport.CallID) bool {
	c.cancelled = append(c.cancelled, id)
	return id <= c.nextID
}

func (c *fakeClient) PendingCount() int      { return int(c.nextID) }
func (c *fakeClient) State() transport.State { return c.state }
func (c *fakeClient) ID() string             { return "conn-1" }
func (c *fakeClient) URI() string            { return "ws://localhost/socketcluster/" }

func (c *fakeClient) Close(code int, reason string) {
	c.closes = append(c.closes, code)
	c.reasons = append(c.reasons, reason)
}

func newSessionEnv() (*Session, *fakeClient, *bytes.Buffer) {
	client := &fakeClient{state: transport.StateOpen}
	var out bytes.Buffer
	return NewSession(client, &out), client, &out
}

func TestParseEventArgs(t *testing.T) {
	tests := []struct {
		in    string
		event string
		data  any
	}{
		{"ping", "ping", nil},
		{"chat {\"text\":\"hi\"}", "chat", map[string]any{"text": "hi"}},
		{"count 3", "count", float64(3)},
		{"say hello world", "say", "hello world"},
	}
	for _, tt := range tests {
		event, data, err := ParseEventArgs(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.event, event)
		assert.Equal(t, tt.data, data)
	}

	_, _, err := ParseEventArgs("  ")
	assert.Error(t, err)
}

func TestSessionEmit(t *testing.T) {
	s, client, out := newSessionEnv()

	assert.False(t, s.Exec(`emit chat {"text":"hi"}`))

	require.Len(t, client.emits, 1)
	assert.Equal(t, "chat", client.emits[0].event)
	assert.Nil(t, client.emits[0].opts.Callback)
	assert.Contains(t, out.String(), "sent chat")
	assert.NotContains(t, out.String(), "not sent")
}

func TestSessionCallPrintsAck(t *testing.T) {
	s, client, out := newSessionEnv()

	s.Exec("call whoami")

	require.Len(t, client.emits, 1)
	cb := client.emits[0].opts.Callback
	require.NotNil(t, cb)
	assert.Contains(t, out.String(), "sent whoami (cid 1)")

	cb(nil, map[string]any{"id": "u1"})
	assert.Contains(t, out.String(), `[ack] whoami {"id":"u1"}`)

	cb(errors.New("TimeoutError: too slow"), nil)
	assert.Contains(t, out.String(), "[ack] whoami failed: TimeoutError: too slow")
}

func TestSessionEmitWhileClosed(t *testing.T) {
	s, client, out := newSessionEnv()
	client.state = transport.StateClosed

	s.Exec("emit chat")

	assert.Contains(t, out.String(), "chat not sent (transport is CLOSED)")
}

func TestSessionCancel(t *testing.T) {
	s, client, out := newSessionEnv()
	s.Exec("call slow")

	s.Exec("cancel 1")
	s.Exec("cancel 9")
	s.Exec("cancel nope")

	assert.Equal(t, []transport.CallID{1, 9}, client.cancelled)
	assert.Contains(t, out.String(), "cancelled 1")
	assert.Contains(t, out.String(), "no pending call 9")
	assert.Contains(t, out.String(), "Usage: cancel <cid>")
}

func TestSessionClose(t *testing.T) {
	s, client, _ := newSessionEnv()

	s.Exec("close")
	s.Exec("close 4100 going away")

	assert.Equal(t, []int{transport.CloseNormal, 4100}, client.closes)
	assert.Equal(t, []string{"", "going away"}, client.reasons)
}

func TestSessionQuitClosesNormally(t *testing.T) {
	s, client, _ := newSessionEnv()

	assert.True(t, s.Exec("quit"))
	assert.Equal(t, []int{transport.CloseNormal}, client.closes)
}

func TestSessionStateAndHelp(t *testing.T) {
	s, _, out := newSessionEnv()

	s.Exec("state")
	s.Exec("help")
	s.Exec("bogus")

	assert.Contains(t, out.String(), "OPEN ws://localhost/socketcluster/ (id conn-1)")
	assert.Contains(t, out.String(), "emit <event> [json]")
	assert.Contains(t, out.String(), "Unknown command: bogus")
}
