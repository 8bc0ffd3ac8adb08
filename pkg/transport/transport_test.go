package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcsocket/wcsocket-go/pkg/auth"
	"github.com/wcsocket/wcsocket-go/pkg/auth/mocks"
	"github.com/wcsocket/wcsocket-go/pkg/socket"
	"github.com/wcsocket/wcsocket-go/pkg/sockerr"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "CONNECTING", StateConnecting.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}

func TestNewValidatesCollaborators(t *testing.T) {
	_, err := New(nil, wire.JSONCodec{}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilAuthEngine)

	_, err = New(auth.NewMemoryEngine(), nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilCodec)
}

func TestNewDialsURI(t *testing.T) {
	env := newTestEnv(t, func(c *Config) {
		c.Secure = true
		c.Hostname = "example.com"
		c.Port = 443
	})

	assert.Equal(t, "wss://example.com/socketcluster/", env.dialer.uri)
	assert.Equal(t, StateConnecting, env.tr.State())
	assert.NotEmpty(t, env.tr.ID())
}

func TestHandshakeOpensTransport(t *testing.T) {
	env := openEnv(t, nil)

	h := env.handler.snapshot()
	require.Len(t, h.opens, 1)
	status := h.opens[0]
	assert.Equal(t, "sock-1", status.ID)
	assert.Equal(t, int64(20000), status.PingTimeout)
	assert.False(t, status.IsAuthenticated)
	assert.Empty(t, status.AuthToken)
	assert.NoError(t, status.AuthError)
	assert.Equal(t, 0, env.tr.PendingCount())
}

func TestHandshakeSendsStoredToken(t *testing.T) {
	tokens := mocks.NewMockTokenLoader(t)
	tokens.EXPECT().LoadToken(DefaultAuthTokenName).Return("tok-123", nil).Once()

	env := newTestEnvWith(t, tokens, nil)
	env.sock.open()

	frames := env.sock.sentFrames()
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"event":"#handshake","data":{"authToken":"tok-123"},"cid":1}`, frames[0])

	env.sock.receive(`{"rid":1,"data":{"id":"s","isAuthenticated":true,"authError":{"name":"AuthTokenExpiredError","message":"expired"}}}`)

	h := env.handler.snapshot()
	require.Len(t, h.opens, 1)
	assert.Equal(t, "tok-123", h.opens[0].AuthToken)
	assert.True(t, h.opens[0].IsAuthenticated)
	assert.True(t, sockerr.IsKind(h.opens[0].AuthError, sockerr.KindAuthTokenExpired))
}

func TestHandshakeTokenLoadFailure(t *testing.T) {
	loadErr := errors.New("keychain locked")
	tokens := mocks.NewMockTokenLoader(t)
	tokens.EXPECT().LoadToken(DefaultAuthTokenName).Return("", loadErr)

	env := newTestEnvWith(t, tokens, nil)
	env.sock.open()

	assert.Equal(t, StateClosed, env.tr.State())
	assert.Empty(t, env.sock.sentFrames(), "no handshake frame without a token")

	h := env.handler.snapshot()
	require.Len(t, h.errors, 1)
	assert.ErrorIs(t, h.errors[0], loadErr)
	require.Len(t, h.aborts, 1)
	assert.Equal(t, closeInfo{CloseHandshakeFailed, "keychain locked"}, h.aborts[0])
	assert.Equal(t, []string{"error", "openAbort"}, h.trace)
	assert.Equal(t, []closeInfo{{CloseHandshakeFailed, "keychain locked"}}, env.sock.closeCalls())
}

func TestCloseDuringTokenLoadSkipsHandshake(t *testing.T) {
	loading := make(chan struct{})
	release := make(chan struct{})
	tokens := mocks.NewMockTokenLoader(t)
	tokens.EXPECT().LoadToken(DefaultAuthTokenName).RunAndReturn(func(string) (string, error) {
		close(loading)
		<-release
		return "tok-123", nil
	}).Once()

	env := newTestEnvWith(t, tokens, func(c *Config) { c.AckTimeout = 20 * time.Millisecond })

	opened := make(chan struct{})
	go func() {
		env.sock.open()
		close(opened)
	}()

	<-loading
	env.tr.Close(CloseNormal, "")
	close(release)
	<-opened

	assert.Equal(t, StateClosed, env.tr.State())
	assert.Empty(t, env.sock.sentFrames())
	assert.Equal(t, 0, env.tr.PendingCount())

	// Nothing surfaces later either.
	time.Sleep(60 * time.Millisecond)
	h := env.handler.snapshot()
	assert.Equal(t, []closeInfo{{CloseNormal, ""}}, h.aborts)
	assert.Empty(t, h.errors)
	assert.Empty(t, h.opens)
}

func TestHandshakeRejectedWithStatusCode(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sock.open()

	env.sock.receive(`{"rid":1,"error":{"name":"AuthTokenInvalidError","message":"rejected"},"data":{"code":4008}}`)

	assert.Equal(t, StateClosed, env.tr.State())
	h := env.handler.snapshot()
	require.Len(t, h.errors, 1)
	assert.True(t, sockerr.IsKind(h.errors[0], sockerr.KindAuthTokenInvalid))
	require.Len(t, h.aborts, 1)
	assert.Equal(t, 4008, h.aborts[0].code)
	assert.Empty(t, h.opens)

	closes := env.sock.closeCalls()
	require.Len(t, closes, 1)
	assert.Equal(t, 4008, closes[0].code)

	code, _, ok := env.tr.CloseStatus()
	assert.True(t, ok)
	assert.Equal(t, 4008, code)
}

func TestHandshakeTimeoutClosesWith4003(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.AckTimeout = 30 * time.Millisecond })
	env.sock.open()

	require.Eventually(t, func() bool { return env.tr.State() == StateClosed }, waitFor, tick)

	h := env.handler.snapshot()
	require.Len(t, h.errors, 1)
	assert.True(t, sockerr.IsTimeout(h.errors[0]))
	assert.Contains(t, h.errors[0].Error(), "Event response for '#handshake' timed out")
	require.Len(t, h.aborts, 1)
	assert.Equal(t, CloseHandshakeFailed, h.aborts[0].code)
	assert.Equal(t, CloseHandshakeFailed, env.sock.closeCalls()[0].code)
}

func TestCloseWhileOpen(t *testing.T) {
	env := openEnv(t, nil)

	calls := &callRecorder{}
	_, ok := env.tr.Emit("slow", nil, &EmitOptions{Callback: calls.ack})
	require.True(t, ok)

	env.tr.Close(0, "")

	assert.Equal(t, StateClosed, env.tr.State())
	frames := env.sock.sentFrames()
	assert.JSONEq(t, `{"event":"#disconnect","data":{"code":1000}}`, frames[len(frames)-1])

	h := env.handler.snapshot()
	assert.Equal(t, []closeInfo{{CloseNormal, ""}}, h.closes)
	assert.Empty(t, h.aborts)

	results := calls.get()
	require.Len(t, results, 1)
	failure, ok := sockerr.FailureOf(results[0].err)
	require.True(t, ok)
	assert.Equal(t, sockerr.FailureDisconnect, failure)
	assert.Equal(t, "BadConnectionError: Event 'slow' was aborted due to a bad connection", results[0].err.Error())
	assert.Equal(t, 0, env.tr.PendingCount())

	assert.Equal(t, []closeInfo{{CloseNormal, ""}}, env.sock.closeCalls())

	// CLOSED is terminal.
	env.tr.Close(4500, "again")
	env.sock.peerClose(1006, "")
	assert.Len(t, env.handler.snapshot().closes, 1)
	assert.Len(t, calls.get(), 1)
}

func TestCloseWithReasonAnnouncesIt(t *testing.T) {
	env := openEnv(t, nil)

	env.tr.Close(4500, "bye")

	frames := env.sock.sentFrames()
	assert.JSONEq(t, `{"event":"#disconnect","data":{"code":4500,"data":"bye"}}`, frames[len(frames)-1])
	assert.Equal(t, []closeInfo{{4500, "bye"}}, env.handler.snapshot().closes)
}

func TestCloseWhileConnecting(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sock.open()
	require.Equal(t, 1, env.tr.PendingCount(), "handshake is pending")

	env.tr.Close(CloseNormal, "")

	h := env.handler.snapshot()
	assert.Equal(t, []closeInfo{{CloseNormal, ""}}, h.aborts)
	assert.Empty(t, h.closes)
	assert.Empty(t, h.errors, "an aborted handshake is covered by openAbort")
	assert.Equal(t, []closeInfo{{CloseNormal, ""}}, env.sock.closeCalls())
	assert.Len(t, env.sock.sentFrames(), 1, "no #disconnect before OPEN")
}

func TestPeerCloseWithoutCodeUses1005(t *testing.T) {
	env := openEnv(t, nil)

	env.sock.peerClose(0, "")

	assert.Equal(t, []closeInfo{{CloseNoStatus, ""}}, env.handler.snapshot().closes)
}

// A send on a socket that is no longer open closes the transport with 1005,
// the same code as a platform close without status. Both conditions share
// the code on purpose.
func TestSendOnClosedSocketUses1005(t *testing.T) {
	env := openEnv(t, nil)
	calls := &callRecorder{}

	env.sock.setState(socket.StateClosed)
	id, ok := env.tr.Emit("late", nil, &EmitOptions{Callback: calls.ack})

	assert.False(t, ok, "the call was aborted before Emit returned")
	assert.Zero(t, id)
	assert.Equal(t, 0, env.tr.PendingCount())
	assert.Equal(t, StateClosed, env.tr.State())
	assert.Equal(t, []closeInfo{{CloseNoStatus, ""}}, env.handler.snapshot().closes)

	results := calls.get()
	require.Len(t, results, 1)
	assert.True(t, sockerr.IsBadConnection(results[0].err))
	assert.Empty(t, env.sock.closeCalls(), "the socket itself is not closed")
}

func TestSocketErrorWhileConnectingForces4007(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.ConnectTimeout = 30 * time.Millisecond })

	env.sock.fail(errors.New("connection refused"))

	assert.Equal(t, StateClosed, env.tr.State())
	h := env.handler.snapshot()
	assert.Equal(t, []closeInfo{{CloseAbnormal, "connection refused"}}, h.aborts)
	assert.Empty(t, h.errors, "socket errors surface through openAbort")

	require.Eventually(t, func() bool { return len(env.sock.closeCalls()) == 1 }, waitFor, tick)
	assert.Equal(t, CloseConnectTimeout, env.sock.closeCalls()[0].code)
	assert.Len(t, env.handler.snapshot().aborts, 1, "no second notification")
}

func TestSocketCloseCancelsConnectGrace(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.ConnectTimeout = 30 * time.Millisecond })

	env.sock.fail(errors.New("connection refused"))
	env.sock.peerClose(1006, "")

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, env.sock.closeCalls())
	assert.Len(t, env.handler.snapshot().aborts, 1)
}

func TestSocketErrorWhileOpenIsOnlyLogged(t *testing.T) {
	env := openEnv(t, nil)

	env.sock.fail(errors.New("read failed"))

	assert.Equal(t, StateOpen, env.tr.State())
	assert.Empty(t, env.handler.snapshot().errors)
}

func TestStateNeverLeavesClosed(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sock.peerClose(1006, "")
	require.Equal(t, StateClosed, env.tr.State())

	// A late open or handshake response does not revive the transport.
	env.sock.open()
	env.sock.receive(`{"rid":1,"data":{}}`)
	assert.Equal(t, StateClosed, env.tr.State())
	assert.Empty(t, env.handler.snapshot().opens)
	assert.Empty(t, env.sock.sentFrames())
}

func TestEncodeDecodePassthrough(t *testing.T) {
	env := newTestEnv(t, nil)

	data, err := env.tr.Encode(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	v, err := env.tr.Decode([]byte(`[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, v)

	_, err = env.tr.Decode([]byte(`{`))
	assert.Error(t, err)

	_, err = env.tr.Encode(func() {})
	assert.Error(t, err)
}

func TestBytesReceived(t *testing.T) {
	env := openEnv(t, nil)
	before := env.tr.BytesReceived()

	env.sock.receive(`{"event":"x"}`)

	assert.Equal(t, before+int64(len(`{"event":"x"}`)), env.tr.BytesReceived())
}
