package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcsocket/wcsocket-go/pkg/discovery"
	"github.com/wcsocket/wcsocket-go/pkg/transport"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wcsock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
hostname: example.com
port: 8000
path: /ws/
query:
  room: lobby
ackTimeout: 5s
pingTimeoutDisabled: true
batchDuration: 50ms
codec: cbor
authTokenName: app.token
`)

	fc, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, fc.AckTimeout)
	assert.Equal(t, 50*time.Millisecond, fc.BatchDuration)

	c, err := fc.TransportConfig()
	require.NoError(t, err)
	assert.Equal(t, "ws://example.com:8000/ws/?room=lobby", transport.BuildURI(c, time.Now()))
	assert.Equal(t, 5*time.Second, c.AckTimeout)
	assert.True(t, c.PingTimeoutDisabled)
	assert.Equal(t, "app.token", c.AuthTokenName)
	assert.NotNil(t, c.Dialer)

	codec, err := fc.NewCodec()
	require.NoError(t, err)
	assert.IsType(t, wire.CBORCodec{}, codec)
}

func TestLoadFileConfigErrors(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFileConfig(writeConfig(t, "ackTimeout: [not a duration"))
	assert.Error(t, err)
}

func TestFileConfigDefaults(t *testing.T) {
	c, err := (&FileConfig{}).TransportConfig()
	require.NoError(t, err)

	def := transport.DefaultConfig()
	assert.Equal(t, def.AckTimeout, c.AckTimeout)
	assert.Equal(t, def.Path, c.Path)
	assert.Equal(t, "ws://localhost/socketcluster/", transport.BuildURI(c, time.Now()))
}

func TestApplyURL(t *testing.T) {
	fc := &FileConfig{URL: "wss://chat.example.com:9443/sc/?token=abc"}

	c, err := fc.TransportConfig()
	require.NoError(t, err)
	assert.True(t, c.Secure)
	assert.Equal(t, "wss://chat.example.com:9443/sc/?token=abc", transport.BuildURI(c, time.Now()))
}

func TestApplyURLInvalid(t *testing.T) {
	for _, raw := range []string{"http://example.com", "ws://", "ws://host:port"} {
		assert.Error(t, (&FileConfig{}).ApplyURL(raw), raw)
	}
}

func TestUnknownCodec(t *testing.T) {
	_, err := (&FileConfig{Codec: "xml"}).TransportConfig()
	assert.Error(t, err)
}

func TestApplyService(t *testing.T) {
	fc := &FileConfig{URL: "ws://old.example.com/ws/", Path: "/ws/"}
	fc.ApplyService(&discovery.Service{
		InstanceName: "sc-1",
		Host:         "sc-1.local.",
		Port:         8443,
		Path:         "/sc/",
		Secure:       true,
		Codec:        discovery.CodecCBOR,
	})

	c, err := fc.TransportConfig()
	require.NoError(t, err)
	assert.Equal(t, "wss://sc-1.local:8443/sc/", transport.BuildURI(c, time.Now()))

	codec, err := fc.NewCodec()
	require.NoError(t, err)
	assert.IsType(t, wire.CBORCodec{}, codec)
}
