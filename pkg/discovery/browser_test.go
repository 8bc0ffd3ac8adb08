package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcsocket/wcsocket-go/pkg/transport"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

func TestServiceEntryToService(t *testing.T) {
	entry := ServiceEntry{
		Instance:  "chat",
		Host:      "chat.local.",
		Port:      8000,
		Text:      []string{"path=/ws/", "secure=0"},
		Addresses: []string{"192.168.1.10"},
	}

	svc, err := entry.ToService()
	require.NoError(t, err)
	assert.Equal(t, "chat", svc.InstanceName)
	assert.Equal(t, 8000, svc.Port)
	assert.Equal(t, "/ws/", svc.Path)
	assert.False(t, svc.Secure)
	assert.Equal(t, CodecJSON, svc.Codec)
	assert.Equal(t, []string{"192.168.1.10"}, svc.Addresses)

	_, err = ServiceEntry{Instance: "bad", Text: []string{"codec=xml"}}.ToService()
	assert.ErrorIs(t, err, ErrInvalidCodec)
}

func TestMergeAndRemoveAddresses(t *testing.T) {
	addrs := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "fe80::1"})
	assert.Equal(t, []string{"10.0.0.1", "fe80::1"}, addrs)

	addrs = removeAddresses(addrs, []string{"10.0.0.1"})
	assert.Equal(t, []string{"fe80::1"}, addrs)
}

func TestServiceHostname(t *testing.T) {
	assert.Equal(t, "chat.local", (&Service{Host: "chat.local."}).Hostname())
	assert.Equal(t, "10.0.0.1", (&Service{Addresses: []string{"10.0.0.1"}}).Hostname())
	assert.Equal(t, "[fe80::1]", (&Service{Addresses: []string{"fe80::1"}}).Hostname())
}

func TestServiceApplyTo(t *testing.T) {
	c := transport.DefaultConfig()
	c.Host = "stale:1"

	svc := &Service{Host: "chat.local.", Port: 8443, Path: "/ws/", Secure: true}
	svc.ApplyTo(&c)

	assert.Equal(t, "wss://chat.local:8443/ws/", transport.BuildURI(c, time.Time{}))
}

func TestServiceApplyToKeepsDefaultPath(t *testing.T) {
	c := transport.DefaultConfig()
	(&Service{Host: "h", Port: 80}).ApplyTo(&c)

	assert.Equal(t, transport.DefaultPath, c.Path)
}

func TestServiceNewCodec(t *testing.T) {
	assert.IsType(t, wire.JSONCodec{}, (&Service{}).NewCodec())
	assert.IsType(t, wire.CBORCodec{}, (&Service{Codec: CodecCBOR}).NewCodec())
}
