package discovery

import (
	"net"
	"strings"

	"github.com/wcsocket/wcsocket-go/pkg/transport"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

// Hostname returns the name to dial: the advertised host name, or the first
// address when the host is unset. IPv6 literals are bracketed.
func (s *Service) Hostname() string {
	host := strings.TrimSuffix(s.Host, ".")
	if host == "" && len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		return "[" + host + "]"
	}
	return host
}

// ApplyTo points c at the service. Host is cleared so Hostname and Port
// take effect.
func (s *Service) ApplyTo(c *transport.Config) {
	c.Host = ""
	c.Hostname = s.Hostname()
	c.Port = s.Port
	c.Secure = s.Secure
	if s.Path != "" {
		c.Path = s.Path
	}
}

// NewCodec returns the codec the service advertises.
func (s *Service) NewCodec() wire.Codec {
	if s.Codec == CodecCBOR {
		return wire.CBORCodec{}
	}
	return wire.JSONCodec{}
}
