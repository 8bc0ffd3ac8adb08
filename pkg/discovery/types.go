package discovery

import (
	"errors"
	"time"
)

// Service type constants.
const (
	// ServiceType is the DNS-SD service type advertised by servers.
	ServiceType = "_socketcluster._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// BrowseTimeout is the default time spent looking for servers.
	BrowseTimeout = 10 * time.Second

	// MaxInstanceNameLength is the DNS label limit for instance names.
	MaxInstanceNameLength = 63
)

// TXT record keys.
const (
	TXTKeyPath   = "path"
	TXTKeySecure = "secure"
	TXTKeyCodec  = "codec"
)

// Codec names carried in the codec TXT record.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrInvalidCodec        = errors.New("unknown codec")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
)

// ServerInfo describes a server to advertise.
type ServerInfo struct {
	// InstanceName identifies the server to users.
	InstanceName string

	// Port is the listening port.
	Port int

	// Path is the socket endpoint path (empty means the default).
	Path string

	// Secure marks the endpoint as wss.
	Secure bool

	// Codec is CodecJSON or CodecCBOR (empty means json).
	Codec string
}

// Service is a server found on the network.
type Service struct {
	InstanceName string
	Host         string
	Port         int
	Addresses    []string

	Path   string
	Secure bool
	Codec  string
}
