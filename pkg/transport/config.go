package transport

import (
	"log/slog"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/wcsocket/wcsocket-go/pkg/log"
	"github.com/wcsocket/wcsocket-go/pkg/socket"
)

// Default configuration values.
const (
	// DefaultAckTimeout bounds the wait for a call response. It is also the
	// default ping timeout.
	DefaultAckTimeout = 10 * time.Second

	// DefaultConnectTimeout is the grace period after a socket error while
	// connecting before the transport force-closes with 4007.
	DefaultConnectTimeout = 20 * time.Second

	// DefaultHostname is used when neither Host nor Hostname is set.
	DefaultHostname = "localhost"

	// DefaultPath is the server endpoint path.
	DefaultPath = "/socketcluster/"

	// DefaultTimestampParam is the query parameter carrying the timestamp.
	DefaultTimestampParam = "t"

	// DefaultAuthTokenName is the name the auth token is stored under.
	DefaultAuthTokenName = "socketcluster.authToken"
)

// CallID identifies an outbound call awaiting a response.
type CallID uint64

// Config configures a Transport.
type Config struct {
	// Secure selects wss instead of ws.
	Secure bool

	// Host is "hostname:port". When set it overrides Hostname and Port.
	Host string

	// Hostname of the server (default: localhost).
	Hostname string

	// Port of the server. 0 or the scheme default is omitted from the URI.
	Port int

	// Path of the server endpoint (default: /socketcluster/).
	Path string

	// Query parameters added to the URI. The map is never modified.
	Query url.Values

	// TimestampRequests appends the current unix time in milliseconds
	// to the URI query, defeating caches.
	TimestampRequests bool

	// TimestampParam names the timestamp query parameter (default: t).
	TimestampParam string

	// AuthTokenName is the key passed to the token loader.
	AuthTokenName string

	// AckTimeout bounds the wait for a call response (default: 10s).
	AckTimeout time.Duration

	// PingTimeout bounds the interval between server pings
	// (default: AckTimeout).
	PingTimeout time.Duration

	// PingTimeoutDisabled turns keep-alive monitoring off entirely.
	PingTimeoutDisabled bool

	// ConnectTimeout is the grace period after a socket error while
	// connecting (default: 20s).
	ConnectTimeout time.Duration

	// BatchDuration is the flush window for batched frames (default: 0,
	// flush on the next timer tick).
	BatchDuration time.Duration

	// CallIDGenerator returns call ids. Ids must be unique among pending
	// calls. Default: a per-transport counter starting at 1.
	CallIDGenerator func() CallID

	// Dialer opens the socket (default: a gorilla WebSocket dialer using
	// binary messages when the codec is binary).
	Dialer socket.Dialer

	// Handler receives notifications (default: discard).
	Handler Handler

	// Logger is the operational logger (default: discard).
	Logger *slog.Logger

	// ProtocolLogger receives protocol events (default: discard).
	ProtocolLogger log.Logger

	// Metrics records transport metrics (nil = disabled).
	Metrics *Metrics

	// Tracer creates handshake and call spans (default: the global
	// OpenTelemetry tracer provider).
	Tracer trace.Tracer
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		Hostname:       DefaultHostname,
		Path:           DefaultPath,
		TimestampParam: DefaultTimestampParam,
		AuthTokenName:  DefaultAuthTokenName,
		AckTimeout:     DefaultAckTimeout,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// applyDefaults fills zero values. Dialer and Tracer need the codec and
// are resolved by New.
func (c *Config) applyDefaults() {
	if c.Hostname == "" {
		c.Hostname = DefaultHostname
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.TimestampParam == "" {
		c.TimestampParam = DefaultTimestampParam
	}
	if c.AuthTokenName == "" {
		c.AuthTokenName = DefaultAuthTokenName
	}
	if c.AckTimeout <= 0 {
		c.AckTimeout = DefaultAckTimeout
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = c.AckTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.BatchDuration < 0 {
		c.BatchDuration = 0
	}
	if c.Handler == nil {
		c.Handler = HandlerFuncs{}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	c.ProtocolLogger = log.OrNoop(c.ProtocolLogger)
}
