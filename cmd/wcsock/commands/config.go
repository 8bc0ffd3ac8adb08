// Package commands implements the wcsock CLI commands.
package commands

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wcsocket/wcsocket-go/pkg/discovery"
	"github.com/wcsocket/wcsocket-go/pkg/socket"
	"github.com/wcsocket/wcsocket-go/pkg/transport"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

// FileConfig is the YAML configuration read by `wcsock connect --config`.
type FileConfig struct {
	URL               string            `yaml:"url"`
	Hostname          string            `yaml:"hostname"`
	Port              int               `yaml:"port"`
	Path              string            `yaml:"path"`
	Secure            bool              `yaml:"secure"`
	Query             map[string]string `yaml:"query"`
	TimestampRequests bool              `yaml:"timestampRequests"`
	TimestampParam    string            `yaml:"timestampParam"`

	AuthTokenName string `yaml:"authTokenName"`
	TokenFile     string `yaml:"tokenFile"`

	AckTimeout          time.Duration `yaml:"ackTimeout"`
	PingTimeout         time.Duration `yaml:"pingTimeout"`
	PingTimeoutDisabled bool          `yaml:"pingTimeoutDisabled"`
	ConnectTimeout      time.Duration `yaml:"connectTimeout"`
	BatchDuration       time.Duration `yaml:"batchDuration"`

	// Codec is "json" (default) or "cbor".
	Codec string `yaml:"codec"`

	TLS TLSFileConfig `yaml:"tls"`

	// ProtocolLog is a path for a CBOR protocol capture.
	ProtocolLog string `yaml:"protocolLog"`
}

// TLSFileConfig is the tls section of FileConfig.
type TLSFileConfig struct {
	CAFile             string `yaml:"caFile"`
	CertFile           string `yaml:"certFile"`
	KeyFile            string `yaml:"keyFile"`
	ServerName         string `yaml:"serverName"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
}

// LoadFileConfig reads a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &fc, nil
}

// ApplyURL splits a ws:// or wss:// URL into the connection fields.
func (fc *FileConfig) ApplyURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	switch u.Scheme {
	case "ws":
		fc.Secure = false
	case "wss":
		fc.Secure = true
	default:
		return fmt.Errorf("invalid url scheme %q (must be ws or wss)", u.Scheme)
	}
	if u.Hostname() == "" {
		return errors.New("url has no host")
	}

	fc.Hostname = u.Hostname()
	fc.Port = 0
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid port %q", p)
		}
		fc.Port = port
	}
	if u.Path != "" {
		fc.Path = u.Path
	}
	if q := u.Query(); len(q) > 0 {
		if fc.Query == nil {
			fc.Query = make(map[string]string)
		}
		for k := range q {
			fc.Query[k] = q.Get(k)
		}
	}
	return nil
}

// ApplyService points the config at a discovered server, replacing any URL.
func (fc *FileConfig) ApplyService(svc *discovery.Service) {
	fc.URL = ""
	fc.Hostname = svc.Hostname()
	fc.Port = svc.Port
	fc.Secure = svc.Secure
	if svc.Path != "" {
		fc.Path = svc.Path
	}
	if svc.Codec != "" {
		fc.Codec = svc.Codec
	}
}

// TransportConfig converts the file config. Zero values keep the
// transport defaults.
func (fc *FileConfig) TransportConfig() (transport.Config, error) {
	if fc.URL != "" {
		if err := fc.ApplyURL(fc.URL); err != nil {
			return transport.Config{}, err
		}
	}

	c := transport.DefaultConfig()
	c.Secure = fc.Secure
	if fc.Hostname != "" {
		c.Hostname = fc.Hostname
	}
	c.Port = fc.Port
	if fc.Path != "" {
		c.Path = fc.Path
	}
	if len(fc.Query) > 0 {
		c.Query = url.Values{}
		for k, v := range fc.Query {
			c.Query.Set(k, v)
		}
	}
	c.TimestampRequests = fc.TimestampRequests
	if fc.TimestampParam != "" {
		c.TimestampParam = fc.TimestampParam
	}
	if fc.AuthTokenName != "" {
		c.AuthTokenName = fc.AuthTokenName
	}
	if fc.AckTimeout > 0 {
		c.AckTimeout = fc.AckTimeout
	}
	if fc.PingTimeout > 0 {
		c.PingTimeout = fc.PingTimeout
	}
	c.PingTimeoutDisabled = fc.PingTimeoutDisabled
	if fc.ConnectTimeout > 0 {
		c.ConnectTimeout = fc.ConnectTimeout
	}
	c.BatchDuration = fc.BatchDuration

	codec, err := fc.NewCodec()
	if err != nil {
		return transport.Config{}, err
	}

	wsConfig := socket.WebSocketConfig{Binary: wire.IsBinary(codec)}
	if c.Secure {
		tlsConfig, err := socket.NewClientTLSConfig(&socket.TLSConfig{
			CAFile:             fc.TLS.CAFile,
			CertFile:           fc.TLS.CertFile,
			KeyFile:            fc.TLS.KeyFile,
			ServerName:         fc.TLS.ServerName,
			InsecureSkipVerify: fc.TLS.InsecureSkipVerify,
		})
		if err != nil {
			return transport.Config{}, err
		}
		wsConfig.TLS = tlsConfig
	}
	c.Dialer = socket.NewWebSocketDialer(wsConfig)

	return c, nil
}

// NewCodec returns the configured frame codec.
func (fc *FileConfig) NewCodec() (wire.Codec, error) {
	switch fc.Codec {
	case "", "json":
		return wire.JSONCodec{}, nil
	case "cbor":
		return wire.CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (must be json or cbor)", fc.Codec)
	}
}
