package socket

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertificates is returned when a CA file holds no PEM certificates.
var ErrNoCertificates = errors.New("no certificates found")

// TLSConfig holds client-side TLS settings for secure (wss) connections.
type TLSConfig struct {
	// CAFile is a PEM bundle of trusted CAs added to RootCAs.
	CAFile string

	// RootCAs is the pool of trusted CA certificates. Nil uses the
	// system pool unless CAFile is set.
	RootCAs *x509.CertPool

	// CertFile and KeyFile load a client certificate for mutual TLS.
	CertFile string
	KeyFile  string

	// Certificate is a client certificate for mutual TLS. Ignored when
	// CertFile is set.
	Certificate *tls.Certificate

	// ServerName overrides the name used to verify the server certificate.
	ServerName string

	// MinVersion is the lowest accepted TLS version (default: TLS 1.2).
	MinVersion uint16

	// InsecureSkipVerify disables certificate verification.
	// Only for testing - never use in production!
	InsecureSkipVerify bool
}

// NewClientTLSConfig builds a tls.Config for dialing secure sockets.
func NewClientTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("TLSConfig is required")
	}

	tlsConfig := &tls.Config{
		MinVersion: cfg.MinVersion,
		RootCAs:    cfg.RootCAs,
		ServerName: cfg.ServerName,

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if tlsConfig.MinVersion == 0 {
		tlsConfig.MinVersion = tls.VersionTLS12
	}

	if cfg.CAFile != "" {
		pool, err := loadCertPool(cfg.CAFile, cfg.RootCAs)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}

	switch {
	case cfg.CertFile != "" || cfg.KeyFile != "":
		if cfg.CertFile == "" || cfg.KeyFile == "" {
			return nil, fmt.Errorf("client certificate needs both cert and key files")
		}
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	case cfg.Certificate != nil:
		tlsConfig.Certificates = []tls.Certificate{*cfg.Certificate}
	}

	return tlsConfig, nil
}

// loadCertPool reads a PEM bundle into a copy of base (or a new pool).
func loadCertPool(path string, base *x509.CertPool) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	pool := x509.NewCertPool()
	if base != nil {
		pool = base.Clone()
	}
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCertificates)
	}
	return pool, nil
}

// VerifyTLSVersion checks that a connection negotiated at least min.
func VerifyTLSVersion(state tls.ConnectionState, min uint16) error {
	if state.Version < min {
		return fmt.Errorf("TLS version %x is below minimum %x", state.Version, min)
	}
	return nil
}
