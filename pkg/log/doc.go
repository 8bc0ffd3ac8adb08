// Package log provides structured protocol logging for wcsocket transports.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, wire, session).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Services already using zerolog can route events there instead
//	cfg.ProtocolLogger = log.NewZerologAdapter(zerolog.New(os.Stderr))
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/wcsocket/client.wlog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw socket payloads (FrameEvent)
//   - Wire: Decoded frames (MessageEvent)
//   - Session: Connection state changes (StateChangeEvent)
//
// Control messages (ping/pong/disconnect) and errors have dedicated event types.
//
// # File Format
//
// Log files use CBOR encoding with .wlog extension. The wcsock CLI
// provides viewing and statistics for them.
package log
