// Package transport implements the client side of the wcsocket event protocol
// on top of a message-oriented socket.
//
// A Transport owns exactly one socket for its whole life. It handles:
//   - The connection state machine (CONNECTING, OPEN, CLOSED)
//   - The #handshake exchange that gates the OPEN transition
//   - Keep-alive: the server pings, the client answers with a pong
//   - Request/response correlation with per-call ack timeouts
//   - Outbound batching of frames into one array message
//   - Dispatch of inbound events, responses and unrecognized messages
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│  Events / Responses / #1 #2    │
//	├────────────────────────────────┤
//	│   Codec (JSON text or CBOR)    │
//	├────────────────────────────────┤
//	│          WebSocket             │
//	└────────────────────────────────┘
//
// # Lifecycle
//
// A transport starts CONNECTING as soon as it is created. When the socket
// opens the handshake runs; success moves the transport to OPEN, failure closes
// it with the status code from the server or 4003. CLOSED is terminal: a new
// connection attempt needs a new Transport. Reconnection policy belongs to the
// caller.
//
// # Close Codes
//
//   - 1000: normal closure (default for Close)
//   - 1005: no status from the platform, or a send while the socket is not open
//   - 1006: socket error while connecting
//   - 4000: no ping received within the ping timeout
//   - 4003: handshake failed without a status code
//   - 4007: connect grace period expired after a socket error
//
// # Concurrency
//
// All mutable state is guarded by one mutex. Handler notifications and call
// callbacks run after the mutex is released, so they may call back into the
// transport.
package transport
