package transport

// State is the transport connection state.
type State int32

const (
	// StateConnecting is the initial state until the handshake completes.
	StateConnecting State = iota

	// StateOpen indicates a completed handshake.
	StateOpen

	// StateClosed is terminal.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Close codes used by the transport.
const (
	// CloseNormal is used by Close when no code is given.
	CloseNormal = 1000

	// CloseNoStatus is reported when the platform gave no code, and when a
	// send was attempted while the socket was not open.
	CloseNoStatus = 1005

	// CloseAbnormal is used when the socket fails while connecting.
	CloseAbnormal = 1006

	// ClosePingTimeout is used when no ping arrived within the ping timeout.
	ClosePingTimeout = 4000

	// CloseHandshakeFailed is used when the handshake failed without a code.
	CloseHandshakeFailed = 4003

	// CloseConnectTimeout is used when the connect grace period expires.
	CloseConnectTimeout = 4007
)
