package sockerr

import (
	"errors"
	"fmt"
)

// Kind tags an Error with one of the known error classes.
type Kind uint8

const (
	// KindUnknown is used for wire errors whose name is not recognized.
	KindUnknown Kind = iota
	KindTimeout
	KindBadConnection
	KindAuthTokenExpired
	KindAuthTokenInvalid
	KindAuthTokenNotBefore
	KindAuthTokenError
	KindSilentMiddleware
	KindInvalidAction
	KindInvalidArguments
	KindInvalidOptions
	KindInvalidMessage
	KindSocketProtocol
	KindServerProtocol
	KindHTTPServer
	KindResourceLimit
	KindQueueFull
	KindBroker
)

var kindNames = map[Kind]string{
	KindUnknown:            "Error",
	KindTimeout:            "TimeoutError",
	KindBadConnection:      "BadConnectionError",
	KindAuthTokenExpired:   "AuthTokenExpiredError",
	KindAuthTokenInvalid:   "AuthTokenInvalidError",
	KindAuthTokenNotBefore: "AuthTokenNotBeforeError",
	KindAuthTokenError:     "AuthTokenError",
	KindSilentMiddleware:   "SilentMiddlewareBlockedError",
	KindInvalidAction:      "InvalidActionError",
	KindInvalidArguments:   "InvalidArgumentsError",
	KindInvalidOptions:     "InvalidOptionsError",
	KindInvalidMessage:     "InvalidMessageError",
	KindSocketProtocol:     "SocketProtocolError",
	KindServerProtocol:     "ServerProtocolError",
	KindHTTPServer:         "HTTPServerError",
	KindResourceLimit:      "ResourceLimitError",
	KindQueueFull:          "QueueFullError",
	KindBroker:             "BrokerError",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Error"
}

// ParseKind maps a wire error name to its Kind.
// Unrecognized names map to KindUnknown.
func ParseKind(name string) Kind {
	if k, ok := kindsByName[name]; ok {
		return k
	}
	return KindUnknown
}

// FailureType distinguishes why pending calls were aborted by a bad connection.
type FailureType string

const (
	// FailureDisconnect is used when an open connection closes.
	FailureDisconnect FailureType = "disconnect"

	// FailureConnectAbort is used when a connection closes before it opened.
	FailureConnectAbort FailureType = "connectAbort"
)

// Error is a typed protocol error.
type Error struct {
	// Kind is the error class.
	Kind Kind

	// Name is the wire name. It equals Kind.String() unless the peer sent
	// a name this package does not know.
	Name string

	// Message is the human-readable description.
	Message string

	// Type carries the failure type of bad-connection errors.
	Type FailureType

	// Code is an optional numeric status attached by the peer.
	Code int

	// Data holds any extra properties of a hydrated wire error.
	Data map[string]any
}

func (e *Error) Error() string {
	name := e.Name
	if name == "" {
		name = e.Kind.String()
	}
	if e.Message == "" {
		return name
	}
	return name + ": " + e.Message
}

// Is reports whether target is an *Error of the same Kind.
// This lets errors.Is match against the Err* kind sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for use with errors.Is.
var (
	ErrTimeout       = &Error{Kind: KindTimeout}
	ErrBadConnection = &Error{Kind: KindBadConnection}
)

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Name:    kind.String(),
		Message: fmt.Sprintf(format, args...),
	}
}

// NewTimeout creates a timeout error.
func NewTimeout(message string) *Error {
	return &Error{Kind: KindTimeout, Name: KindTimeout.String(), Message: message}
}

// NewBadConnection creates a bad-connection error tagged with the failure type.
func NewBadConnection(message string, failure FailureType) *Error {
	return &Error{
		Kind:    KindBadConnection,
		Name:    KindBadConnection.String(),
		Message: message,
		Type:    failure,
	}
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsTimeout reports whether err is a timeout error.
func IsTimeout(err error) bool {
	return IsKind(err, KindTimeout)
}

// IsBadConnection reports whether err is a bad-connection error.
func IsBadConnection(err error) bool {
	return IsKind(err, KindBadConnection)
}

// FailureOf returns the failure type of a bad-connection error.
func FailureOf(err error) (FailureType, bool) {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindBadConnection {
		return "", false
	}
	return e.Type, true
}
