// Package sockerr defines the error taxonomy shared by the transport and its peers.
//
// Errors travel over the wire in a generic form: an object with a "name", a
// "message" and optional extra properties. Hydrate turns that wire form into a
// typed *Error whose Kind is one of a fixed set of tags; Dehydrate does the
// reverse for errors sent back to the peer.
//
//	err := sockerr.Hydrate(frame.Error)
//	if sockerr.IsKind(err, sockerr.KindAuthTokenExpired) {
//	    // refresh the token
//	}
//
// Locally produced failures use the same type:
//
//   - NewTimeout: a call or handshake did not receive a response in time
//   - NewBadConnection: pending calls aborted because the connection closed,
//     tagged FailureDisconnect or FailureConnectAbort
//
// CloseCodeText describes socket close codes, including the application range
// used by the transport (4000 ping timeout, 4003 handshake failure, 4007 connect
// timeout).
package sockerr
