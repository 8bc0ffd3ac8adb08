// Package socket defines the message-oriented duplex socket the transport
// runs on, and a WebSocket implementation of it.
//
// A Dialer opens a Socket without blocking: Dial returns immediately with a
// socket in the Connecting state and reports progress through the Handler.
//
//	OnOpen     the socket is connected and can send
//	OnMessage  one complete message arrived
//	OnError    a socket-level error occurred
//	OnClose    the socket is closed; called exactly once
//
// Handler methods are called from a single goroutine per socket, in the
// order the events happened.
package socket
