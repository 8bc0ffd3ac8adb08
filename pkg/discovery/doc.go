// Package discovery finds SocketCluster servers on the local network with
// mDNS/DNS-SD.
//
// Servers advertise the service type _socketcluster._tcp. The instance name
// is free-form and identifies the server to users. TXT records describe how
// to reach the socket endpoint:
//
//   - path: the endpoint path (default /socketcluster/)
//   - secure: "1" when the server expects wss
//   - codec: the frame codec, "json" or "cbor" (default json)
//
// A Service found by a Browser can be applied to a transport.Config, which
// fills in the host, port, path and scheme.
package discovery
