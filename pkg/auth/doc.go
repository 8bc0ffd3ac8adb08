// Package auth provides auth token storage for the transport's handshake.
//
// The transport only needs to load a token by name (TokenLoader). Engine adds
// saving and removal for higher-level clients that receive new tokens from
// the server.
//
// Two engines are provided:
//   - MemoryEngine: tokens live for the life of the process
//   - FileEngine: tokens persist in a YAML file
//
// A missing token is not an error: LoadToken returns "" and the handshake is
// sent without a token.
package auth
