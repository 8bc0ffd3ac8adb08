// Package wire defines the frame shapes exchanged with the server and the
// codecs that serialize them.
//
// # Frames
//
// Every message on the socket is one of:
//   - the ping sentinel "#1" or the pong sentinel "#2"
//   - an event frame: {"event": name, "data": payload, "cid": callID}
//   - a response frame: {"rid": callID, "data": payload, "error": wireError}
//   - a batch: an array of event and response frames
//
// The cid key is present only when the sender expects a response. A response
// frame carries the rid of the event it answers.
//
// # Codecs
//
// A Codec turns Go values into socket payloads and back. Two are provided:
//   - JSONCodec: text frames, sentinels passed through unquoted
//   - CBORCodec: binary frames with string keys
//
// Decoding yields generic values (maps, slices, strings, numbers). ParsePacket
// classifies them into tagged frames so the transport never probes fields itself.
package wire
