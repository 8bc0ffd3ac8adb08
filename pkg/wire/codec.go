package wire

import (
	"encoding/json"
	"fmt"
)

// Codec serializes frames for the socket.
type Codec interface {
	// Encode serializes v. It may fail for values the format cannot represent.
	Encode(v any) ([]byte, error)

	// Decode parses one socket message into generic values.
	Decode(data []byte) (any, error)
}

// binaryCodec is implemented by codecs whose output must travel in binary
// socket messages.
type binaryCodec interface {
	Binary() bool
}

// IsBinary reports whether c produces binary payloads.
func IsBinary(c Codec) bool {
	b, ok := c.(binaryCodec)
	return ok && b.Binary()
}

// JSONCodec encodes frames as JSON text. The ping and pong sentinels are
// written and read unquoted.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(v any) ([]byte, error) {
	if s, ok := v.(string); ok && isSentinel(s) {
		return []byte(s), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return data, nil
}

// Decode implements Codec.
func (JSONCodec) Decode(data []byte) (any, error) {
	if s := string(data); isSentinel(s) {
		return s, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return v, nil
}

func isSentinel(s string) bool {
	return s == PingSentinel || s == PongSentinel
}

// Compile-time interface satisfaction checks.
var (
	_ Codec = JSONCodec{}
	_ Codec = CBORCodec{}
)
