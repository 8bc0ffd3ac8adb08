package wire

import (
	"fmt"
	"strconv"
)

// Sentinels exchanged for keep-alive.
const (
	PingSentinel = "#1"
	PongSentinel = "#2"
)

// Reserved event names used by the transport itself.
const (
	EventHandshake  = "#handshake"
	EventDisconnect = "#disconnect"
)

// FrameKind identifies the variant of a Frame.
type FrameKind uint8

const (
	// FrameRaw is a decoded value that is neither an event nor a response.
	FrameRaw FrameKind = iota
	FrameEvent
	FrameResponse
)

// String returns the frame kind name.
func (k FrameKind) String() string {
	switch k {
	case FrameRaw:
		return "RAW"
	case FrameEvent:
		return "EVENT"
	case FrameResponse:
		return "RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// Frame is one decoded protocol frame. It is one of *EventFrame,
// *ResponseFrame or *RawFrame.
type Frame interface {
	Kind() FrameKind
}

// EventFrame carries a named event. CID is non-zero when the sender expects
// a response.
type EventFrame struct {
	Event string `json:"event" cbor:"event"`
	Data  any    `json:"data,omitempty" cbor:"data,omitempty"`
	CID   uint64 `json:"cid,omitempty" cbor:"cid,omitempty"`
}

// Kind implements Frame.
func (*EventFrame) Kind() FrameKind { return FrameEvent }

// ResponseFrame answers the event whose cid equals RID.
// Error holds the wire form of a remote error.
type ResponseFrame struct {
	RID   uint64 `json:"rid" cbor:"rid"`
	Data  any    `json:"data,omitempty" cbor:"data,omitempty"`
	Error any    `json:"error,omitempty" cbor:"error,omitempty"`
}

// Kind implements Frame.
func (*ResponseFrame) Kind() FrameKind { return FrameResponse }

// RawFrame wraps a decoded value that matched no known frame shape.
type RawFrame struct {
	Value any
}

// Kind implements Frame.
func (*RawFrame) Kind() FrameKind { return FrameRaw }

// Packet is the classified content of one socket message.
type Packet struct {
	// Ping is set when the message was the ping sentinel. Frames is empty then.
	Ping bool

	// Batch is set when the message was an array of frames.
	Batch bool

	// Frames lists the frames in message order.
	Frames []Frame
}

// ParsePacket classifies a decoded message.
func ParsePacket(v any) Packet {
	if s, ok := v.(string); ok && s == PingSentinel {
		return Packet{Ping: true}
	}
	if list, ok := v.([]any); ok {
		frames := make([]Frame, 0, len(list))
		for _, item := range list {
			frames = append(frames, Classify(item))
		}
		return Packet{Batch: true, Frames: frames}
	}
	return Packet{Frames: []Frame{Classify(v)}}
}

// DecodePacket decodes a socket message with c and classifies the result.
func DecodePacket(c Codec, data []byte) (Packet, error) {
	v, err := c.Decode(data)
	if err != nil {
		return Packet{}, err
	}
	return ParsePacket(v), nil
}

// Classify turns a single decoded value into a Frame.
// A value with a non-nil "event" is an event frame; otherwise a value with a
// non-nil "rid" is a response frame; anything else is raw.
func Classify(v any) Frame {
	obj, ok := asObject(v)
	if !ok {
		return &RawFrame{Value: v}
	}

	if ev, ok := obj["event"]; ok && ev != nil {
		cid, _ := ToCallID(obj["cid"])
		return &EventFrame{
			Event: eventName(ev),
			Data:  obj["data"],
			CID:   cid,
		}
	}

	if rid, ok := obj["rid"]; ok && rid != nil {
		id, _ := ToCallID(rid)
		return &ResponseFrame{
			RID:   id,
			Data:  obj["data"],
			Error: obj["error"],
		}
	}

	return &RawFrame{Value: v}
}

// ToCallID converts the numeric representations produced by decoders
// into a call id.
func ToCallID(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case float64:
		if n < 0 || n != float64(uint64(n)) {
			return 0, false
		}
		return uint64(n), true
	case string:
		id, err := strconv.ParseUint(n, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func eventName(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
