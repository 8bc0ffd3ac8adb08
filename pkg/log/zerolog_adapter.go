package log

import (
	"github.com/rs/zerolog"
)

// ZerologAdapter writes protocol events to a zerolog.Logger. Field names
// match SlogAdapter so both outputs can be processed by the same tooling.
type ZerologAdapter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

// NewZerologAdapter creates an adapter that logs at Debug level.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger, level: zerolog.DebugLevel}
}

// WithLevel returns a copy of the adapter that logs at the given level.
func (a *ZerologAdapter) WithLevel(level zerolog.Level) *ZerologAdapter {
	c := *a
	c.level = level
	return &c
}

// Log writes the event as a single zerolog entry.
func (a *ZerologAdapter) Log(event Event) {
	e := a.logger.WithLevel(a.level)
	if e == nil {
		return
	}

	e = e.Time("ts", event.Timestamp).
		Str("conn_id", event.ConnectionID).
		Str("direction", event.Direction.String()).
		Str("layer", event.Layer.String()).
		Str("category", event.Category.String())

	switch {
	case event.Frame != nil:
		e = e.Int("frame_size", event.Frame.Size).Bool("truncated", event.Frame.Truncated)
	case event.Message != nil:
		e = e.Str("msg_type", event.Message.Type.String())
		if event.Message.Event != "" {
			e = e.Str("event", event.Message.Event)
		}
		if event.Message.CallID != 0 {
			e = e.Uint64("cid", event.Message.CallID)
		}
		if event.Message.HasError {
			e = e.Bool("has_error", true)
		}
		if event.Message.RoundTrip != nil {
			e = e.Dur("round_trip", *event.Message.RoundTrip)
		}
		if event.Message.BatchSize > 0 {
			e = e.Int("batch_size", event.Message.BatchSize)
		}
	case event.StateChange != nil:
		e = e.Str("old_state", event.StateChange.OldState).
			Str("new_state", event.StateChange.NewState)
		if event.StateChange.Code != 0 {
			e = e.Int("code", event.StateChange.Code)
		}
		if event.StateChange.Reason != "" {
			e = e.Str("reason", event.StateChange.Reason)
		}
	case event.ControlMsg != nil:
		e = e.Str("ctrl_type", event.ControlMsg.Type.String())
		if event.ControlMsg.CloseCode != nil {
			e = e.Int("close_code", *event.ControlMsg.CloseCode)
		}
	case event.Error != nil:
		e = e.Str("error_layer", event.Error.Layer.String()).
			Str("error_msg", event.Error.Message).
			Str("error_context", event.Error.Context)
		if event.Error.Kind != "" {
			e = e.Str("error_kind", event.Error.Kind)
		}
		if event.Error.Code != nil {
			e = e.Int("error_code", *event.Error.Code)
		}
	}

	e.Msg("protocol")
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZerologAdapter)(nil)
