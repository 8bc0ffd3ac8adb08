package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wcsocket/wcsocket-go/pkg/log"
	"github.com/wcsocket/wcsocket-go/pkg/sockerr"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

// HandshakeStatus is the server's answer to #handshake.
type HandshakeStatus struct {
	// ID is the server-assigned socket id.
	ID string `mapstructure:"id"`

	// PingTimeout is the server's ping timeout in milliseconds.
	PingTimeout int64 `mapstructure:"pingTimeout"`

	// IsAuthenticated reports whether the server accepted the token.
	IsAuthenticated bool `mapstructure:"isAuthenticated"`

	// Code is the close code the server wants used on failure.
	Code int `mapstructure:"code"`

	// AuthError is the hydrated auth error, if the server sent one.
	AuthError error `mapstructure:"-"`

	// AuthToken is the token that was sent with the handshake.
	AuthToken string `mapstructure:"-"`

	// Extra holds fields not mapped above, including the wire-form authError.
	Extra map[string]any `mapstructure:",remain"`
}

// decodeHandshakeStatus maps a handshake response onto HandshakeStatus.
// Fields of the wrong shape are left at their zero value.
func decodeHandshakeStatus(data any, token string) (*HandshakeStatus, error) {
	status := &HandshakeStatus{AuthToken: token}
	if data == nil {
		return status, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           status,
	})
	if err != nil {
		return status, err
	}
	if err := decoder.Decode(data); err != nil {
		return status, err
	}

	if raw, ok := status.Extra["authError"]; ok && raw != nil {
		status.AuthError = sockerr.Hydrate(raw)
	}
	status.AuthToken = token
	return status, nil
}

// handshake loads the auth token and sends #handshake. Runs once, right
// after the socket opens.
func (t *Transport) handshake() {
	start := time.Now()
	_, span := t.tracer.Start(context.Background(), "wcsocket.handshake",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("wcsocket.conn_id", t.id),
			attribute.String("wcsocket.uri", t.uri),
		))

	token, err := t.auth.LoadToken(t.config.AuthTokenName)
	if err != nil {
		t.finishHandshake(span, start, nil, err)
		return
	}
	if t.State() == StateClosed {
		t.logger.Debug("handshake skipped, transport closed while loading token")
		span.End()
		return
	}

	var authToken any
	if token != "" {
		authToken = token
	}
	span.SetAttributes(attribute.Bool("wcsocket.has_token", token != ""))

	t.Emit(wire.EventHandshake, map[string]any{"authToken": authToken}, &EmitOptions{
		Force: true,
		Callback: func(err error, data any) {
			var status *HandshakeStatus
			if data != nil || err == nil {
				var derr error
				status, derr = decodeHandshakeStatus(data, token)
				if derr != nil {
					t.logger.Warn("malformed handshake status", slog.Any("error", derr))
				}
			}
			t.finishHandshake(span, start, status, err)
		},
	})
}

func (t *Transport) finishHandshake(span trace.Span, start time.Time, status *HandshakeStatus, err error) {
	defer span.End()
	t.metrics.handshakeDone(time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		code := CloseHandshakeFailed
		if status != nil && status.Code != 0 {
			code = status.Code
		}

		var notes outbox
		t.mu.Lock()
		if t.state == StateClosed {
			// Aborted by a close that already notified the handler and
			// chose the socket close code.
			t.mu.Unlock()
			t.logger.Debug("handshake aborted", slog.Any("error", err))
			return
		}
		t.reportErrorLocked(err, log.LayerSession, "handshake", &notes)
		t.closeLocked(code, err.Error(), &notes)
		sock := t.socket
		t.mu.Unlock()

		notes.deliver()
		t.closeSocket(sock, code, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("wcsocket.socket_id", status.ID),
		attribute.Bool("wcsocket.authenticated", status.IsAuthenticated),
	)
	span.SetStatus(codes.Ok, "")

	var notes outbox
	t.mu.Lock()
	if t.state != StateConnecting {
		t.mu.Unlock()
		return
	}
	t.setStateLocked(StateOpen, 0, "")
	notes.add(func() { t.handler.OnOpen(status) })
	t.resetPingLocked()
	t.mu.Unlock()

	notes.deliver()
}
