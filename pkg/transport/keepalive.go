package transport

import (
	"log/slog"

	"github.com/wcsocket/wcsocket-go/pkg/log"
	"github.com/wcsocket/wcsocket-go/pkg/socket"
	"github.com/wcsocket/wcsocket-go/pkg/wire"
)

// The server drives keep-alive: it sends the ping sentinel and expects one
// pong back. The client only watches for pings going missing.

// resetPingLocked (re)arms the ping timeout unless keep-alive is disabled.
func (t *Transport) resetPingLocked() {
	if t.config.PingTimeoutDisabled {
		return
	}
	t.pingTmr.arm(t.config.PingTimeout, t.onPingTimeout)
}

func (t *Transport) onPingTimeout(gen uint64) {
	t.forceClose(ClosePingTimeout, "", func() bool {
		if !t.pingTmr.take(gen) {
			return false
		}
		t.logger.Warn("no ping received", slog.Duration("timeout", t.config.PingTimeout))
		return true
	})
}

// handlePingLocked answers a ping with exactly one pong and restarts the
// ping timeout.
func (t *Transport) handlePingLocked(notes *outbox) {
	t.metrics.pingReceived()
	t.logControl(log.DirectionIn, log.ControlMsgPing, nil)

	if t.state == StateClosed {
		return
	}
	t.resetPingLocked()

	if t.socket.ReadyState() == socket.StateOpen {
		t.logControl(log.DirectionOut, log.ControlMsgPong, nil)
		t.sendObjectLocked(wire.PongSentinel, false, notes)
	}
}
