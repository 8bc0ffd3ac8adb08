package transport

import "time"

// timerSlot holds one re-armable one-shot timer. The generation changes on
// every arm and stop, so a callback that lost the race with stop can tell
// it is stale.
type timerSlot struct {
	timer *time.Timer
	gen   uint64
}

// arm (re)starts the timer. fire receives the generation it was armed with.
func (s *timerSlot) arm(d time.Duration, fire func(gen uint64)) {
	s.stop()
	gen := s.gen
	s.timer = time.AfterFunc(d, func() { fire(gen) })
}

func (s *timerSlot) stop() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// take reports whether gen is the live arming and disarms the slot if so.
func (s *timerSlot) take(gen uint64) bool {
	if s.timer == nil || s.gen != gen {
		return false
	}
	s.timer = nil
	s.gen++
	return true
}

func (s *timerSlot) armed() bool {
	return s.timer != nil
}

// outbox collects notifications produced while the transport lock is held.
// They are delivered in order once the lock is released.
type outbox []func()

func (o *outbox) add(f func()) {
	*o = append(*o, f)
}

func (o outbox) deliver() {
	for _, f := range o {
		f()
	}
}
