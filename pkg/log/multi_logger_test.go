package log

import (
	"sync"
	"testing"
)

type captureLogger struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureLogger) Log(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureLogger) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := &captureLogger{}, &captureLogger{}
	m := NewMultiLogger(a, nil, b)

	if m.Len() != 2 {
		t.Errorf("Len: got %d, want 2", m.Len())
	}

	m.Log(Event{ConnectionID: "x"})
	m.Log(Event{ConnectionID: "y"})

	if a.count() != 2 || b.count() != 2 {
		t.Errorf("counts: a=%d b=%d, want 2 each", a.count(), b.count())
	}
	if a.events[1].ConnectionID != "y" {
		t.Errorf("order not preserved: %+v", a.events)
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	NewMultiLogger().Log(Event{})
}
