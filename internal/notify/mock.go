package notify

import (
	"context"
	"sync"
)

// Mock records sent events for tests. Set Err to make Send fail.
type Mock struct {
	mu   sync.Mutex
	sent []Event
	Err  error
}

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{}
}

// Send records evt unless Err is set.
func (m *Mock) Send(ctx context.Context, evt Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, evt)
	return nil
}

// SentCount returns the number of recorded events.
func (m *Mock) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// LastSent returns the most recent event, if any.
func (m *Mock) LastSent() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Event{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// AllSent returns a copy of every recorded event.
func (m *Mock) AllSent() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.sent))
	copy(out, m.sent)
	return out
}
