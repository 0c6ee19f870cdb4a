package audit

import (
	"context"
	"sync"
)

// MemoryEmitter collects events in memory. Used in tests and memory-backed
// wiring; it has no transactional coupling, so events emitted by an
// operation that later fails stay recorded.
type MemoryEmitter struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEmitter() *MemoryEmitter {
	return &MemoryEmitter{}
}

func (m *MemoryEmitter) Emit(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (m *MemoryEmitter) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event{}, m.events...)
}
