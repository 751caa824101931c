// Package backplane propagates published events between hub instances.
package backplane

import (
	"context"
	"sync"

	"pushhub/internal/domain/event"
)

// Handler receives every message published to the backplane, including
// messages published by this instance.
type Handler func(msg *event.Message)

// Backplane is the seam between a single hub and its peers. Implementations
// deliver self-published messages back through the subscription, so the hub
// has exactly one delivery path regardless of how many instances run.
type Backplane interface {
	Publish(ctx context.Context, msg *event.Message) error
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}

// Local is the single-process backplane: Publish hands the message to the
// subscribed handler synchronously. It is always available.
type Local struct {
	mu      sync.RWMutex
	handler Handler
}

var _ Backplane = (*Local)(nil)

func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Publish(ctx context.Context, msg *event.Message) error {
	l.mu.RLock()
	handler := l.handler
	l.mu.RUnlock()

	if handler != nil {
		handler(msg)
	}
	return nil
}

func (l *Local) Subscribe(ctx context.Context, handler Handler) error {
	l.mu.Lock()
	l.handler = handler
	l.mu.Unlock()
	return nil
}

func (l *Local) Close() error { return nil }
