package hub

import (
	"context"
	"errors"
	"sync/atomic"

	"pushhub/internal/domain/event"
	"pushhub/internal/infrastructure/backplane"
	"pushhub/internal/infrastructure/logger"
)

// Stats counts router activity since startup.
type Stats struct {
	Published int64 `json:"published"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
	Pruned    int64 `json:"pruned"`
}

// Router fans published events out to scope-matched connections.
type Router struct {
	registry  *Registry
	backplane backplane.Backplane // nil means local-only delivery
	logger    logger.Logger

	published atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	pruned    atomic.Int64
}

func NewRouter(registry *Registry, log logger.Logger) *Router {
	return &Router{
		registry: registry,
		logger:   log.WithField("component", "router"),
	}
}

// setBackplane is called during hub startup once the subscription is live.
func (r *Router) setBackplane(bp backplane.Backplane) {
	r.backplane = bp
}

// Publish hands the message to the backplane; local delivery happens when
// the message comes back through the subscription, keeping one delivery
// path for single- and multi-instance setups alike. A backplane failure
// degrades to direct local delivery and is not an error for the caller.
func (r *Router) Publish(ctx context.Context, msg *event.Message) error {
	if msg == nil || msg.Event == nil {
		return errors.New("nil message")
	}

	r.published.Add(1)

	if r.backplane == nil {
		r.Deliver(msg)
		return nil
	}

	if err := r.backplane.Publish(ctx, msg); err != nil {
		r.logger.Warnf("Backplane publish failed, delivering locally: %v", err)
		r.Deliver(msg)
	}
	return nil
}

// Deliver fans the message out to local connections. It is also the
// backplane subscription callback; it never publishes back, so messages
// cannot loop between instances. The event is serialized once per call, not
// once per recipient, and a connection that cannot take the frame is pruned
// so one slow client never stalls the others.
func (r *Router) Deliver(msg *event.Message) {
	if msg == nil || msg.Event == nil {
		return
	}

	payload, err := event.Marshal(msg.Event)
	if err != nil {
		r.logger.Errorf("Skipping unserializable %s event: %v", msg.Event.Type(), err)
		return
	}

	frame := Frame{Name: string(msg.Event.Type()), Payload: payload}

	var delivered int64
	r.registry.ForEachMatching(msg.Scope, func(conn *Connection) {
		if conn.TrySend(frame) {
			delivered++
			return
		}

		r.dropped.Add(1)
		if r.registry.Unregister(conn.ID()) {
			r.pruned.Add(1)
			r.logger.Warnf("Connection %s cannot keep up, dropping it (owner: %s)", conn.ID(), conn.Owner())
		}
	})

	r.delivered.Add(delivered)
	r.logger.Debugf("Delivered %s to %d connections (scope: %s)", msg.Event.Type(), delivered, msg.Scope)
}

// Stats returns a snapshot of the router counters.
func (r *Router) Stats() Stats {
	return Stats{
		Published: r.published.Load(),
		Delivered: r.delivered.Load(),
		Dropped:   r.dropped.Load(),
		Pruned:    r.pruned.Load(),
	}
}
