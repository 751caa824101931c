package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"pushhub/internal/domain/event"
	"pushhub/internal/infrastructure/backplane"
	"pushhub/internal/infrastructure/logger"
)

const defaultSweepInterval = 30 * time.Second

// ErrNotRunning is returned by operations that need a started hub.
var ErrNotRunning = errors.New("hub is not running")

// Options tune the hub.
type Options struct {
	// QueueSize bounds each connection's pending-frame queue.
	QueueSize int
	// SweepInterval is how often connections that closed without being
	// unregistered are removed from the registry.
	SweepInterval time.Duration
}

func (o *Options) applyDefaults() {
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = defaultSweepInterval
	}
}

// Hub ties the registry and router together and owns their lifecycle.
type Hub struct {
	opts      Options
	registry  *Registry
	router    *Router
	backplane backplane.Backplane

	running   bool
	runningMu sync.RWMutex

	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a hub. A nil backplane keeps delivery local to this instance.
func New(opts Options, bp backplane.Backplane, log logger.Logger) *Hub {
	opts.applyDefaults()

	registry := NewRegistry()
	return &Hub{
		opts:      opts,
		registry:  registry,
		router:    NewRouter(registry, log),
		backplane: bp,
		logger:    log.WithField("component", "hub"),
	}
}

// Start subscribes local delivery to the backplane and begins sweeping. If
// the backplane subscription fails the hub still starts, serving local
// connections only.
func (h *Hub) Start(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if h.running {
		return errors.New("hub is already running")
	}

	h.ctx, h.cancel = context.WithCancel(ctx)

	if h.backplane != nil {
		if err := h.backplane.Subscribe(h.ctx, h.router.Deliver); err != nil {
			h.logger.Warnf("Backplane unavailable, continuing with local delivery only: %v", err)
		} else {
			h.router.setBackplane(h.backplane)
		}
	}

	h.running = true
	go h.run()

	h.logger.Info("Hub started")
	return nil
}

// Stop closes the backplane and every connection. Serving handlers observe
// their connection's Done channel and exit; their deferred unregisters then
// find an already-empty registry.
func (h *Hub) Stop(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if !h.running {
		return nil
	}

	h.cancel()

	if h.backplane != nil {
		if err := h.backplane.Close(); err != nil {
			h.logger.Errorf("Failed to close backplane: %v", err)
		}
	}

	conns := h.registry.Drain()
	for _, conn := range conns {
		conn.Close()
	}

	h.running = false
	h.logger.Infof("Hub stopped, closed %d connections", len(conns))
	return nil
}

// IsRunning returns true if the hub is currently running.
func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}

// NewConnection creates an unregistered connection for the given owner.
func (h *Hub) NewConnection(owner string) *Connection {
	return newConnection(uuid.NewString(), owner, h.opts.QueueSize)
}

// Register adds a connection to the registry. The connection starts
// receiving scope-matched events immediately. The running check and the
// insert happen under the same lock, so Stop cannot drain the registry
// between them and strand a registered connection in a stopped hub.
func (h *Hub) Register(conn *Connection) error {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()

	if !h.running {
		return ErrNotRunning
	}

	h.registry.Register(conn)
	h.logger.Infof("Connection %s registered (owner: %s)", conn.ID(), conn.Owner())
	return nil
}

// Unregister removes and closes a connection. Safe to call more than once,
// and after the router has already pruned the connection.
func (h *Hub) Unregister(id string) {
	if h.registry.Unregister(id) {
		h.logger.Infof("Connection %s unregistered", id)
	}
}

// Publish addresses an event to a scope. Delivery is best-effort: the error
// only reports publisher-side problems, never slow or dead consumers.
func (h *Hub) Publish(ctx context.Context, ev event.Event, scope event.Scope) error {
	if !h.IsRunning() {
		return ErrNotRunning
	}

	return h.router.Publish(ctx, &event.Message{Event: ev, Scope: scope})
}

// GetConnection returns a connection by id.
func (h *Hub) GetConnection(id string) (*Connection, bool) {
	return h.registry.Get(id)
}

// Connections returns a snapshot of all registered connections.
func (h *Hub) Connections() []*Connection {
	return h.registry.Connections()
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	return h.registry.Len()
}

// Stats returns the router's delivery counters.
func (h *Hub) Stats() Stats {
	return h.router.Stats()
}

// run periodically sweeps connections whose handler died without
// unregistering them.
func (h *Hub) run() {
	ticker := time.NewTicker(h.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.sweepClosed()
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) sweepClosed() {
	for _, conn := range h.registry.Connections() {
		if conn.IsClosed() && h.registry.Unregister(conn.ID()) {
			h.logger.Infof("Swept closed connection %s", conn.ID())
		}
	}
}
