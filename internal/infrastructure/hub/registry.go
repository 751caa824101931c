package hub

import (
	"sync"

	"pushhub/internal/domain/event"
)

// Registry is the concurrency-safe set of live connections.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Connection),
	}
}

// Register adds a connection. It never waits on delivery work.
func (r *Registry) Register(conn *Connection) {
	r.mu.Lock()
	r.conns[conn.ID()] = conn
	r.mu.Unlock()
}

// Unregister removes and closes the connection with the given id. It is
// idempotent: unknown ids are a no-op. It reports whether a connection was
// actually removed.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	conn, exists := r.conns[id]
	if exists {
		delete(r.conns, id)
	}
	r.mu.Unlock()

	if exists {
		conn.Close()
	}
	return exists
}

// Get returns a connection by id.
func (r *Registry) Get(id string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.conns[id]
	return conn, exists
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Connections returns a snapshot of all registered connections.
func (r *Registry) Connections() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// ForEachMatching invokes fn for every connection inside the scope. The
// matching set is snapshotted under the read lock and fn runs outside it,
// so fn may unregister connections and registration is never delayed by
// slow delivery work.
func (r *Registry) ForEachMatching(scope event.Scope, fn func(*Connection)) {
	r.mu.RLock()
	matched := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		if scope.Matches(conn.Owner()) {
			matched = append(matched, conn)
		}
	}
	r.mu.RUnlock()

	for _, conn := range matched {
		fn(conn)
	}
}

// Drain removes every connection and returns the removed set, leaving the
// registry empty. Used on shutdown.
func (r *Registry) Drain() []*Connection {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.conns = make(map[string]*Connection)
	r.mu.Unlock()

	return conns
}
