package hub

import (
	"sync"
	"time"
)

const defaultQueueSize = 256

// Frame is a single serialized event queued for delivery on one connection.
type Frame struct {
	// Name is the event kind, written as the SSE event field.
	Name string
	// Payload is the wire envelope, serialized once by the router.
	Payload []byte
}

// Connection is one registered push stream. The router enqueues frames into
// it without blocking; the transport handler that owns the connection drains
// Frames and writes them out.
type Connection struct {
	id        string
	owner     string
	createdAt time.Time

	queue chan Frame

	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(id, owner string, queueSize int) *Connection {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &Connection{
		id:        id,
		owner:     owner,
		createdAt: time.Now(),
		queue:     make(chan Frame, queueSize),
		done:      make(chan struct{}),
	}
}

// ID returns the unique connection identifier.
func (c *Connection) ID() string { return c.id }

// Owner returns the authenticated identity this connection belongs to.
func (c *Connection) Owner() string { return c.owner }

// CreatedAt returns when the connection was created.
func (c *Connection) CreatedAt() time.Time { return c.createdAt }

// Frames returns the queue the serving handler drains. Frames preserve the
// order in which the router enqueued them.
func (c *Connection) Frames() <-chan Frame { return c.queue }

// Done is closed when the connection is torn down, whether by its handler,
// by the router pruning it, or by hub shutdown.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Queued returns the number of frames waiting to be written out.
func (c *Connection) Queued() int { return len(c.queue) }

// TrySend enqueues a frame without blocking. It reports false when the
// connection is closed or its queue is full; the caller decides what a
// failed send means.
func (c *Connection) TrySend(frame Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.queue <- frame:
		return true
	default:
		return false
	}
}

// Close is idempotent. The queue channel itself is never closed; frames
// still buffered are dropped together with the connection.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// IsClosed reports whether the connection has been torn down.
func (c *Connection) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
