package backplane

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"pushhub/internal/domain/event"
	"pushhub/internal/infrastructure/logger"
)

// RedisOptions configure the Redis pub/sub backplane.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Channel is the pub/sub channel shared by all instances.
	Channel string
}

// Redis fans published messages out to every hub instance subscribed to the
// same channel, this one included.
type Redis struct {
	client  *redis.Client
	channel string
	logger  logger.Logger

	mu  sync.Mutex
	sub *redis.PubSub
}

var _ Backplane = (*Redis)(nil)

// NewRedis connects to and pings the Redis server. Callers that want
// graceful degradation fall back to Local when this returns an error.
func NewRedis(opts RedisOptions, log logger.Logger) (*Redis, error) {
	if opts.Channel == "" {
		opts.Channel = "pushhub:events"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	return &Redis{
		client:  client,
		channel: opts.Channel,
		logger:  log.WithField("component", "backplane"),
	}, nil
}

// Publish encodes the message and PUBLISHes it. The instance's own
// subscription receives it back, which is what triggers local delivery.
func (r *Redis) Publish(ctx context.Context, msg *event.Message) error {
	data, err := event.EncodeMessage(msg)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// Subscribe starts the receive loop. go-redis re-subscribes internally after
// connection loss, so the loop survives broker restarts.
func (r *Redis) Subscribe(ctx context.Context, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sub != nil {
		return fmt.Errorf("already subscribed to %s", r.channel)
	}

	sub := r.client.Subscribe(ctx, r.channel)
	// Confirm the subscription before declaring it live.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}
	r.sub = sub

	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				msg, err := event.DecodeMessage([]byte(m.Payload))
				if err != nil {
					r.logger.Warnf("Dropping undecodable backplane message: %v", err)
					continue
				}
				handler(msg)
			}
		}
	}()

	r.logger.Infof("Subscribed to channel %s", r.channel)
	return nil
}

// Close terminates the subscription and the client connection.
func (r *Redis) Close() error {
	r.mu.Lock()
	if r.sub != nil {
		r.sub.Close()
		r.sub = nil
	}
	r.mu.Unlock()

	return r.client.Close()
}
