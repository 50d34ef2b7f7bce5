package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/nriit/facultypubs/internal/log"
)

type RedisWatcherOptions struct {
	Channel string
	Buffer  int
}

// redisWatcher holds one pub/sub subscription while at least one local subscriber exists.
type redisWatcher[T any] struct {
	client  *redis.Client
	channel string
	buffer  int

	mu     sync.Mutex
	subs   subscribers[T]
	active int
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func NewRedisWatcher[T any](client *redis.Client, opts RedisWatcherOptions) (Notifier[T], error) {
	if client == nil {
		return nil, errors.New("watcher: redis client is required")
	}

	if opts.Channel == "" {
		return nil, errors.New("watcher: redis channel is required")
	}

	return &redisWatcher[T]{
		client:  client,
		channel: opts.Channel,
		buffer:  bufferOrDefault(opts.Buffer),
	}, nil
}

func (w *redisWatcher[T]) Watch() (<-chan T, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, ch := w.subs.add(w.buffer)

	w.active++
	if w.active == 1 {
		w.subscribeLocked()
	}

	return ch, func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		if !w.subs.remove(id) {
			return
		}

		w.active--
		if w.active == 0 {
			w.unsubscribeLocked()
		}
	}
}

func (w *redisWatcher[T]) Notify(ctx context.Context, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return w.client.Publish(ctx, w.channel, payload).Err()
}

func (w *redisWatcher[T]) subscribeLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	ps := w.client.Subscribe(ctx, w.channel)
	// Wait for the subscription confirmation so events published right after Watch are seen.
	_, _ = ps.Receive(ctx)
	w.pubsub = ps

	go w.receive(ctx, ps)
}

func (w *redisWatcher[T]) receive(ctx context.Context, ps *redis.PubSub) {
	for {
		msg, err := ps.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return
			}

			log.Warn(ctx, "redis watcher receive failed", log.String("channel", w.channel), log.Cause(err))

			continue
		}

		var v T
		if err := json.Unmarshal([]byte(msg.Payload), &v); err != nil {
			log.Warn(ctx, "redis watcher decode failed", log.String("channel", w.channel), log.Cause(err))
			continue
		}

		w.mu.Lock()
		w.subs.broadcast(v)
		w.mu.Unlock()
	}
}

func (w *redisWatcher[T]) unsubscribeLocked() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	if w.pubsub != nil {
		_ = w.pubsub.Close()
		w.pubsub = nil
	}
}
