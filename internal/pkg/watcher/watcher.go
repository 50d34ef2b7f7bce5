package watcher

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Watcher is a best-effort stream of events. Events are dropped for subscribers that
// do not keep up, so it suits live feeds and reload signals, not durable delivery.
type Watcher[T any] interface {
	// Watch subscribes and returns the event channel together with a stop function.
	// The stop function must be called exactly once; it closes the channel.
	Watch() (<-chan T, func())
}

// Notifier is a Watcher that can also publish events.
type Notifier[T any] interface {
	Watcher[T]

	Notify(ctx context.Context, v T) error
}

// New builds a notifier for the configured mode. The redis client is only required in redis mode.
func New[T any](cfg Config, client *redis.Client) (Notifier[T], error) {
	switch cfg.Mode {
	case ModeRedis:
		if client == nil {
			return nil, errors.New("watcher: redis mode requires a redis client")
		}

		return NewRedisWatcher[T](client, RedisWatcherOptions{
			Channel: cfg.Channel,
			Buffer:  cfg.Buffer,
		})
	case "", ModeMemory:
		return NewMemoryWatcher[T](MemoryWatcherOptions{Buffer: cfg.Buffer}), nil
	default:
		return nil, errors.New("watcher: unknown mode " + cfg.Mode)
	}
}

type subscribers[T any] struct {
	nextID uint64
	subs   map[uint64]chan T
}

func (s *subscribers[T]) add(buffer int) (uint64, chan T) {
	if s.subs == nil {
		s.subs = make(map[uint64]chan T)
	}

	id := s.nextID
	s.nextID++

	ch := make(chan T, buffer)
	s.subs[id] = ch

	return id, ch
}

func (s *subscribers[T]) remove(id uint64) bool {
	ch, ok := s.subs[id]
	if !ok {
		return false
	}

	delete(s.subs, id)
	close(ch)

	return true
}

func (s *subscribers[T]) broadcast(v T) {
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

func bufferOrDefault(buffer int) int {
	if buffer <= 0 {
		return 1
	}

	return buffer
}
