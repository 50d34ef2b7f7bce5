package watcher

import (
	"context"
	"sync"
)

type MemoryWatcherOptions struct {
	Buffer int
}

type memoryWatcher[T any] struct {
	mu     sync.Mutex
	subs   subscribers[T]
	buffer int
}

func NewMemoryWatcher[T any](opts MemoryWatcherOptions) Notifier[T] {
	return &memoryWatcher[T]{buffer: bufferOrDefault(opts.Buffer)}
}

func (w *memoryWatcher[T]) Watch() (<-chan T, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, ch := w.subs.add(w.buffer)

	return ch, func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		w.subs.remove(id)
	}
}

func (w *memoryWatcher[T]) Notify(_ context.Context, v T) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.subs.broadcast(v)

	return nil
}
