package biz

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/fx"

	"github.com/nriit/facultypubs/internal/log"
	"github.com/nriit/facultypubs/internal/objects"
	"github.com/nriit/facultypubs/internal/pkg/watcher"
	"github.com/nriit/facultypubs/internal/pkg/xcontext"
	"github.com/nriit/facultypubs/internal/server/db"
)

const (
	defaultAuditBuffer       = 256
	defaultAuditWriteTimeout = 5 * time.Second
)

// AuditStore persists and lists audit entries.
type AuditStore interface {
	Append(ctx context.Context, entry objects.AuditEntry) error
	List(ctx context.Context, limit int) ([]objects.AuditEntry, error)
}

type AuditServiceParams struct {
	fx.In

	Config AuditConfig
	Store  *db.AuditRepo
	Feed   watcher.Notifier[objects.AuditEntry]
}

func NewAuditService(params AuditServiceParams) *AuditService {
	return newAuditService(params.Config, params.Store, params.Feed)
}

type auditItem struct {
	ctx   context.Context
	entry objects.AuditEntry
}

// AuditService records mutations off the request path. Record never blocks and never fails:
// entries are queued and written by a background writer, and dropped when the queue is full.
// After an entry is stored it is published on the feed.
type AuditService struct {
	store        AuditStore
	feed         watcher.Notifier[objects.AuditEntry]
	writeTimeout time.Duration

	mu      sync.RWMutex
	queue   chan auditItem
	started bool
	stopped bool
	done    chan struct{}

	dropped atomic.Int64
}

func newAuditService(cfg AuditConfig, store AuditStore, feed watcher.Notifier[objects.AuditEntry]) *AuditService {
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = defaultAuditBuffer
	}

	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultAuditWriteTimeout
	}

	return &AuditService{
		store:        store,
		feed:         feed,
		writeTimeout: writeTimeout,
		queue:        make(chan auditItem, buffer),
		done:         make(chan struct{}),
	}
}

// Record queues an audit entry for actorEmail.
func (s *AuditService) Record(ctx context.Context, actorEmail string, action objects.AuditAction, details string) {
	item := auditItem{
		ctx: ctx,
		entry: objects.AuditEntry{
			ActorEmail: actorEmail,
			Action:     action,
			Details:    details,
			CreatedAt:  time.Now().UTC(),
		},
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		log.Warn(ctx, "audit recorder stopped, dropping entry", log.String("action", string(action)), log.String("actor", actorEmail))
		return
	}

	select {
	case s.queue <- item:
	default:
		s.dropped.Add(1)
		log.Warn(ctx, "audit queue full, dropping entry",
			log.String("action", string(action)),
			log.String("actor", actorEmail),
			log.Int64("dropped_total", s.dropped.Load()))
	}
}

// Dropped returns the number of entries dropped because the queue was full.
func (s *AuditService) Dropped() int64 {
	return s.dropped.Load()
}

// Start launches the writer.
func (s *AuditService) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.started = true

	go s.run()

	return nil
}

// Stop closes the queue and waits until the queued entries are written or ctx is done.
func (s *AuditService) Stop(ctx context.Context) error {
	s.mu.Lock()

	if s.stopped {
		s.mu.Unlock()
		return nil
	}

	s.stopped = true
	close(s.queue)
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AuditService) run() {
	defer close(s.done)

	for item := range s.queue {
		s.write(item)
	}
}

func (s *AuditService) write(item auditItem) {
	ctx, cancel := xcontext.DetachWithTimeout(item.ctx, s.writeTimeout)
	defer cancel()

	if err := s.store.Append(ctx, item.entry); err != nil {
		log.Error(ctx, "failed to write audit entry",
			log.String("action", string(item.entry.Action)),
			log.String("actor", item.entry.ActorEmail),
			log.String("details", item.entry.Details),
			log.Cause(err))

		return
	}

	if s.feed == nil {
		return
	}

	if err := s.feed.Notify(ctx, item.entry); err != nil {
		log.Warn(ctx, "failed to publish audit entry", log.String("action", string(item.entry.Action)), log.Cause(err))
	}
}

// List returns the newest entries first. The limit is clamped to 1..500.
func (s *AuditService) List(ctx context.Context, limit int) ([]objects.AuditEntry, error) {
	switch {
	case limit <= 0:
		limit = 100
	case limit > 500:
		limit = 500
	}

	entries, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, storeError(err)
	}

	return entries, nil
}

// Watch subscribes to entries as they are stored.
func (s *AuditService) Watch() (<-chan objects.AuditEntry, func()) {
	return s.feed.Watch()
}
