package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"termtidy-web/internal/model"
	"termtidy-web/internal/repository"
)

const eventWriteTimeout = 5 * time.Second

// EventWorker accepts usage events and writes them in batches.
type EventWorker interface {
	Enqueue(event model.UsageEvent)
	Shutdown()
}

type batchEventWorker struct {
	repo          repository.EventRepository
	logger        *slog.Logger
	queue         chan model.UsageEvent
	batchSize     int
	flushInterval time.Duration
	now           func() time.Time

	mu     sync.RWMutex
	closed bool
	done   sync.WaitGroup
}

// NewEventWorker starts a worker that flushes when batchSize events are
// queued or every interval, whichever comes first.
func NewEventWorker(repo repository.EventRepository, logger *slog.Logger, bufferSize int, batchSize int, interval time.Duration) *batchEventWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	w := &batchEventWorker{
		repo:          repo,
		logger:        logger,
		queue:         make(chan model.UsageEvent, bufferSize),
		batchSize:     batchSize,
		flushInterval: interval,
		now:           time.Now,
	}
	w.done.Add(1)
	go w.run()
	return w
}

// Enqueue stamps an id and creation time when the caller left them empty
// and hands the event to the writer. It blocks while the buffer is full.
// Events arriving after Shutdown are dropped.
func (w *batchEventWorker) Enqueue(event model.UsageEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = w.now().UTC()
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logger.Warn("usage event dropped after shutdown", "event_type", event.EventType, "user_id", event.UserID)
		return
	}
	w.queue <- event
}

// Shutdown stops accepting events and waits until the queue is drained.
// Later calls return immediately.
func (w *batchEventWorker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.logger.Info("event worker stopping", "queued", len(w.queue))
	close(w.queue)
	w.mu.Unlock()

	w.done.Wait()
	w.logger.Info("event worker stopped")
}

func (w *batchEventWorker) run() {
	defer w.done.Done()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	pending := make([]model.UsageEvent, 0, w.batchSize)
	flush := func(reason string) {
		if len(pending) == 0 {
			return
		}
		w.logger.Debug("flushing usage events", "reason", reason, "size", len(pending), "queued", len(w.queue))
		w.write(pending)
		pending = make([]model.UsageEvent, 0, w.batchSize)
	}

	for {
		select {
		case event, ok := <-w.queue:
			if !ok {
				flush("shutdown")
				return
			}
			pending = append(pending, event)
			if len(pending) >= w.batchSize {
				flush("full")
			}
		case <-ticker.C:
			flush("interval")
		}
	}
}

func (w *batchEventWorker) write(events []model.UsageEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), eventWriteTimeout)
	defer cancel()

	if err := w.repo.CreateBatch(ctx, events); err != nil {
		w.logger.Error("usage event write failed", "count", len(events), "error", err)
		return
	}
	w.logger.Info("usage events written", "count", len(events))
}
