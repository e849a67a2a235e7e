package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/xtding233/bolillero/internal/draw"
)

const (
	defaultSaveTimeout = 5 * time.Second
	saveQueueSize      = 16
)

// BestEffort wraps a Store so that persistence failures are logged and
// never reach the draw. Saves run on one background worker in call order.
type BestEffort struct {
	inner   Store
	log     *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan draw.Config
	wg     sync.WaitGroup
}

// NewBestEffort starts the save worker. Call Close to flush and stop it.
func NewBestEffort(inner Store, log *slog.Logger) *BestEffort {
	if log == nil {
		log = slog.Default()
	}
	b := &BestEffort{
		inner:   inner,
		log:     log,
		timeout: defaultSaveTimeout,
		queue:   make(chan draw.Config, saveQueueSize),
	}
	b.wg.Add(1)
	go b.worker()
	return b
}

func (b *BestEffort) worker() {
	defer b.wg.Done()
	for cfg := range b.queue {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		if err := b.inner.SaveDrawState(ctx, cfg); err != nil {
			b.log.Error("save draw state failed", "category", cfg.Key, "error", err)
		} else {
			b.log.Debug("draw state saved", "category", cfg.Key)
		}
		cancel()
	}
}

// Save queues cfg without blocking. When the queue is full the save is dropped and logged.
func (b *BestEffort) Save(cfg draw.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		b.log.Error("save draw state dropped", "category", cfg.Key, "error", "store closed")
		return
	}
	select {
	case b.queue <- cfg.Clone():
	default:
		b.log.Error("save draw state dropped", "category", cfg.Key, "error", "save queue full")
	}
}

// Load returns the saved state; ok is false when none exists or loading failed.
func (b *BestEffort) Load(ctx context.Context, key string) (draw.Config, bool) {
	cfg, err := b.inner.LoadDrawState(ctx, key)
	switch {
	case err == nil:
		return cfg, true
	case errors.Is(err, ErrNotFound):
		return draw.Config{}, false
	default:
		b.log.Error("load draw state failed", "category", key, "error", err)
		return draw.Config{}, false
	}
}

// Categories returns the persisted definitions or the built-in list.
func (b *BestEffort) Categories(ctx context.Context) []CategoryDefinition {
	defs, err := b.inner.LoadCategoryDefinitions(ctx)
	if err != nil {
		b.log.Error("load category definitions failed", "error", err)
		return DefaultCategories()
	}
	if len(defs) == 0 {
		return DefaultCategories()
	}
	return defs
}

// Close drains pending saves and closes the wrapped store.
func (b *BestEffort) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	b.wg.Wait()
	return b.inner.Close()
}
