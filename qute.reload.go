package qute

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reloader polls a ModTimeSource for the templates an engine has cached and
// drops every template whose source changed or disappeared, so the next
// GetTemplate locates and parses it again.
type Reloader struct {
	engine   *Engine
	source   ModTimeSource
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	seen    map[string]time.Time
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewReloader creates a reloader. A zero interval uses DefaultReloadInterval.
func NewReloader(engine *Engine, source ModTimeSource, interval time.Duration, logger *zap.Logger) *Reloader {
	if interval <= 0 {
		interval = DefaultReloadInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{
		engine:   engine,
		source:   source,
		interval: interval,
		logger:   logger,
		seen:     make(map[string]time.Time),
	}
}

// Start begins polling until ctx ends or Stop is called. Starting a running
// reloader does nothing.
func (r *Reloader) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	r.running = true

	r.logger.Info(LogMsgReloadStarted, zap.Duration(LogFieldInterval, r.interval))
	go r.loop(ctx, r.done)
}

// Stop stops polling and waits for the poll loop to exit.
func (r *Reloader) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.cancel()
	done := r.done
	r.mu.Unlock()

	<-done
	r.logger.Info(LogMsgReloadStopped)
}

func (r *Reloader) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}

// Check runs one poll and returns the ids that were dropped from the engine.
// The first check of an id only records its modification time.
func (r *Reloader) Check(ctx context.Context) []string {
	var dropped []string
	ids := r.engine.TemplateIDs()

	r.mu.Lock()
	defer r.mu.Unlock()

	cached := make(map[string]bool, len(ids))
	for _, id := range ids {
		cached[id] = true
		modTime, err := r.source.ModTime(ctx, id)
		if err != nil {
			if !IsStorageNotFound(err) {
				r.logger.Warn(LogMsgReloadFailed, zap.String(LogFieldTemplateID, id), zap.Error(err))
				continue
			}
			// templates put directly into the engine have no stored source
			if _, known := r.seen[id]; !known {
				continue
			}
		}

		last, known := r.seen[id]
		if !known {
			r.seen[id] = modTime
			continue
		}
		if err == nil && modTime.Equal(last) {
			continue
		}

		r.engine.RemoveTemplate(id)
		delete(r.seen, id)
		dropped = append(dropped, id)
		r.logger.Info(LogMsgReloadChanged, zap.String(LogFieldTemplateID, id))
	}

	for id := range r.seen {
		if !cached[id] {
			delete(r.seen, id)
		}
	}
	return dropped
}
