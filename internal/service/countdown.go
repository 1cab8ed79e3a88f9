package service

import (
	"context"
	"sync"
	"time"

	"order-sla-bot/internal/logging"
	"order-sla-bot/pkg/clock"

	"github.com/sirupsen/logrus"
)

// RenderFunc draws one frame of a live countdown at now. Returning done stops the watch.
type RenderFunc func(ctx context.Context, now time.Time) (done bool, err error)

type watch struct {
	cancel context.CancelFunc
}

// CountdownManager runs one ticker per watched key. Every tick renders from a
// fresh instant; no frame reuses an earlier result.
type CountdownManager struct {
	ctx    context.Context
	cancel context.CancelFunc
	clock  clock.Clock
	tick   time.Duration
	ttl    time.Duration

	mu      sync.Mutex
	watches map[string]*watch
	wg      sync.WaitGroup

	logger *logrus.Logger
}

// NewCountdownManager returns a manager whose tickers all stop when ctx is cancelled.
// A ttl of zero lets watches run until stopped.
func NewCountdownManager(ctx context.Context, clk clock.Clock, tick, ttl time.Duration) *CountdownManager {
	ctx, cancel := context.WithCancel(ctx)
	return &CountdownManager{
		ctx:     ctx,
		cancel:  cancel,
		clock:   clk,
		tick:    tick,
		ttl:     ttl,
		watches: make(map[string]*watch),
		logger:  logging.New(),
	}
}

// Start begins a watch under key, replacing any watch already running under it.
func (m *CountdownManager) Start(key string, render RenderFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return
	}
	if old, ok := m.watches[key]; ok {
		old.cancel()
	}

	ctx, cancel := context.WithCancel(m.ctx)
	if m.ttl > 0 {
		ctx, cancel = withTTL(ctx, cancel, m.ttl)
	}
	w := &watch{cancel: cancel}
	m.watches[key] = w

	m.wg.Add(1)
	go m.run(ctx, key, w, render)

	m.logger.WithFields(logrus.Fields{"key": key, "tick": m.tick, "ttl": m.ttl}).Debug("Countdown started")
}

func withTTL(ctx context.Context, cancel context.CancelFunc, ttl time.Duration) (context.Context, context.CancelFunc) {
	ttlCtx, ttlCancel := context.WithTimeout(ctx, ttl)
	return ttlCtx, func() {
		ttlCancel()
		cancel()
	}
}

// Stop ends the watch under key. It reports whether one was running.
func (m *CountdownManager) Stop(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.watches[key]
	if !ok {
		return false
	}
	w.cancel()
	delete(m.watches, key)
	return true
}

// StopAll ends every watch and waits for the tickers to exit. The manager accepts no new watches afterwards.
func (m *CountdownManager) StopAll() {
	m.mu.Lock()
	m.cancel()
	for key, w := range m.watches {
		w.cancel()
		delete(m.watches, key)
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("All countdowns stopped")
}

// Watching reports whether a watch runs under key.
func (m *CountdownManager) Watching(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.watches[key]
	return ok
}

// Active returns the number of running watches.
func (m *CountdownManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watches)
}

func (m *CountdownManager) run(ctx context.Context, key string, w *watch, render RenderFunc) {
	defer m.wg.Done()
	defer m.release(key, w)

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	// First frame right away.
	if m.frame(ctx, key, render) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("key", key).Debug("Countdown stopped")
			return
		case <-ticker.C:
			if m.frame(ctx, key, render) {
				return
			}
		}
	}
}

func (m *CountdownManager) frame(ctx context.Context, key string, render RenderFunc) bool {
	if ctx.Err() != nil {
		return true
	}

	done, err := render(ctx, m.clock.Now())
	if err != nil {
		m.logger.WithError(err).WithField("key", key).Warn("Countdown render failed, stopping")
		return true
	}
	return done
}

// release drops the registry entry unless it was already replaced by a newer watch.
func (m *CountdownManager) release(key string, w *watch) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w.cancel()
	if current, ok := m.watches[key]; ok && current == w {
		delete(m.watches, key)
	}
}
