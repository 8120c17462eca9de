package syncer

import (
	"context"
	"log"
	"sync"
	"time"
)

// Poller опрашивает один домен данных на фиксированном интервале (3–10 с
// в дашбордах). Ошибка выборки пишется в лог, предыдущий снимок остаётся —
// интерфейс терпит устаревшие данные, политика ретраев не нужна.
type Poller[T any] struct {
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)
	onUpdate func(T)

	mu       sync.RWMutex
	snapshot T
	ok       bool
}

// NewPoller создаёт опросчик. onUpdate может быть nil; вызывается после
// каждой удачной выборки, до публикации снимка.
func NewPoller[T any](interval time.Duration, fetch func(ctx context.Context) (T, error), onUpdate func(T)) *Poller[T] {
	return &Poller[T]{
		interval: interval,
		fetch:    fetch,
		onUpdate: onUpdate,
	}
}

// Run блокируется до отмены ctx: сразу одна выборка, дальше по тикеру.
func (p *Poller[T]) Run(ctx context.Context) {
	p.refresh(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller[T]) refresh(ctx context.Context) {
	snap, err := p.fetch(ctx)
	if err != nil {
		log.Printf("syncer: poll: %v", err)
		return
	}
	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
	p.mu.Lock()
	p.snapshot = snap
	p.ok = true
	p.mu.Unlock()
}

// Snapshot — последний удачный снимок; ok=false, пока выборок не было.
func (p *Poller[T]) Snapshot() (T, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot, p.ok
}
