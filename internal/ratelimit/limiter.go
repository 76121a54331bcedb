// internal/ratelimit/limiter.go
package ratelimit

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Acquire once the limiter has been closed.
var ErrClosed = errors.New("rate limiter closed")

const ticksPerMinute = 60

// Config holds the request ceilings for one provider. A ceiling of zero or
// less means unbounded.
type Config struct {
	PerSecond int `mapstructure:"per_second"`
	PerMinute int `mapstructure:"per_minute"`
}

// Stats is a snapshot of the limiter state.
type Stats struct {
	SecondCount int    `json:"secondCount"`
	MinuteCount int    `json:"minuteCount"`
	QueueDepth  int    `json:"queueDepth"`
	Granted     uint64 `json:"granted"`
}

type waiter struct {
	ready   chan struct{}
	granted bool
}

// Limiter enforces per-second and per-minute ceilings on fixed windows.
// Callers over budget wait in a FIFO queue and are admitted in arrival
// order each time a window rolls over. There is no release: a granted slot
// is spent until its window resets.
type Limiter struct {
	name string
	cfg  Config

	mu          sync.Mutex
	secondCount int
	minuteCount int
	ticks       int
	granted     uint64
	queue       *list.List
	closed      bool

	tickSource <-chan time.Time
	ticker     *time.Ticker
	done       chan struct{}
	wg         sync.WaitGroup
}

type Option func(*Limiter)

// WithTicks drives the window boundaries from ticks instead of a 1s wall
// clock ticker. Each receive is one second boundary; every sixtieth is also
// a minute boundary.
func WithTicks(ticks <-chan time.Time) Option {
	return func(l *Limiter) {
		l.tickSource = ticks
	}
}

// New creates a limiter. A limiter with both ceilings unbounded never
// queues and starts no background goroutine.
func New(name string, cfg Config, opts ...Option) *Limiter {
	l := &Limiter{
		name:  name,
		cfg:   cfg,
		queue: list.New(),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.unbounded() {
		return l
	}

	if l.tickSource == nil {
		l.ticker = time.NewTicker(time.Second)
		l.tickSource = l.ticker.C
	}

	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Limiter) Name() string {
	return l.name
}

// Acquire blocks until a slot is available in both windows and reserves it.
// If ctx ends first the caller leaves the queue without disturbing the
// order of the callers behind it; a slot granted concurrently with the
// cancellation is kept and Acquire returns nil.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.unbounded() {
		l.granted++
		l.mu.Unlock()
		return nil
	}
	// No barging: a caller only takes a slot directly when nobody is queued.
	if l.queue.Len() == 0 && l.hasCapacity() {
		l.take()
		l.mu.Unlock()
		return nil
	}

	w := &waiter{ready: make(chan struct{})}
	elem := l.queue.PushBack(w)
	l.mu.Unlock()

	select {
	case <-w.ready:
		if !w.granted {
			return ErrClosed
		}
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		defer l.mu.Unlock()
		if w.granted {
			return nil
		}
		if !l.closed {
			l.queue.Remove(elem)
		}
		return ctx.Err()
	}
}

// Stats returns the current counters and queue depth.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		SecondCount: l.secondCount,
		MinuteCount: l.minuteCount,
		QueueDepth:  l.queue.Len(),
		Granted:     l.granted,
	}
}

// Close stops the window ticker and releases every queued caller with
// ErrClosed. Close is idempotent.
func (l *Limiter) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	for e := l.queue.Front(); e != nil; e = e.Next() {
		close(e.Value.(*waiter).ready)
	}
	l.queue.Init()
	l.mu.Unlock()

	close(l.done)
	if l.ticker != nil {
		l.ticker.Stop()
	}
	l.wg.Wait()
}

func (l *Limiter) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case _, ok := <-l.tickSource:
			if !ok {
				return
			}
			l.advance()
		}
	}
}

// advance handles one second boundary.
func (l *Limiter) advance() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ticks++
	l.secondCount = 0
	if l.ticks%ticksPerMinute == 0 {
		l.minuteCount = 0
	}
	l.drain()
}

// drain admits queued callers in order while both windows have room.
// Callers must hold l.mu.
func (l *Limiter) drain() {
	for l.queue.Len() > 0 && l.hasCapacity() {
		w := l.queue.Remove(l.queue.Front()).(*waiter)
		l.take()
		w.granted = true
		close(w.ready)
	}
}

func (l *Limiter) take() {
	l.secondCount++
	l.minuteCount++
	l.granted++
}

func (l *Limiter) hasCapacity() bool {
	if l.cfg.PerSecond > 0 && l.secondCount >= l.cfg.PerSecond {
		return false
	}
	if l.cfg.PerMinute > 0 && l.minuteCount >= l.cfg.PerMinute {
		return false
	}
	return true
}

func (l *Limiter) unbounded() bool {
	return l.cfg.PerSecond <= 0 && l.cfg.PerMinute <= 0
}
