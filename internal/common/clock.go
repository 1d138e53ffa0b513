package common

import (
	"sync"
	"time"
)

// Source of time for everything that waits or ticks
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock backed by the time package
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct {
	ticker *time.Ticker
}

func (t systemTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t systemTicker) Stop() {
	t.ticker.Stop()
}

// Clock that only moves when told to. Tickers and timers created
// from it fire while advancing, dropping ticks nobody was ready to read,
// in the same way time.Ticker does
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
	timers  []manualTimer
}

type manualTicker struct {
	clock    *ManualClock
	c        chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
}

type manualTimer struct {
	at time.Time
	c  chan time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (clock *ManualClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *ManualClock) After(d time.Duration) <-chan time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	c := make(chan time.Time, 1)
	if d <= 0 {
		c <- clock.now
		return c
	}
	clock.timers = append(clock.timers, manualTimer{clock.now.Add(d), c})
	return c
}

func (clock *ManualClock) NewTicker(d time.Duration) Ticker {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	ticker := &manualTicker{clock: clock, c: make(chan time.Time, 1), interval: d, next: clock.now.Add(d)}
	clock.tickers = append(clock.tickers, ticker)
	return ticker
}

// Move the clock forward, firing every ticker and timer that is due
func (clock *ManualClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()

	clock.now = clock.now.Add(d)

	for _, ticker := range clock.tickers {
		for !ticker.stopped && !ticker.next.After(clock.now) {
			select {
			case ticker.c <- ticker.next:
			default:
			}
			ticker.next = ticker.next.Add(ticker.interval)
		}
	}

	pending := clock.timers[:0]
	for _, timer := range clock.timers {
		if timer.at.After(clock.now) {
			pending = append(pending, timer)
			continue
		}
		timer.c <- clock.now
	}
	clock.timers = pending
}

func (t *manualTicker) C() <-chan time.Time {
	return t.c
}

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
