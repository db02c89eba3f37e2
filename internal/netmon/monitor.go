// Package netmon observes network reachability of the remote API and emits
// edge-triggered online/offline transition events.
//
// Reachability is established by probing the remote health endpoint on a
// fixed interval. Transitions to offline are confirmed with a short retry
// sequence so that a single dropped probe does not flip the state, and
// events are only emitted on edges, so rapid flapping cannot fire the sync
// engine more than once per offline-to-online transition.
package netmon

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/noa10/mataresit-app-sub003/internal/logger"
)

// State is the reachability of the remote API.
type State string

const (
	StateOnline  State = "online"
	StateOffline State = "offline"
)

// Event is one reachability transition.
type Event struct {
	State State
	At    time.Time
}

// Prober checks reachability of the remote. Any error means unreachable.
// The adapter's health probe satisfies this interface.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor polls a Prober and broadcasts reachability edges to subscribers.
// The monitor starts in the offline state; the first successful probe emits
// an online event.
type Monitor struct {
	prober   Prober
	interval time.Duration
	log      *logger.Logger

	online atomic.Bool

	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// New constructs a Monitor probing at the given interval (default 30s).
func New(prober Prober, interval time.Duration, log *logger.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		log:      log,
		subs:     make(map[int]chan Event),
	}
}

// IsOnline returns the current reachability belief.
func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

// Subscribe returns a channel of transition events and a cancel function.
// The channel is buffered; a subscriber that falls behind loses events
// rather than blocking the monitor. Events are edges only, never repeats of
// the current state.
func (m *Monitor) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan Event, 4)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Run probes until ctx is cancelled. It performs one immediate probe so the
// process does not wait a full interval to learn its initial state.
func (m *Monitor) Run(ctx context.Context) {
	m.check(ctx)

	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	if err := m.probe(ctx); err != nil {
		if m.online.CompareAndSwap(true, false) {
			m.log.Warn().Err(err).Msg("connectivity lost")
			m.broadcast(Event{State: StateOffline, At: time.Now()})
		}
		return
	}

	if m.online.CompareAndSwap(false, true) {
		m.log.Info().Msg("connectivity restored")
		m.broadcast(Event{State: StateOnline, At: time.Now()})
	}
}

// probe pings the remote. While online, a failure is retried twice with
// backoff before the monitor accepts the offline verdict, so one lost packet
// does not flap the state.
func (m *Monitor) probe(ctx context.Context) error {
	if !m.online.Load() {
		return m.prober.Ping(ctx)
	}

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(m.prober.Ping(ctx))
	})
}

func (m *Monitor) broadcast(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is full; it will observe the state via IsOnline.
		}
	}
}
