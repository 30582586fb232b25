// Package scheduler drives refresh cycles: resolve a credential, fetch the
// recent usage window, normalize it and publish one PresentationState.
package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/janekbaraniewski/cursorusage/internal/core"
	"github.com/janekbaraniewski/cursorusage/internal/cursorapi"
	"github.com/janekbaraniewski/cursorusage/internal/usage"
)

const (
	DefaultLookback     = 24 * time.Hour
	DefaultCycleTimeout = 15 * time.Second
)

type CredentialSource interface {
	Resolve(ctx context.Context) (string, bool)
}

type EventFetcher interface {
	FetchUsageEvents(ctx context.Context, credential string, window cursorapi.Window) ([]gjson.Result, error)
}

type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseLoading      Phase = "loading"
	PhaseReady        Phase = "ready"
	PhaseNoCredential Phase = "no_credential"
	PhaseError        Phase = "error"
)

type Option func(*Scheduler)

// WithInterval sets the periodic refresh interval. Zero or negative disables
// the timer; explicit refreshes still work.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = max(d, 0) }
}

func WithLookback(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.lookback = d
		}
	}
}

// WithCycleTimeout bounds the usage request of each cycle.
func WithCycleTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

type subscriber struct {
	id int
	fn func(core.PresentationState)
}

type Scheduler struct {
	source  CredentialSource
	fetcher EventFetcher

	lookback time.Duration
	timeout  time.Duration
	now      func() time.Time

	// running guards against overlapping cycles.
	running atomic.Bool

	mu       sync.RWMutex
	state    core.PresentationState
	phase    Phase
	interval time.Duration
	ctx      context.Context // set by Start; nil until started
	timer    *time.Timer
	gen      uint64 // bumped on every rearm; stale timers compare and bail
	stopped  bool
	subs     []subscriber
	nextSub  int
}

func New(source CredentialSource, fetcher EventFetcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:   source,
		fetcher:  fetcher,
		lookback: DefaultLookback,
		timeout:  DefaultCycleTimeout,
		now:      time.Now,
		state:    core.LoadingState(),
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the initial cycle in the background and arms the periodic timer.
// Cycles triggered later use ctx as their parent.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.ctx != nil || s.stopped {
		s.mu.Unlock()
		return
	}
	s.ctx = ctx
	s.armLocked()
	s.mu.Unlock()

	go s.Refresh(ctx)

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			s.Stop()
		}()
	}
}

// Stop cancels the timer. In-flight cycles finish and still publish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.disarmLocked()
}

// SetInterval cancels the pending timer and rearms with d. Zero disables.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d = max(d, 0)
	if d != s.interval {
		log.Printf("[scheduler] refresh interval %s -> %s", s.interval, d)
	}
	s.interval = d
	s.armLocked()
}

func (s *Scheduler) Interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// TriggerRefresh starts a cycle in the background. It is a no-op while a
// cycle is already running.
func (s *Scheduler) TriggerRefresh() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	go s.Refresh(ctx)
}

// Refresh runs one cycle synchronously. It returns false without doing any
// work if another cycle is in flight.
func (s *Scheduler) Refresh(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("[scheduler] refresh already in flight, skipping")
		return false
	}
	defer s.running.Store(false)

	s.mu.Lock()
	s.phase = PhaseLoading
	s.mu.Unlock()

	state, phase := s.cycle(ctx)
	s.publish(state, phase)
	return true
}

func (s *Scheduler) cycle(ctx context.Context) (core.PresentationState, Phase) {
	cred, ok := s.source.Resolve(ctx)
	now := s.now()
	if !ok {
		log.Printf("[scheduler] no credential available")
		return core.PresentationState{Mode: core.ModeNoToken, UpdatedAt: now}, PhaseNoCredential
	}

	// Only the request is bounded; resolution may wait on the user.
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.fetcher.FetchUsageEvents(fetchCtx, cred, cursorapi.LastWindow(now, s.lookback))
	if err != nil {
		log.Printf("[scheduler] fetch failed: %v", err)
		return core.PresentationState{Mode: core.ModeError, UpdatedAt: now}, PhaseError
	}

	events := usage.NormalizeAll(records)
	state := core.PresentationState{
		Mode:      core.ModeReady,
		Recent:    events,
		UpdatedAt: now,
	}
	if len(events) > 0 {
		latest := events[0]
		state.Latest = &latest
	}
	log.Printf("[scheduler] fetched %d events", len(events))
	return state, PhaseReady
}

func (s *Scheduler) publish(state core.PresentationState, phase Phase) {
	s.mu.Lock()
	s.state = state
	s.phase = phase
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(state.Clone())
	}
}

// Subscribe registers fn to receive every published state. The returned
// function removes the subscription.
func (s *Scheduler) Subscribe(fn func(core.PresentationState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = lo.Reject(s.subs, func(sub subscriber, _ int) bool { return sub.id == id })
	}
}

// State returns the last published state.
func (s *Scheduler) State() core.PresentationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Scheduler) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Scheduler) Refreshing() bool {
	return s.running.Load()
}

func (s *Scheduler) disarmLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) armLocked() {
	s.disarmLocked()
	if s.interval <= 0 || s.ctx == nil || s.stopped {
		return
	}
	s.scheduleLocked(s.gen)
}

func (s *Scheduler) scheduleLocked(gen uint64) {
	s.timer = time.AfterFunc(s.interval, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.stopped {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.scheduleLocked(gen)
	s.mu.Unlock()

	s.Refresh(ctx)
}
