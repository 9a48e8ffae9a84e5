package services

import (
	"sync"
	"time"
)

// Timer is the cancellable handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run once after d. time.AfterFunc is the production value.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler keeps at most one pending close per auction id.
//
// Every Schedule call gets a new generation number. A timer whose callback
// starts after it was replaced or cancelled finds a different generation (or
// no entry) and returns without calling onFire, so Stop losing the race with
// an expiring timer never produces a second fire.
type Scheduler struct {
	mu        sync.Mutex
	pending   map[string]*pendingClose
	gen       uint64
	afterFunc AfterFunc
	onFire    func(auctionID string)
	stopped   bool
}

type pendingClose struct {
	timer Timer
	gen   uint64
}

// NewScheduler creates a Scheduler that calls onFire when an auction's timer
// expires. A nil afterFunc uses time.AfterFunc.
func NewScheduler(onFire func(auctionID string), afterFunc AfterFunc) *Scheduler {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Scheduler{
		pending:   make(map[string]*pendingClose),
		afterFunc: afterFunc,
		onFire:    onFire,
	}
}

// Schedule arms a close for auctionID after delay, replacing any pending one.
// Negative delays fire immediately.
func (s *Scheduler) Schedule(auctionID string, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.pending[auctionID]; ok {
		prev.timer.Stop()
	}

	s.gen++
	gen := s.gen
	entry := &pendingClose{gen: gen}
	s.pending[auctionID] = entry
	entry.timer = s.afterFunc(delay, func() { s.fire(auctionID, gen) })
}

// Cancel disarms the pending close for auctionID. It reports whether one existed.
func (s *Scheduler) Cancel(auctionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[auctionID]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(s.pending, auctionID)
	return true
}

// Pending reports whether a close is armed for auctionID.
func (s *Scheduler) Pending(auctionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[auctionID]
	return ok
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop disarms every timer and rejects further Schedule calls.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.pending {
		entry.timer.Stop()
		delete(s.pending, id)
	}
	s.stopped = true
}

func (s *Scheduler) fire(auctionID string, gen uint64) {
	s.mu.Lock()
	entry, ok := s.pending[auctionID]
	if !ok || entry.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, auctionID)
	s.mu.Unlock()

	s.onFire(auctionID)
}
