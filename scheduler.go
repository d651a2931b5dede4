package main

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// tickerFactory mirrors time.NewTicker but lets tests feed ticks by
// hand instead of waiting on the wall clock.
type tickerFactory func(d time.Duration) (<-chan time.Time, func())

func newTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type turnTimer struct {
	serial    uint64
	remaining int
}

// TurnScheduler runs one countdown per room with an active turn.
// Cancellation is race tolerant: a tick arriving after Cancel finds
// its timer gone from the map and dies silently, and each timer
// carries the turn serial it was started for, so a timeout that lost
// the race against an explicit endTurn can never conclude a turn that
// already advanced.
type TurnScheduler struct {
	mu     sync.Mutex
	timers map[string]*turnTimer

	ticker   tickerFactory
	onTick   func(roomID string, remaining int)
	onExpire func(roomID string, serial uint64)
}

func NewTurnScheduler(onTick func(string, int), onExpire func(string, uint64)) *TurnScheduler {
	return &TurnScheduler{
		timers:   make(map[string]*turnTimer),
		ticker:   newTicker,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Start replaces any running timer for the room and begins a fresh
// per-second countdown.
func (s *TurnScheduler) Start(roomID string, serial uint64, seconds int) {
	t := &turnTimer{serial: serial, remaining: seconds}
	ticks, stop := s.ticker(time.Second)
	s.mu.Lock()
	s.timers[roomID] = t
	s.mu.Unlock()
	go s.run(roomID, t, ticks, stop)
}

// Cancel discards the room's in-flight timer. Canceling a timer that
// already fired, or never existed, is a no-op.
func (s *TurnScheduler) Cancel(roomID string) {
	s.mu.Lock()
	delete(s.timers, roomID)
	s.mu.Unlock()
}

func (s *TurnScheduler) run(roomID string, t *turnTimer, ticks <-chan time.Time, stop func()) {
	defer stop()

	for range ticks {
		s.mu.Lock()
		if s.timers[roomID] != t {
			// Canceled, or replaced by a newer turn's timer.
			s.mu.Unlock()
			return
		}
		t.remaining--
		remaining := t.remaining
		expired := remaining <= 0
		if expired {
			delete(s.timers, roomID)
		}
		s.mu.Unlock()

		s.onTick(roomID, remaining)
		if expired {
			log.Info().Str("room", roomID).Msg("turn timer expired")
			s.onExpire(roomID, t.serial)
			return
		}
	}
}
