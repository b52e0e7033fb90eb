package service

import (
	"sync/atomic"
	"time"
)

// State aggregates liveness facts from the quote stream and the scheduler.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastQuoteUnix atomic.Int64 // unix seconds
	lastBatchUnix atomic.Int64
	batches       atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) TouchQuote(t time.Time) { s.lastQuoteUnix.Store(t.Unix()) }
func (s *State) LastQuote() time.Time   { return unixOrZero(s.lastQuoteUnix.Load()) }

func (s *State) TouchBatch(t time.Time) {
	s.lastBatchUnix.Store(t.Unix())
	s.batches.Add(1)
}
func (s *State) LastBatch() time.Time { return unixOrZero(s.lastBatchUnix.Load()) }
func (s *State) Batches() int64       { return s.batches.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

func unixOrZero(u int64) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}
