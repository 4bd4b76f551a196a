package main

import (
	"sync"
	"time"

	sweep "github.com/digineo/go-sweep"
	"github.com/digineo/go-sweep/stats"
)

// row tracks the live state of one target.
type row struct {
	target  sweep.Target
	history *stats.History

	mu       sync.RWMutex
	finished int
	last     time.Duration
	lastLost bool
}

func newRow(t sweep.Target) *row {
	h := stats.NewHistory(t.Count)
	return &row{target: t, history: &h}
}

func (r *row) add(rec sweep.Record) {
	r.history.Add(rec)

	r.mu.Lock()
	r.finished++
	r.last = rec.Elapsed
	r.lastLost = rec.TimedOut()
	r.mu.Unlock()
}

func (r *row) snapshot() (finished int, last time.Duration, lastLost bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finished, r.last, r.lastLost
}
