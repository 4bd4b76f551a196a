package sweep

import "time"

type outcome uint8

const (
	pending outcome = iota
	replied
	timedOut
)

// A request is a single outbound Echo Request. It starts out pending
// and is finalized exactly once, either by a matching reply or by its
// timeout; whichever happens first wins.
type request struct {
	seq     int
	sent    time.Time
	timer   *time.Timer // armed after a successful send
	outcome outcome
	ttl     int
	elapsed time.Duration
}

// finalize assigns the terminal outcome. It reports false if the
// request was already resolved; the assignment is irreversible.
func (req *request) finalize(o outcome, ttl int, elapsed time.Duration) bool {
	if req.outcome != pending {
		return false
	}

	req.outcome = o
	req.ttl = ttl
	req.elapsed = elapsed

	if req.timer != nil {
		req.timer.Stop()
	}
	return true
}
