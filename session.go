package sweep

import (
	"net"
	"sync"
	"time"
)

// packetWriter is the outbound half of the socket channel.
type packetWriter interface {
	WriteTo(addr *net.IPAddr, id, seq int, data []byte) error
}

type sessionState uint8

const (
	stateSending  sessionState = iota // sequences left to send
	stateDraining                     // all sent, requests still pending
	stateDone                         // every request finalized and emitted
)

// A session owns the probing of a single target: the send cadence, the
// outstanding requests, their timeouts, and the in-order emission of
// completed records.
type session struct {
	target  Target
	id      int // echo identifier of this session
	writer  packetWriter
	corr    *correlator
	payload []byte
	timeout time.Duration
	emit    func(Record)

	mu       sync.Mutex
	requests []*request // slot per sequence, nil until sent
	cursor   int        // next sequence to send
	next     int        // next sequence to emit
	done     chan struct{}
}

func newSession(target Target, id int, writer packetWriter, corr *correlator, payload []byte, timeout time.Duration, emit func(Record)) *session {
	return &session{
		target:   target,
		id:       id,
		writer:   writer,
		corr:     corr,
		payload:  payload,
		timeout:  timeout,
		emit:     emit,
		requests: make([]*request, target.Count),
		done:     make(chan struct{}),
	}
}

// run drives the session to completion: Count sends on a fixed
// cadence, then waiting for the last outstanding request to resolve.
// Replies and timeouts come in on other goroutines; run only paces the
// sends.
func (s *session) run() {
	s.corr.addSession(s)
	defer s.corr.dropSession(s)

	s.send()
	if s.target.Count > 1 {
		// the ticker fires at fixed boundaries regardless of whether
		// earlier requests have resolved; missed ticks are dropped,
		// there is no catch-up
		ticker := time.NewTicker(s.target.Interval)
		for i := 1; i < s.target.Count; i++ {
			<-ticker.C
			s.send()
		}
		ticker.Stop()
	}

	<-s.done
}

// send issues the next Echo Request and arms its timeout.
func (s *session) send() {
	req := &request{}

	s.mu.Lock()
	req.seq = s.cursor
	s.requests[req.seq] = req
	s.cursor++
	s.mu.Unlock()

	s.corr.addRequest(s, req.seq)

	req.sent = time.Now()
	if err := s.writer.WriteTo(&s.target.Addr, s.id, req.seq, s.payload); err != nil {
		// a failed send finalizes this request only; later requests
		// and other targets are unaffected
		log.Errorf("send to %v seq %d: %v", s.target.Addr.IP, req.seq, err)
		s.expire(req.seq)
		return
	}

	seq := req.seq
	s.mu.Lock()
	if req.outcome == pending {
		req.timer = time.AfterFunc(s.timeout, func() { s.expire(seq) })
	}
	s.mu.Unlock()
}

// expire finalizes a request as timed out, unless a reply won the
// race. The record carries the nominal timeout as its elapsed time.
func (s *session) expire(seq int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := s.requests[seq]
	if req == nil || !req.finalize(timedOut, TimeoutTTL, s.timeout) {
		return
	}
	s.corr.dropRequest(s.id, seq)
	s.release()
}

// resolve attributes a decoded reply to its request. It reports false
// if the sequence is unknown or already finalized; such replies are
// discarded by the caller.
func (s *session) resolve(seq, ttl int, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < 0 || seq >= len(s.requests) || s.requests[seq] == nil {
		return false
	}
	req := s.requests[seq]
	if !req.finalize(replied, ttl, at.Sub(req.sent)) {
		return false
	}
	s.corr.dropRequest(s.id, seq)
	s.release()
	return true
}

// release emits finalized records in sequence order. An out-of-order
// resolution stays buffered in its slot until every lower sequence has
// a terminal outcome. Caller must hold s.mu.
func (s *session) release() {
	for s.next < s.target.Count {
		req := s.requests[s.next]
		if req == nil || req.outcome == pending {
			return
		}
		s.emit(Record{Addr: s.target.Addr, Seq: req.seq, TTL: req.ttl, Elapsed: req.elapsed})
		s.next++
	}
	close(s.done)
}

func (s *session) state() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.next == s.target.Count:
		return stateDone
	case s.cursor == s.target.Count:
		return stateDraining
	}
	return stateSending
}
