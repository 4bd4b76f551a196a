package sweep

import (
	"sync"

	"github.com/digineo/go-sweep/internal"
)

// requestKey packs identifier and sequence into one lookup key.
func requestKey(id, seq int) uint32 {
	return uint32(id)<<16 | uint32(seq)&0xffff
}

// The correlator demultiplexes inbound Echo Replies onto the session
// holding a matching pending request. The primary key is (identifier,
// sequence). Datagram sockets rewrite the identifier in the kernel, so
// a per-address fallback index covers those; it relies on target
// addresses being unique within a sweep.
type correlator struct {
	mu       sync.RWMutex
	requests map[uint32]*session
	sessions map[string]*session // keyed by target address
}

func newCorrelator() *correlator {
	return &correlator{
		requests: make(map[uint32]*session),
		sessions: make(map[string]*session),
	}
}

func (c *correlator) addSession(s *session) {
	c.mu.Lock()
	c.sessions[s.target.Addr.IP.String()] = s
	c.mu.Unlock()
}

func (c *correlator) dropSession(s *session) {
	c.mu.Lock()
	delete(c.sessions, s.target.Addr.IP.String())
	c.mu.Unlock()
}

func (c *correlator) addRequest(s *session, seq int) {
	c.mu.Lock()
	c.requests[requestKey(s.id, seq)] = s
	c.mu.Unlock()
}

func (c *correlator) dropRequest(id, seq int) {
	c.mu.Lock()
	delete(c.requests, requestKey(id, seq))
	c.mu.Unlock()
}

// dispatch resolves a decoded reply against the pending-request table.
// Replies matching nothing are dropped: late duplicates, spoofed
// packets, or foreign traffic sharing the raw channel. Attribution is
// purely by key, never by arrival order.
func (c *correlator) dispatch(rep internal.Reply) {
	c.mu.RLock()
	s := c.requests[requestKey(rep.ID, rep.Seq)]
	if s == nil {
		s = c.sessions[rep.Addr.IP.String()]
	}
	c.mu.RUnlock()

	if s == nil {
		return
	}
	s.resolve(rep.Seq, rep.TTL, rep.Received)
}
