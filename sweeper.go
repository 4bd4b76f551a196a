// Package sweep performs ICMP Echo sweeps: up to 500 IPv4 targets,
// each with its own request count and send cadence, probed over a
// single shared socket.
package sweep

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/digineo/go-sweep/internal"
)

// Mode selects how a Sweeper drives its target sessions.
type Mode int

const (
	// Sequential drives one target to completion before the next
	// starts; records never interleave across targets.
	Sequential Mode = iota

	// Concurrent runs all targets at once. Records from different
	// targets may interleave, records of one target stay in sequence
	// order.
	Concurrent
)

const (
	// Timeout is the fixed per-request deadline.
	Timeout = 5 * time.Second

	defaultPayloadSize = 56
)

// Sweeper owns the shared socket and executes sweeps over it.
type Sweeper struct {
	Timeout     time.Duration // per-request deadline, Timeout by default
	PayloadSize uint16        // echo payload size in bytes
	Privileged  bool          // raw sockets instead of datagram sockets

	writer packetWriter
	conn   *internal.Conn
	corr   *correlator
	id     int // base echo identifier, sessions count upwards from here
}

// New creates an idle Sweeper. Call Start to open the socket.
func New() *Sweeper {
	return &Sweeper{
		Timeout:     Timeout,
		PayloadSize: defaultPayloadSize,
		id:          os.Getpid() & 0xffff,
	}
}

// Start opens the shared socket and starts the receive path. An empty
// bind address skips the respective protocol.
func (s *Sweeper) Start(bind4, bind6 string) error {
	if s.conn != nil {
		panic("already started")
	}

	s.corr = newCorrelator()
	conn := &internal.Conn{
		Privileged: s.Privileged,
		Receiver:   s.corr.dispatch,
	}

	if err := conn.Open(bind4, bind6); err != nil {
		return err
	}

	s.conn = conn
	s.writer = conn
	return nil
}

// Close releases the socket.
func (s *Sweeper) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// Run executes one sweep and blocks until every target is done. Each
// completed record is handed to emit as soon as its mode allows; in
// concurrent mode emit is serialized by the Sweeper.
func (s *Sweeper) Run(targets []Target, mode Mode, emit func(Record)) error {
	if s.writer == nil {
		return errNotStarted
	}
	if len(targets) == 0 {
		return errNoTargets
	}
	if len(targets) > MaxTargets {
		return errTooManyTargets
	}

	seen := make(map[string]struct{}, len(targets))
	for i := range targets {
		if err := targets[i].Validate(); err != nil {
			return fmt.Errorf("target %d: %w", i, err)
		}
		ip := targets[i].Addr.IP.String()
		if _, dup := seen[ip]; dup {
			return fmt.Errorf("target %d: duplicate address %s", i, ip)
		}
		seen[ip] = struct{}{}
	}

	var payload internal.Payload
	payload.Resize(s.PayloadSize)

	if mode == Concurrent {
		var mu sync.Mutex
		inner := emit
		emit = func(r Record) {
			mu.Lock()
			inner(r)
			mu.Unlock()
		}
	}

	sessions := make([]*session, len(targets))
	for i, t := range targets {
		sessions[i] = newSession(t, (s.id+i)&0xffff, s.writer, s.corr, payload, s.Timeout, emit)
	}

	if mode == Concurrent {
		var g errgroup.Group
		for _, sess := range sessions {
			sess := sess
			g.Go(func() error {
				sess.run()
				return nil
			})
		}
		return g.Wait()
	}

	for _, sess := range sessions {
		sess.run()
	}
	return nil
}
