package sweep

import (
	"fmt"
	"net"
	"time"
)

const (
	// MaxTargets is the upper bound on targets per sweep.
	MaxTargets = 500

	// MinCount and MaxCount bound the number of echo requests per target.
	MinCount = 1
	MaxCount = 10

	// MinInterval and MaxInterval bound the send cadence of a target.
	MinInterval = 1 * time.Millisecond
	MaxInterval = 1000 * time.Millisecond
)

// Target describes one sweep entry: an IPv4 address, the number of
// Echo Requests to send to it, and the delay between consecutive
// requests. A Target is immutable once handed to a Sweeper.
type Target struct {
	Addr     net.IPAddr
	Count    int
	Interval time.Duration
}

// Validate reports whether the target is within the supported bounds.
// Only IPv4 targets are accepted for now.
func (t *Target) Validate() error {
	if t.Addr.IP == nil || t.Addr.IP.To4() == nil {
		return fmt.Errorf("address %v is not IPv4", t.Addr.IP)
	}
	if t.Count < MinCount || t.Count > MaxCount {
		return fmt.Errorf("count %d out of range [%d, %d]", t.Count, MinCount, MaxCount)
	}
	if t.Interval < MinInterval || t.Interval > MaxInterval {
		return fmt.Errorf("interval %v out of range [%v, %v]", t.Interval, MinInterval, MaxInterval)
	}
	return nil
}
